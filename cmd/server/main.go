// ABOUTME: Main entry point for the standalone mdtranslate MCP server
// ABOUTME: Loads configuration and serves the translation tools over stdio
package main

import (
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/mdtranslate/internal/config"
	"github.com/harper/mdtranslate/internal/logging"
	"github.com/harper/mdtranslate/internal/mcp"
)

func main() {
	// stdout carries the protocol, logs go to stderr
	logger := logging.New(os.Stderr, logging.Options{})

	cwd, err := os.Getwd()
	if err != nil {
		logger.Fatal("working directory", "err", err)
	}
	if _, err := config.LoadEnvFiles(cwd, os.Getenv("APP_ENV")); err != nil {
		logger.Fatal("loading env files", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}
	if cfg.RequireAPIKey() != nil {
		logger.Warn("OPENAI_API_KEY not set - translate_file will fail until it is configured")
	}

	server := mcpserver.NewMCPServer("mdtranslate", "0.1.0")
	mcp.RegisterTools(server, cfg, mcp.OpenAIFactory(cfg), logger)

	logger.Info("MCP server starting on stdio", "sessions", cfg.OutputDir)
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Fatal("server error", "err", err)
	}
}

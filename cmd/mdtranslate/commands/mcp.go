// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Lets LLM agents translate files and read session statistics via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/mdtranslate/internal/config"
	"github.com/harper/mdtranslate/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs mdtranslate as an MCP (Model Context Protocol) server over stdio,
so LLM agents like Claude can translate Markdown files, preview how a
file is chunked and read the statistics of past sessions.

Configure in Claude Desktop's config file to enable the tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  mdtranslate mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "mdtranslate": {
  #       "command": "mdtranslate",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	cwd, err := workingDir("")
	if err != nil {
		return err
	}
	if _, err := config.LoadEnvFiles(cwd, os.Getenv("APP_ENV")); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.RequireAPIKey() != nil {
		logger.Warn("OPENAI_API_KEY not set - translate_file will fail until it is configured")
	}

	server := mcpserver.NewMCPServer("mdtranslate", versionInfo.Version)
	mcp.RegisterTools(server, cfg, mcp.OpenAIFactory(cfg), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server starting on stdio", "sessions", cfg.OutputDir)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}

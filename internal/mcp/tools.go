// ABOUTME: MCP tool definitions and registration for the translator server
// ABOUTME: Exposes file translation, chunk previews and session statistics to LLM agents
package mcp

import (
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/mdtranslate/internal/config"
	"github.com/harper/mdtranslate/internal/llm"
	"github.com/harper/mdtranslate/internal/logging"
	"github.com/harper/mdtranslate/internal/translate"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, cfg *config.Config, newTranslator TranslatorFactory, logger *log.Logger) *Handlers {
	handlers := &Handlers{
		cfg:           cfg,
		newTranslator: newTranslator,
		logger:        logging.Or(logger),
	}

	// 1. translate_file - Translate one Markdown file into a new session
	server.AddTool(mcp.Tool{
		Name:        "translate_file",
		Description: "Translate one Markdown file. Writes name.<language>.md next to the source unless overwrite is set, and returns the session statistics.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path of the Markdown file to translate",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Target language, e.g. German",
				},
				"overwrite": map[string]interface{}{
					"type":        "boolean",
					"description": "Replace the source file with its translation (default: false)",
					"default":     false,
				},
				"session": map[string]interface{}{
					"type":        "string",
					"description": "Optional session id; a new one is generated when empty",
				},
			},
			Required: []string{"path", "language"},
		},
	}, handlers.TranslateFile)

	// 2. preview_chunks - Show how a file would be split, without calling the API
	server.AddTool(mcp.Tool{
		Name:        "preview_chunks",
		Description: "Split a Markdown file into token-bounded chunks without translating it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path of the Markdown file",
				},
				"max_tokens": map[string]interface{}{
					"type":        "number",
					"description": "Token budget per chunk (default: configured TRANSLATE_MAX_TOKENS)",
				},
			},
			Required: []string{"path"},
		},
	}, handlers.PreviewChunks)

	// 3. session_stats - Aggregate the telemetry of a stored session
	server.AddTool(mcp.Tool{
		Name:        "session_stats",
		Description: "Compute the statistics (tokens, calls, errors, response times) of a translation session.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session": map[string]interface{}{
					"type":        "string",
					"description": "Session id to report on",
				},
			},
			Required: []string{"session"},
		},
	}, handlers.SessionStats)

	// 4. list_sessions - List stored sessions
	server.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List translation sessions, newest first.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListSessions)

	return handlers
}

// OpenAIFactory builds translators from cfg. A missing key fails per call,
// so the server can start and report the problem through the tool result.
func OpenAIFactory(cfg *config.Config) TranslatorFactory {
	return func(onUsage llm.UsageFunc) (translate.Translator, error) {
		if err := cfg.RequireAPIKey(); err != nil {
			return nil, err
		}
		translator, err := llm.NewOpenAITranslator(&llm.Config{
			APIKey:     cfg.OpenAIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			TopP:       llm.DefaultTopP,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			OnUsage:    onUsage,
		})
		if err != nil {
			return nil, err
		}
		return translator, nil
	}
}

// ABOUTME: MCP tool handler implementations for the translator server
// ABOUTME: Each call runs synchronously and answers with a JSON document
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/mdtranslate/internal/config"
	"github.com/harper/mdtranslate/internal/document"
	"github.com/harper/mdtranslate/internal/llm"
	"github.com/harper/mdtranslate/internal/session"
	"github.com/harper/mdtranslate/internal/stats"
	"github.com/harper/mdtranslate/internal/translate"
)

// TranslatorFactory builds a translator reporting its usage to onUsage
type TranslatorFactory func(onUsage llm.UsageFunc) (translate.Translator, error)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	cfg           *config.Config
	newTranslator TranslatorFactory
	logger        *log.Logger
}

// TranslateFile handles the translate_file tool
func (h *Handlers) TranslateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required and must be a string"), nil
	}
	language, err := request.RequireString("language")
	if err != nil {
		return mcp.NewToolResultError("language argument is required and must be a string"), nil
	}
	overwrite := request.GetBool("overwrite", false)

	source, err := filepath.Abs(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
	}

	sess, err := session.Open(h.cfg.OutputDir, request.GetString("session", ""), nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open session: %v", err)), nil
	}
	defer sess.Close()

	translator, err := h.newTranslator(translate.RecordUsage(sess.Recorder))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create translator: %v", err)), nil
	}
	tmpl, err := document.LoadTemplate(h.cfg.Template, filepath.Dir(source), h.cfg.OutputDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	runner := &translate.Runner{
		Translator:       translator,
		Model:            h.cfg.Model,
		Options:          document.Options{MaxTokens: h.cfg.MaxTokens, Template: tmpl},
		ChunkConcurrency: h.cfg.ChunkConcurrency,
		Policy:           translate.Policy{MaxChunkFailures: h.cfg.MaxChunkFailures},
		Metrics:          sess.Recorder,
		Logger:           h.logger,
		SessionDir:       sess.Dir,
	}

	job := translate.NewJob(source, translate.SuggestDestination(source, language, overwrite), language)
	result, runErr := runner.TranslateFile(ctx, job)

	response := map[string]interface{}{
		"session":     sess.ID,
		"source":      result.Job.Source,
		"destination": result.Job.Destination,
		"log":         result.Job.Log,
		"chunks":      len(result.Chunks.Chunks),
		"tokens":      result.Chunks.Tokens,
		"failed":      result.Failed,
		"written":     result.Written,
	}
	if finals, err := sess.Stats(translate.Schema()); err == nil {
		response["statistics"] = finals.Statistics
	}
	if runErr != nil {
		response["error"] = runErr.Error()
		response["class"] = translate.Classify(runErr)
		return jsonResult(response, true)
	}
	return jsonResult(response, false)
}

// PreviewChunks handles the preview_chunks tool
func (h *Handlers) PreviewChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required and must be a string"), nil
	}
	maxTokens := int(request.GetFloat("max_tokens", float64(h.cfg.MaxTokens)))

	strategy, err := document.ForFile(path, document.Options{MaxTokens: maxTokens})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := readSource(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	chunks := strategy.ComposeChunks(document.Document{Source: path, Content: content})
	type chunkInfo struct {
		Index int    `json:"index"`
		Bytes int    `json:"bytes"`
		Head  string `json:"head"`
	}
	infos := make([]chunkInfo, len(chunks.Chunks))
	for i, c := range chunks.Chunks {
		infos[i] = chunkInfo{Index: i, Bytes: len(c), Head: head(c, 60)}
	}

	return jsonResult(map[string]interface{}{
		"strategy":   strategy.Name(),
		"max_tokens": maxTokens,
		"tokens":     chunks.Tokens,
		"bytes":      chunks.Length,
		"chunks":     infos,
	}, false)
}

// SessionStats handles the session_stats tool
func (h *Handlers) SessionStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session")
	if err != nil {
		return mcp.NewToolResultError("session argument is required and must be a string"), nil
	}

	finals, err := session.ReadStats(h.cfg.OutputDir, id, translate.Schema())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read session: %v", err)), nil
	}
	return jsonResult(statsResponse(id, finals), false)
}

// ListSessions handles the list_sessions tool
func (h *Handlers) ListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := session.List(h.cfg.OutputDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}
	if infos == nil {
		infos = []session.Info{}
	}
	return jsonResult(map[string]interface{}{
		"sessions": infos,
		"count":    len(infos),
	}, false)
}

func statsResponse(id string, finals stats.Finals) map[string]interface{} {
	failed := []string{}
	for name, s := range finals.Statistics {
		if s.Failed() {
			failed = append(failed, name)
		}
	}
	return map[string]interface{}{
		"session":    id,
		"from":       finals.From,
		"to":         finals.To,
		"statistics": finals.Statistics,
		"failed":     failed,
	}
}

func jsonResult(response interface{}, isError bool) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	if isError {
		return mcp.NewToolResultError(string(responseJSON)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

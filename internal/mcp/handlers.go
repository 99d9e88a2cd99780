package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/opendefense/casepipe/internal/config"
	"github.com/opendefense/casepipe/internal/db"
	"github.com/opendefense/casepipe/internal/errors"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(database *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: database, cfg: cfg}
}

// FetchRequest represents the arguments for case_fetch and case_versions.
type FetchRequest struct {
	CauseNumber string `json:"cause_number"`
}

// HandleFetch handles the case_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.CauseNumber == "" {
		return errorResult(errors.NewInvalidRequest("cause_number is required")), nil
	}

	result, err := db.GetLatestCase(ctx, h.db, input.CauseNumber)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleVersions handles the case_versions tool call.
func (h *Handlers) HandleVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.CauseNumber == "" {
		return errorResult(errors.NewInvalidRequest("cause_number is required")), nil
	}

	versions, err := db.ListVersions(ctx, h.db, input.CauseNumber)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"cause_number": input.CauseNumber,
		"versions":     versions,
	})
}

// HandleStats handles the store_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := db.Stats(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pipeErr, ok := err.(*errors.PipeError); ok {
		errorObj := map[string]any{
			"code":    pipeErr.Code,
			"message": pipeErr.Message,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if pipeErr.Code != errors.ErrInternal && pipeErr.Details != nil {
			errorObj["details"] = pipeErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

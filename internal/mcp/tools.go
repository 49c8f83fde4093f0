package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/semantiq/semantiq/internal/engine"
	"github.com/semantiq/semantiq/pkg/types"
)

// MCP error codes.
const (
	ErrorCodeInvalidParams = -32602
	ErrorCodeInternalError = -32603
	ErrorCodeNotFound      = -32001
	ErrorCodeNotReady      = -32002
	ErrorCodeTimeout       = -32003
)

// handleSearch handles the semantiq_search tool invocation.
func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "query parameter is required", map[string]interface{}{
			"param": "query",
		})
	}

	opts := &engine.SearchOptions{
		Limit:       getIntDefault(args, "limit", 0),
		MinScore:    getFloatDefault(args, "min_score", 0),
		FileTypes:   engine.ParseCSV(getStringDefault(args, "file_type", "")),
		SymbolKinds: engine.ParseCSV(getStringDefault(args, "symbol_kind", "")),
		ActiveFile:  getStringDefault(args, "active_file", ""),
	}

	results, err := s.engine.Search(ctx, query, opts)
	partial := errors.Is(err, types.ErrTimeout)
	if err != nil && !partial {
		return nil, mapEngineError(err)
	}

	response := map[string]interface{}{
		"query":    query,
		"results":  results,
		"count":    len(results),
		"semantic": s.engine.SemanticEnabled(),
	}
	if partial {
		response["partial"] = true
	}
	return jsonResult(response)
}

// handleFindRefs handles the semantiq_find_refs tool invocation.
func (s *Server) handleFindRefs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "symbol parameter is required", map[string]interface{}{
			"param": "symbol",
		})
	}
	limit := getIntDefault(args, "limit", 50)

	results, err := s.engine.FindRefs(ctx, symbol, limit)
	if err != nil {
		return nil, mapEngineError(err)
	}

	return jsonResult(map[string]interface{}{
		"symbol":     symbol,
		"references": results,
		"count":      len(results),
	})
}

// handleDeps handles the semantiq_deps tool invocation.
func (s *Server) handleDeps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	file, ok := args["file"].(string)
	if !ok || file == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file parameter is required", map[string]interface{}{
			"param": "file",
		})
	}

	report, err := s.engine.Deps(ctx, file)
	if err != nil {
		return nil, mapEngineError(err)
	}
	return jsonResult(map[string]interface{}{
		"file":        report.Path,
		"imports":     report.Imports,
		"imported_by": report.ImportedBy,
	})
}

// handleExplain handles the semantiq_explain tool invocation.
func (s *Server) handleExplain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "symbol parameter is required", map[string]interface{}{
			"param": "symbol",
		})
	}

	explanation, err := s.engine.Explain(ctx, symbol)
	if err != nil {
		return nil, mapEngineError(err)
	}
	return jsonResult(map[string]interface{}{
		"explanation": explanation,
	})
}

// mapEngineError translates the engine error taxonomy to MCP error codes.
func mapEngineError(err error) error {
	switch {
	case errors.Is(err, types.ErrInvalidInput):
		return newMCPError(ErrorCodeInvalidParams, err.Error(), nil)
	case errors.Is(err, types.ErrPathNotFound):
		return newMCPError(ErrorCodeNotFound, err.Error(), nil)
	case errors.Is(err, types.ErrIndexNotReady):
		return newMCPError(ErrorCodeNotReady, err.Error(), nil)
	case errors.Is(err, types.ErrTimeout):
		return newMCPError(ErrorCodeTimeout, err.Error(), nil)
	default:
		return newMCPError(ErrorCodeInternalError, err.Error(), nil)
	}
}

// MCPError is a typed protocol error; the framework handles encoding.
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{Code: code, Message: message, Data: data}
}

// jsonResult marshals a response map into a text tool result.
func jsonResult(data map[string]interface{}) (*mcp.CallToolResult, error) {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "encode response", nil)
	}
	return mcp.NewToolResultText(string(bytes)), nil
}

func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	return defaultValue
}

func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

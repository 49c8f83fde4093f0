package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchTool returns the tool definition for semantiq_search.
func searchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantiq_search",
		Description: "Hybrid semantic + lexical code search over the indexed project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language, identifiers, or keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results (1-50)",
					"default":     20,
					"minimum":     1,
					"maximum":     50,
				},
				"min_score": map[string]interface{}{
					"type":        "number",
					"description": "Drop results whose fused score is below this (0.0-1.0)",
					"default":     0.35,
					"minimum":     0.0,
					"maximum":     1.0,
				},
				"file_type": map[string]interface{}{
					"type":        "string",
					"description": "Comma-separated list of accepted file extensions (e.g. 'rs,ts')",
				},
				"symbol_kind": map[string]interface{}{
					"type":        "string",
					"description": "Comma-separated list of accepted symbol kinds (e.g. 'function,struct')",
				},
				"active_file": map[string]interface{}{
					"type":        "string",
					"description": "Project-relative path of the file the caller is focused on; boosts nearby results",
				},
			},
			Required: []string{"query"},
		},
	}
}

// findRefsTool returns the tool definition for semantiq_find_refs.
func findRefsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantiq_find_refs",
		Description: "Find definitions and usages of a symbol by name, including its case variants",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Symbol name to look up",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of references (1-200)",
					"default":     50,
					"minimum":     1,
					"maximum":     200,
				},
			},
			Required: []string{"symbol"},
		},
	}
}

// depsTool returns the tool definition for semantiq_deps.
func depsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantiq_deps",
		Description: "Show what a file imports and which files import it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file": map[string]interface{}{
					"type":        "string",
					"description": "Project-relative file path",
				},
			},
			Required: []string{"file"},
		},
	}
}

// explainTool returns the tool definition for semantiq_explain.
func explainTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantiq_explain",
		Description: "Explain a symbol: definitions, signatures, doc comments and usages",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Symbol name to explain",
				},
			},
			Required: []string{"symbol"},
		},
	}
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCP exposes every calculator in r as a tool on s.
func RegisterMCP(s *server.MCPServer, r *Registry) {
	for _, t := range r.Tools() {
		s.AddTool(MCPTool(t), mcpHandler(r, t.Name))
	}
}

// MCPTool describes t in MCP terms.
func MCPTool(t Tool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}
	for _, p := range t.Params {
		opts = append(opts, mcp.WithNumber(p.Name,
			mcp.Description(p.Description),
			mcp.DefaultNumber(p.Default),
		))
	}
	return mcp.NewTool(t.Name, opts...)
}

func mcpHandler(r *Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := r.Invoke(ctx, name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		if Failed(out) {
			return mcp.NewToolResultError(string(b)), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

// JSONSchema renders the parameters of t as a JSON schema object, the form
// function-calling models accept.
func JSONSchema(t Tool) map[string]any {
	props := make(map[string]any, len(t.Params))
	for _, p := range t.Params {
		props[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
			"default":     p.Default,
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

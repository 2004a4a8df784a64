package fimcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

const statusLoginRequired = "login_required"

// ToolCaller is the part of an MCP client the fetcher needs.
type ToolCaller interface {
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// MCPFetcher fetches data by calling tools on an MCP server.
type MCPFetcher struct {
	client ToolCaller
}

func NewMCPFetcher(client ToolCaller) *MCPFetcher {
	return &MCPFetcher{client: client}
}

func (f *MCPFetcher) Fetch(ctx context.Context, tool string, args map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = map[string]any{}
	}
	res, err := f.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: tool, Arguments: args},
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	text := ResultText(res)
	if res.IsError {
		return nil, fmt.Errorf("%s failed: %s", tool, text)
	}
	if gjson.Get(text, "status").String() == statusLoginRequired {
		return nil, &LoginRequiredError{
			LoginURL: gjson.Get(text, "login_url").String(),
			Message:  gjson.Get(text, "message").String(),
		}
	}
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%s returned a non-JSON payload", tool)
	}
	return json.RawMessage(text), nil
}

// ResultText joins the non-empty text parts of a tool result.
func ResultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	var out []string
	for _, c := range res.Content {
		if tc, ok := mcp.AsTextContent(c); ok && strings.TrimSpace(tc.Text) != "" {
			out = append(out, tc.Text)
		}
	}
	return strings.Join(out, "\n")
}

// Dial connects to a streamable HTTP MCP server and performs the initialize
// handshake. A non-nil sampler lets the server request completions.
func Dial(ctx context.Context, url, clientName, version string, sampler mcpclient.SamplingHandler) (*mcpclient.Client, error) {
	c, err := mcpclient.NewStreamableHttpClient(url)
	if err != nil {
		return nil, fmt.Errorf("mcp client: %w", err)
	}
	caps := mcp.ClientCapabilities{}
	if sampler != nil {
		mcpclient.WithSamplingHandler(sampler)(c)
		caps.Sampling = &struct{}{}
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp start: %w", err)
	}
	if _, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			ClientInfo:      mcp.Implementation{Name: clientName, Version: version},
			Capabilities:    caps,
		},
	}); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp initialize: %w", err)
	}

	if tl, err := c.ListTools(ctx, mcp.ListToolsRequest{}); err == nil {
		served := lo.Map(tl.Tools, func(t mcp.Tool, _ int) string { return t.Name })
		expected := lo.Map(RemoteTools(), func(t ToolInfo, _ int) string { return t.Name })
		if missing := lo.Without(expected, served...); len(missing) > 0 {
			log.Printf("mcp server %s does not serve %v", url, missing)
		}
	} else {
		log.Printf("mcp list tools: %v", err)
	}
	return c, nil
}

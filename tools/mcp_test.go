package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestServer(t *testing.T, phone string) *server.MCPServer {
	t.Helper()
	s := server.NewMCPServer("finsage-test", "0.0.0", server.WithToolCapabilities(true))
	RegisterMCP(s, fixtureRegistry(t, phone))
	return s
}

func rpc(t *testing.T, s *server.MCPServer, body string) gjson.Result {
	t.Helper()
	resp := s.HandleMessage(context.Background(), json.RawMessage(body))
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	return gjson.ParseBytes(b)
}

func TestRegisterMCP_ListsCalculators(t *testing.T) {
	s := newTestServer(t, "1111111111")

	res := rpc(t, s, `{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}`)

	names := map[string]bool{}
	for _, tool := range res.Get("result.tools").Array() {
		names[tool.Get("name").String()] = true
	}
	assert.Len(t, names, 8)
	assert.True(t, names[RetirementCalculator])
	assert.True(t, names[PortfolioAnalyzer])

	for _, tool := range res.Get("result.tools").Array() {
		if tool.Get("name").String() == RetirementCalculator {
			assert.Equal(t, 0.07, tool.Get("inputSchema.properties.annual_return.default").Float())
		}
	}
}

func TestRegisterMCP_CallTool(t *testing.T) {
	s := newTestServer(t, "1111111111")

	res := rpc(t, s, `{"jsonrpc": "2.0", "id": 2, "method": "tools/call",
		"params": {"name": "retirement_calculator", "arguments": {"current_age": 40, "target_age": 40, "net_worth": 1000}}}`)

	assert.False(t, res.Get("result.isError").Bool())
	text := res.Get("result.content.0.text").String()
	assert.JSONEq(t, `{"years_to_target": 0, "future_value_existing_net_worth": 1000, "future_value_savings": 0, "projected_net_worth": 1000}`, text)
}

func TestRegisterMCP_ErrorRecordSetsIsError(t *testing.T) {
	s := newTestServer(t, "2222222222")

	res := rpc(t, s, `{"jsonrpc": "2.0", "id": 3, "method": "tools/call", "params": {"name": "credit_score", "arguments": {}}}`)

	assert.True(t, res.Get("result.isError").Bool())
	assert.Equal(t, "No credit report found.", gjson.Get(res.Get("result.content.0.text").String(), "error").String())
}

func TestJSONSchema(t *testing.T) {
	tool, ok := NewRegistry(nil).Lookup(TopStockHoldings)
	require.True(t, ok)

	schema := JSONSchema(tool)

	assert.Equal(t, "object", schema["type"])
	props := schema["properties"].(map[string]any)
	topN := props["top_n"].(map[string]any)
	assert.Equal(t, "integer", topN["type"])
	assert.Equal(t, 5.0, topN["default"])
}

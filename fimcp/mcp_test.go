package fimcp

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockToolCaller struct {
	mock.Mock
}

func (m *MockToolCaller) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := m.Called(ctx, req.Params.Name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mcp.CallToolResult), args.Error(1)
}

func TestMCPFetcher_ReturnsPayload(t *testing.T) {
	ctx := context.Background()
	caller := new(MockToolCaller)
	caller.On("CallTool", ctx, FetchEPFDetails).Return(mcp.NewToolResultText(`{"uanAccounts": []}`), nil)

	raw, err := NewMCPFetcher(caller).Fetch(ctx, FetchEPFDetails, nil)

	require.NoError(t, err)
	assert.JSONEq(t, `{"uanAccounts": []}`, string(raw))
	caller.AssertExpectations(t)
}

func TestMCPFetcher_LoginRequired(t *testing.T) {
	ctx := context.Background()
	caller := new(MockToolCaller)
	reply := `{"status": "login_required","login_url": "http://localhost:8080/mockWebPage?sessionId=abc","message": "Needs to login first"}`
	caller.On("CallTool", ctx, FetchNetWorth).Return(mcp.NewToolResultText(reply), nil)

	_, err := NewMCPFetcher(caller).Fetch(ctx, FetchNetWorth, nil)

	var loginErr *LoginRequiredError
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, "http://localhost:8080/mockWebPage?sessionId=abc", loginErr.LoginURL)
}

func TestMCPFetcher_ToolError(t *testing.T) {
	ctx := context.Background()
	caller := new(MockToolCaller)
	caller.On("CallTool", ctx, FetchBankTransactions).Return(mcp.NewToolResultError("phone number is not allowed"), nil)

	_, err := NewMCPFetcher(caller).Fetch(ctx, FetchBankTransactions, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "phone number is not allowed")
}

func TestMCPFetcher_TransportError(t *testing.T) {
	ctx := context.Background()
	caller := new(MockToolCaller)
	boom := errors.New("connection refused")
	caller.On("CallTool", ctx, FetchCreditReport).Return(nil, boom)

	_, err := NewMCPFetcher(caller).Fetch(ctx, FetchCreditReport, nil)

	assert.ErrorIs(t, err, boom)
}

func TestMCPFetcher_RejectsNonJSON(t *testing.T) {
	ctx := context.Background()
	caller := new(MockToolCaller)
	caller.On("CallTool", ctx, FetchNetWorth).Return(mcp.NewToolResultText("dummy handler"), nil)

	_, err := NewMCPFetcher(caller).Fetch(ctx, FetchNetWorth, nil)

	assert.Error(t, err)
}

func TestResultText(t *testing.T) {
	res := &mcp.CallToolResult{Content: []mcp.Content{
		mcp.NewTextContent("first"),
		mcp.NewTextContent("  "),
		mcp.NewTextContent("second"),
	}}
	assert.Equal(t, "first\nsecond", ResultText(res))
	assert.Equal(t, "", ResultText(nil))
}

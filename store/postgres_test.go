package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_HistoryRoundTrip(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	sid, err := s.CreateSession(ctx, "pg")
	require.NoError(t, err)
	require.NoError(t, s.SaveMessage(ctx, sid, RoleUser, "What is my credit score?", nil))
	require.NoError(t, s.SaveMessage(ctx, sid, RoleTool, `{"credit_score": 746}`, map[string]any{"tool": "credit_score"}))
	require.NoError(t, s.SaveMessage(ctx, sid, RoleAssistant, "746.", nil))
	require.NoError(t, s.SaveToolInvocation(ctx, ToolInvocation{SessionID: sid, Step: 1, Name: "credit_score", Args: map[string]any{}}))

	chat, err := s.History(ctx, sid, 10, RoleUser, RoleAssistant)
	require.NoError(t, err)
	require.Len(t, chat, 2)
	assert.Equal(t, RoleAssistant, chat[1].Role)

	all, err := s.History(ctx, sid, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	newest, err := s.History(ctx, sid, 2)
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, RoleTool, newest[0].Role)
	assert.Equal(t, RoleAssistant, newest[1].Role)

	ok, err := s.SessionExists(ctx, sid)
	require.NoError(t, err)
	assert.True(t, ok)
}

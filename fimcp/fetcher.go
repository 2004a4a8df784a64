// Package fimcp is the boundary to the Fi MCP data server. Every calculator
// reads its inputs through a Fetcher so the transport can be swapped for
// on-disk fixtures.
package fimcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Fetcher invokes a named remote data tool and returns its JSON payload.
type Fetcher interface {
	Fetch(ctx context.Context, tool string, args map[string]any) (json.RawMessage, error)
}

// LoginRequiredError is returned when the data server wants the user to
// authenticate before serving data.
type LoginRequiredError struct {
	LoginURL string
	Message  string
}

func (e *LoginRequiredError) Error() string {
	return fmt.Sprintf("login required: %s", e.LoginURL)
}

// Package tools binds the finance calculators to named, self-describing
// tools that an agent or an MCP client can call.
package tools

import (
	"context"
	"errors"
	"fmt"
	"log"

	"finsage/fimcp"
)

// ErrUnknownTool is returned by Invoke for names the registry does not hold.
var ErrUnknownTool = errors.New("unknown tool")

// Param describes one numeric argument.
type Param struct {
	Name        string
	Type        string // "integer" or "number"
	Description string
	Default     float64
}

type Tool struct {
	Name        string
	Description string
	Params      []Param
	Run         func(ctx context.Context, args Args) (any, error)
}

// Registry is the catalog of calculators. It is built once at start up and
// shared read-only.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

func NewRegistry(fetcher fimcp.Fetcher) *Registry {
	c := calculators{fetcher: fetcher}
	r := &Registry{byName: map[string]Tool{}}
	for _, t := range c.tools() {
		r.tools = append(r.tools, t)
		r.byName[t.Name] = t
	}
	return r
}

func (r *Registry) Tools() []Tool {
	return append([]Tool(nil), r.tools...)
}

func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Invoke runs a calculator. Calculator failures, including fetch failures,
// come back as an ErrorRecord result; the error is only set for unknown tools.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	out, err := t.Run(ctx, Args(args))
	if err != nil {
		log.Printf("tool %s: %v", name, err)
		return errorRecord(err), nil
	}
	return out, nil
}

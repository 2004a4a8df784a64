package agent

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"google.golang.org/genai"
)

type ctxKey string

const ctxOptionsKey ctxKey = "samplingOptions"

// WithOptions attaches per-request options that GeminiSampler honours when
// the MCP server asks for a completion mid tool call.
func WithOptions(ctx context.Context, opts Options) context.Context {
	return context.WithValue(ctx, ctxOptionsKey, opts)
}

func optionsFrom(ctx context.Context) Options {
	if v, ok := ctx.Value(ctxOptionsKey).(Options); ok {
		return v
	}
	return Options{}
}

// GeminiSampler answers server-initiated MCP sampling requests with Gemini.
type GeminiSampler struct {
	Gen          Generator
	DefaultModel string
}

func (g *GeminiSampler) CreateMessage(ctx context.Context, req mcp.CreateMessageRequest) (*mcp.CreateMessageResult, error) {
	opts := optionsFrom(ctx)
	modelName := opts.Model
	if modelName == "" {
		modelName = g.DefaultModel
	}
	cfg := &genai.GenerateContentConfig{}
	if opts.Temperature != 0 {
		t := opts.Temperature
		cfg.Temperature = &t
	}
	switch {
	case opts.MaxTokens > 0:
		cfg.MaxOutputTokens = opts.MaxTokens
	case req.MaxTokens > 0:
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(opts.Stop) > 0 {
		cfg.StopSequences = opts.Stop
	}

	// request prompt first, then the server's own system prompt
	var sysParts []*genai.Part
	if p := strings.TrimSpace(opts.Prompt); p != "" {
		sysParts = append(sysParts, &genai.Part{Text: p})
	}
	if sp := strings.TrimSpace(req.SystemPrompt); sp != "" {
		sysParts = append(sysParts, &genai.Part{Text: sp})
	}
	if len(sysParts) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: sysParts}
	}

	var contents []*genai.Content
	for _, m := range req.Messages {
		tc, ok := mcp.AsTextContent(m.Content)
		if !ok {
			continue
		}
		role := genai.RoleUser
		if m.Role == mcp.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(tc.Text, genai.Role(role)))
	}

	resp, err := g.Gen.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		return nil, err
	}
	return &mcp.CreateMessageResult{
		SamplingMessage: mcp.SamplingMessage{
			Role:    mcp.RoleAssistant,
			Content: mcp.NewTextContent(resp.Text()),
		},
		Model:      modelName,
		StopReason: "end_turn",
	}, nil
}

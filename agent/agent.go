// Package agent drives a Gemini function-calling loop over the finance
// calculators and the Fi data tools.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"finsage/conf"
	"finsage/fimcp"
	"finsage/tools"

	"google.golang.org/genai"
)

const (
	defaultMaxSteps = 8
	maxMaxSteps     = 16
	logPreviewLen   = 512
)

var ErrNoAnswer = errors.New("maxSteps exceeded without final answer")

// Generator is the slice of the genai client the agent uses.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options tune a single Run. Zero values fall back to the agent defaults.
type Options struct {
	Prompt      string
	Model       string
	MaxSteps    int
	ForceTools  bool
	Temperature float32
	MaxTokens   int32
	Stop        []string
}

type StepTrace struct {
	Step     int            `json:"step"`
	CallName string         `json:"call_name,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
	Result   any            `json:"result,omitempty"`
	Text     string         `json:"text,omitempty"`
	Error    string         `json:"error,omitempty"`
	Final    bool           `json:"final,omitempty"`
}

// ToolHook observes every tool invocation, e.g. to persist it.
type ToolHook func(step int, name string, args map[string]any, result any, err error)

type Agent struct {
	gen         Generator
	registry    *tools.Registry
	fetcher     fimcp.Fetcher
	model       string
	instruction string
	maxSteps    int
}

// New builds the agent once at start up. fetcher may be nil, in which case
// the raw Fi data tools are not offered to the model.
func New(cfg conf.Config, gen Generator, registry *tools.Registry, fetcher fimcp.Fetcher) *Agent {
	instruction := cfg.Instruction
	if instruction == "" {
		instruction = DefaultInstruction()
	}
	return &Agent{
		gen:         gen,
		registry:    registry,
		fetcher:     fetcher,
		model:       cfg.Model,
		instruction: instruction,
		maxSteps:    cfg.MaxSteps,
	}
}

// Declarations lists the calculators followed by the remote data tools.
func (a *Agent) Declarations() []*genai.FunctionDeclaration {
	var decls []*genai.FunctionDeclaration
	for _, t := range a.registry.Tools() {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: tools.JSONSchema(t),
		})
	}
	if a.fetcher == nil {
		return decls
	}
	for _, t := range fimcp.RemoteTools() {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: map[string]any{"type": "object", "properties": map[string]any{}},
		})
	}
	return decls
}

func (a *Agent) config(opts Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{FunctionDeclarations: a.Declarations()}},
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = a.instruction
	}
	if prompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: prompt}}}
	}
	mode := genai.FunctionCallingConfigModeAuto
	if opts.ForceTools {
		mode = genai.FunctionCallingConfigModeAny
	}
	cfg.ToolConfig = &genai.ToolConfig{FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode}}
	if opts.Temperature != 0 {
		t := opts.Temperature
		cfg.Temperature = &t
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxTokens
	}
	if len(opts.Stop) > 0 {
		cfg.StopSequences = opts.Stop
	}
	return cfg
}

func (a *Agent) steps(requested int) int {
	for _, n := range []int{requested, a.maxSteps} {
		if n > 0 && n <= maxMaxSteps {
			return n
		}
	}
	return defaultMaxSteps
}

// Run answers query given prior history. The model proposes function calls,
// they are executed in order and their responses fed back, until the model
// replies with text or the step budget runs out.
func (a *Agent) Run(ctx context.Context, history []*genai.Content, query string, opts Options, hook ToolHook) (string, []StepTrace, error) {
	model := opts.Model
	if model == "" {
		model = a.model
	}
	cfg := a.config(opts)

	contents := make([]*genai.Content, 0, len(history)+1)
	contents = append(contents, history...)
	contents = append(contents, genai.NewContentFromText(query, genai.RoleUser))

	var trace []StepTrace
	maxSteps := a.steps(opts.MaxSteps)
	for step := 0; step < maxSteps; step++ {
		resp, err := a.gen.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			return "", trace, fmt.Errorf("generate: %w", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			final := resp.Text()
			trace = append(trace, StepTrace{Step: step, Final: true, Text: final})
			return final, trace, nil
		}

		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}
		for _, c := range calls {
			args := map[string]any{}
			for k, v := range c.Args {
				args[k] = v
			}
			result, callErr := a.call(ctx, c.Name, args)
			if hook != nil {
				hook(step, c.Name, args, result, callErr)
			}

			st := StepTrace{Step: step, CallName: c.Name, Args: args, Result: result}
			var payload map[string]any
			if callErr != nil {
				st.Error = callErr.Error()
				payload = map[string]any{"error": st.Error}
			} else {
				payload = responsePayload(result)
			}
			trace = append(trace, st)
			contents = append(contents, genai.NewContentFromFunctionResponse(c.Name, payload, genai.RoleUser))
		}
	}
	return "", trace, ErrNoAnswer
}

// call runs a calculator by name, else passes fetch_* tools through to the
// data source. Every response is logged.
func (a *Agent) call(ctx context.Context, name string, args map[string]any) (any, error) {
	var (
		result any
		err    error
	)
	switch {
	case a.isLocal(name):
		result, err = a.registry.Invoke(ctx, name, args)
	case a.fetcher != nil && fimcp.IsRemoteTool(name):
		var raw json.RawMessage
		raw, err = a.fetcher.Fetch(ctx, name, args)
		if err == nil {
			result = raw
		}
	default:
		err = fmt.Errorf("%w: %s", tools.ErrUnknownTool, name)
	}
	if err != nil {
		log.Printf("tool %s failed: %v", name, err)
		return nil, err
	}
	log.Printf("tool %s response: %s", name, preview(result))
	return result, nil
}

func (a *Agent) isLocal(name string) bool {
	_, ok := a.registry.Lookup(name)
	return ok
}

// responsePayload converts a tool result into the object form a function
// response needs. Objects pass through, anything else is wrapped as output.
func responsePayload(result any) map[string]any {
	b, err := json.Marshal(result)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return map[string]any{"output": string(b)}
	}
	if m, ok := decoded.(map[string]any); ok {
		return m
	}
	return map[string]any{"output": decoded}
}

func preview(result any) string {
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	if len(b) > logPreviewLen {
		return string(b[:logPreviewLen]) + "..."
	}
	return string(b)
}

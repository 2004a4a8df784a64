package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finsage/agent"
	"finsage/conf"
	"finsage/constants"
	"finsage/fimcp"
	"finsage/store"
	"finsage/tools"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

const queryHistoryLimit = 100

// Runner answers a question with tools. *agent.Agent is the production one.
type Runner interface {
	Run(ctx context.Context, history []*genai.Content, query string, opts agent.Options, hook agent.ToolHook) (string, []agent.StepTrace, error)
}

type App struct {
	cfg      conf.Config
	db       store.Store
	agent    Runner
	registry *tools.Registry
	remote   bool
}

func NewApp(cfg conf.Config, db store.Store, runner Runner, registry *tools.Registry, remote bool) *App {
	return &App{cfg: cfg, db: db, agent: runner, registry: registry, remote: remote}
}

func (a *App) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.secureMiddleware)

	r.Get("/", healthOK)
	r.Post("/health", healthOK)
	r.Post("/sessions", a.handleCreateSession)
	r.Get("/sessions/{id}/history", a.handleGetHistory)
	r.Get("/tools", a.handleListTools)
	r.Post("/tools/{name}", a.handleInvokeTool)
	r.Post("/query", a.handleQueryAgent)
	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("health ok"))
}

func (a *App) secureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Env != constants.ENV_LOCAL {
			w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
			w.Header().Set("Content-Security-Policy", "default-src 'self'")
			w.Header().Set("X-Frame-Options", "DENY")
		}
		next.ServeHTTP(w, r)
	})
}

/* ---- Sessions ---- */

type createSessionReq struct {
	Title string `json:"title,omitempty"`
}
type createSessionResp struct {
	SessionID string `json:"session_id"`
}

func (a *App) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	id, err := a.db.CreateSession(ctx, req.Title)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, createSessionResp{SessionID: id.String()})
}

func (a *App) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sid, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad session id", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	msgs, err := a.db.History(ctx, sid, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []store.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

/* ---- Tools ---- */

type toolParam struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Default     float64 `json:"default"`
}

type toolView struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []toolParam `json:"params"`
}

type toolsResp struct {
	Calculators []toolView       `json:"calculators"`
	Remote      []fimcp.ToolInfo `json:"remote"`
}

func catalog(r *tools.Registry, remote bool) toolsResp {
	out := toolsResp{Calculators: []toolView{}, Remote: []fimcp.ToolInfo{}}
	for _, t := range r.Tools() {
		v := toolView{Name: t.Name, Description: t.Description, Params: []toolParam{}}
		for _, p := range t.Params {
			v.Params = append(v.Params, toolParam(p))
		}
		out.Calculators = append(out.Calculators, v)
	}
	if remote {
		out.Remote = fimcp.RemoteTools()
	}
	return out
}

func (a *App) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog(a.registry, a.remote))
}

// handleInvokeTool runs one calculator with the JSON body as arguments.
// Error records come back with 422.
func (a *App) handleInvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	args := map[string]any{}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	out, err := a.registry.Invoke(ctx, name, args)
	if errors.Is(err, tools.ErrUnknownTool) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	code := http.StatusOK
	if tools.Failed(out) {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, out)
}

/* ---- Agent (query) ---- */

type queryReq struct {
	SessionID   string   `json:"session_id,omitempty"`
	Q           string   `json:"q"`
	Prompt      string   `json:"prompt,omitempty"` // system instruction
	Model       string   `json:"model,omitempty"`
	Temperature float32  `json:"temperature,omitempty"`
	MaxTokens   int32    `json:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	MaxSteps    int      `json:"max_steps,omitempty"`
	ForceTools  bool     `json:"force_tools,omitempty"`
	TimeoutMS   int      `json:"timeout_ms,omitempty"`
}

func (q queryReq) options() agent.Options {
	return agent.Options{
		Prompt:      q.Prompt,
		Model:       q.Model,
		MaxSteps:    q.MaxSteps,
		ForceTools:  q.ForceTools,
		Temperature: q.Temperature,
		MaxTokens:   q.MaxTokens,
		Stop:        q.Stop,
	}
}

type queryResp struct {
	SessionID string            `json:"session_id"`
	Final     string            `json:"final"`
	Trace     []agent.StepTrace `json:"trace"`
	Err       string            `json:"err,omitempty"`
}

func (a *App) handleQueryAgent(w http.ResponseWriter, r *http.Request) {
	var req queryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Q) == "" {
		http.Error(w, `missing "q"`, http.StatusBadRequest)
		return
	}

	var sid uuid.UUID
	var err error
	if req.SessionID == "" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		sid, err = a.db.CreateSession(ctx, "")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	} else {
		sid, err = uuid.Parse(req.SessionID)
		if err != nil {
			http.Error(w, "bad session_id", http.StatusBadRequest)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		ok, err := a.db.SessionExists(ctx, sid)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "unknown session_id", http.StatusNotFound)
			return
		}
	}
	a.db.TouchSession(r.Context(), sid)

	ctx := r.Context()
	if req.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMS)*time.Millisecond)
		defer cancel()
	}
	opts := req.options()
	ctx = agent.WithOptions(ctx, opts)

	// prior turns only; the new question is appended by the agent
	prior, err := a.db.History(ctx, sid, queryHistoryLimit, store.RoleUser, store.RoleAssistant)
	if err != nil {
		http.Error(w, "load history: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := a.db.SaveMessage(ctx, sid, store.RoleUser, req.Q, nil); err != nil {
		log.Printf("save user message: %v", err)
	}

	stepIdx := 0
	onTool := func(step int, name string, args map[string]any, result any, callErr error) {
		stepIdx++
		inv := store.ToolInvocation{SessionID: sid, Step: stepIdx, Name: name, Args: args, Raw: result}
		if callErr != nil {
			inv.Error = callErr.Error()
		}
		if result != nil {
			if b, err := json.Marshal(result); err == nil {
				inv.ResultText = string(b)
			}
		}
		if err := a.db.SaveToolInvocation(context.Background(), inv); err != nil {
			log.Printf("save tool invocation %s: %v", name, err)
		}
		if inv.ResultText != "" {
			_ = a.db.SaveMessage(context.Background(), sid, store.RoleTool, inv.ResultText, map[string]any{"tool": name, "args": args})
		}
	}

	final, trace, loopErr := a.agent.Run(ctx, agent.HistoryContents(prior), req.Q, opts, onTool)
	if loopErr != nil {
		log.Printf("query %s: %v", sid, loopErr)
		writeJSON(w, http.StatusBadGateway, queryResp{SessionID: sid.String(), Trace: trace, Err: loopErr.Error()})
		return
	}

	if err := a.db.SaveMessage(context.Background(), sid, store.RoleAssistant, final, nil); err != nil {
		log.Printf("save assistant message: %v", err)
	}
	writeJSON(w, http.StatusOK, queryResp{SessionID: sid.String(), Final: final, Trace: trace})
}

/* ---------- helpers ---------- */

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

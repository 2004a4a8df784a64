package fimcp

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"
)

// MockEndpoint is where MockServer serves MCP over streamable HTTP.
const MockEndpoint = "/mcp/stream"

const mockInstructions = `A financial data server for Fi Money users. It returns only actual data from the user's connected accounts: net worth with asset and liability breakdowns, mutual fund, stock and bank transactions, EPF details and credit reports.
Never estimate or invent financial data. If some data is missing, say what is missing and that more accounts can be connected in the Fi Money app.`

var (
	loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html><body>
<h1>Fi Money test login</h1>
<form method="post" action="/login">
<input type="hidden" name="sessionId" value="{{.SessionID}}">
<select name="phoneNumber">{{range .AllowedMobileNumbers}}<option>{{.}}</option>{{end}}</select>
<button type="submit">Log in</button>
</form>
</body></html>`))
	loginDonePage = template.Must(template.New("done").Parse(`<!doctype html>
<html><body><p>Login successful. Return to your assistant.</p></body></html>`))
)

type loginRequired struct {
	Status   string `json:"status"`
	LoginURL string `json:"login_url"`
	Message  string `json:"message"`
}

// MockServer is a local stand-in for the Fi MCP server. It serves the data
// tools from a fixture directory once a session has logged in with one of
// the phone numbers found there.
type MockServer struct {
	dir     string
	baseURL string

	mu       sync.RWMutex
	sessions map[string]string

	sessionOf func(ctx context.Context) string
}

// NewMockServer serves fixtures from dir; baseURL is the externally visible
// address used to build login links.
func NewMockServer(dir, baseURL string) *MockServer {
	return &MockServer{
		dir:       dir,
		baseURL:   baseURL,
		sessions:  make(map[string]string),
		sessionOf: clientSessionID,
	}
}

func clientSessionID(ctx context.Context) string {
	if s := server.ClientSessionFromContext(ctx); s != nil {
		return s.SessionID()
	}
	return ""
}

// MCPServer builds the MCP server exposing every data tool.
func (m *MockServer) MCPServer() *server.MCPServer {
	s := server.NewMCPServer(
		"Fi MCP (fixtures)",
		"0.1.0",
		server.WithInstructions(mockInstructions),
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithToolHandlerMiddleware(m.auth),
	)
	for _, t := range RemoteTools() {
		s.AddTool(mcp.NewTool(t.Name, mcp.WithDescription(t.Description)), m.readFixture)
	}
	return s
}

// Handler routes MCP traffic and the login pages.
func (m *MockServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp/", server.NewStreamableHTTPServer(m.MCPServer(), server.WithEndpointPath(MockEndpoint)))
	mux.HandleFunc("/mockWebPage", m.handleLoginPage)
	mux.HandleFunc("/login", m.handleLogin)
	return mux
}

// AddSession marks sessionID as logged in with phone.
func (m *MockServer) AddSession(sessionID, phone string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = phone
}

func (m *MockServer) phoneFor(sessionID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	phone, ok := m.sessions[sessionID]
	return phone, ok
}

func (m *MockServer) loginURL(sessionID string) string {
	return fmt.Sprintf("%s/mockWebPage?sessionId=%s", m.baseURL, url.QueryEscape(sessionID))
}

type phoneKey struct{}

func (m *MockServer) auth(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := m.sessionOf(ctx)
		phone, ok := m.phoneFor(sessionID)
		if !ok {
			b, err := json.Marshal(loginRequired{
				Status:   statusLoginRequired,
				LoginURL: m.loginURL(sessionID),
				Message:  "Needs to login first by going to the login url. Show it as a clickable link if the client supports it, otherwise display it for the user to copy. Ask the user to come back once the login is done.",
			})
			if err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(string(b)), nil
		}
		if !lo.Contains(AllowedPhoneNumbers(m.dir), phone) {
			return mcp.NewToolResultError("phone number is not allowed"), nil
		}
		return next(context.WithValue(ctx, phoneKey{}, phone), req)
	}
}

func (m *MockServer) readFixture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phone, _ := ctx.Value(phoneKey{}).(string)
	f, err := NewDirFetcher(m.dir, phone)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := f.Fetch(ctx, req.Params.Name, nil)
	if err != nil {
		log.Printf("mock fi: %v", err)
		return mcp.NewToolResultError("error reading test data file"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (m *MockServer) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}
	data := struct {
		SessionID            string
		AllowedMobileNumbers []string
	}{
		SessionID:            sessionID,
		AllowedMobileNumbers: AllowedPhoneNumbers(m.dir),
	}
	if err := loginPage.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (m *MockServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessionID := r.FormValue("sessionId")
	phone := r.FormValue("phoneNumber")
	if sessionID == "" || phone == "" {
		http.Error(w, "sessionId and phoneNumber are required", http.StatusBadRequest)
		return
	}
	m.AddSession(sessionID, phone)
	log.Printf("mock fi: session %s logged in as %s", sessionID, phone)
	if err := loginDonePage.Execute(w, nil); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package conf

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"ENV", "ADDR", "GEMINI_MODEL", "AGENT_MAX_STEPS", "DATABASE_URL", "MCP_ADDR", "FI_MCP_ADDR", "LOG_MAX_SIZE_MB"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ":4000", cfg.Addr)
	assert.Equal(t, ":8090", cfg.MCPAddr)
	assert.Equal(t, ":8080", cfg.FiMockAddr)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model)
	assert.Equal(t, 8, cfg.MaxSteps)
	assert.Equal(t, "sqlite:finsage.db", cfg.DatabaseURL)
	assert.Equal(t, int64(10), cfg.LogMaxSizeMB)
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ADDR", ":9999")
	t.Setenv("AGENT_MAX_STEPS", "3")
	t.Setenv("FIXTURE_DIR", "testdata")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 3, cfg.MaxSteps)
	assert.Equal(t, "testdata", cfg.FixtureDir)
}

func TestLoad_BadNumber(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AGENT_MAX_STEPS", "many")

	_, err := Load()
	assert.Error(t, err)
}

func TestAPIKey(t *testing.T) {
	assert.Equal(t, "g", Config{GeminiAPIKey: "g", GoogleAPIKey: "o"}.APIKey())
	assert.Equal(t, "o", Config{GoogleAPIKey: "o"}.APIKey())
}

func TestRequireDataSource(t *testing.T) {
	assert.NoError(t, Config{MCPServerURL: "http://localhost:8080/mcp/stream"}.RequireDataSource())
	assert.NoError(t, Config{FixtureDir: "testdata", FixturePhone: "1111111111"}.RequireDataSource())
	assert.Error(t, Config{FixtureDir: "testdata"}.RequireDataSource())
	assert.Error(t, Config{}.RequireDataSource())
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "***cret", displayValue("GEMINI_API_KEY", "supersecret"))
	assert.Equal(t, "***", displayValue("GEMINI_API_KEY", "abc"))
	assert.Equal(t, ":4000", displayValue("ADDR", ":4000"))
}

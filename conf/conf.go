// Package conf loads process configuration from the environment, optionally
// seeded from a .env file.
package conf

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local"`
	Addr string `env:"ADDR" envDefault:":4000"`

	// Data source: a Fi MCP server, or a fixture directory for offline runs.
	MCPServerURL string `env:"MCP_SERVER_URL"`
	FixtureDir   string `env:"FIXTURE_DIR"`
	FixturePhone string `env:"FIXTURE_PHONE"`

	// MCPAddr is where `finsage mcp` serves the calculators.
	MCPAddr string `env:"MCP_ADDR" envDefault:":8090"`
	// FiMockAddr is where `finsage fimock` serves FIXTURE_DIR as a Fi server.
	FiMockAddr string `env:"FI_MCP_ADDR" envDefault:":8080"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite:finsage.db"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	Model        string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	Instruction  string `env:"AGENT_INSTRUCTION"`
	MaxSteps     int    `env:"AGENT_MAX_STEPS" envDefault:"8"`

	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int64  `env:"LOG_MAX_SIZE_MB" envDefault:"10"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
}

var secretVars = map[string]bool{
	"GEMINI_API_KEY": true,
	"GOOGLE_API_KEY": true,
	"DATABASE_URL":   true,
}

// Load reads .env (when present) into the process environment and parses
// the configuration from it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: reading .env: %v", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// APIKey prefers GEMINI_API_KEY over GOOGLE_API_KEY.
func (c Config) APIKey() string {
	if c.GeminiAPIKey != "" {
		return c.GeminiAPIKey
	}
	return c.GoogleAPIKey
}

// RequireDataSource reports whether a data source is configured.
func (c Config) RequireDataSource() error {
	if c.MCPServerURL != "" {
		return nil
	}
	if c.FixtureDir != "" && c.FixturePhone != "" {
		return nil
	}
	return errors.New("set MCP_SERVER_URL, or FIXTURE_DIR and FIXTURE_PHONE")
}

// LogSummary prints the effective settings with secrets masked.
func (c Config) LogSummary() {
	for _, kv := range [][2]string{
		{"ENV", c.Env},
		{"ADDR", c.Addr},
		{"MCP_SERVER_URL", c.MCPServerURL},
		{"FIXTURE_DIR", c.FixtureDir},
		{"DATABASE_URL", c.DatabaseURL},
		{"GEMINI_API_KEY", c.APIKey()},
		{"GEMINI_MODEL", c.Model},
	} {
		log.Printf("%s=%s", kv[0], displayValue(kv[0], kv[1]))
	}
}

func displayValue(key, val string) string {
	if !secretVars[key] || val == "" {
		return val
	}
	if len(val) > 4 {
		return "***" + val[len(val)-4:]
	}
	return "***"
}

package main

import (
	"context"
	"fmt"
	"log"

	"finsage/agent"
	"finsage/conf"
	"finsage/constants"
	"finsage/fimcp"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"google.golang.org/genai"
)

func newGenAI(ctx context.Context, cfg conf.Config) (*genai.Client, error) {
	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if key := cfg.APIKey(); key != "" {
		cc.APIKey = key
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai: %w", err)
	}
	return c, nil
}

// openFetcher connects to the Fi MCP server when one is configured and
// otherwise serves the fixture directory. The returned func releases it.
// A nil sampler leaves MCP sampling disabled.
func openFetcher(ctx context.Context, cfg conf.Config, sampler *agent.GeminiSampler) (fimcp.Fetcher, func(), error) {
	noop := func() {}
	if err := cfg.RequireDataSource(); err != nil {
		return nil, noop, err
	}
	if cfg.MCPServerURL == "" {
		f, err := fimcp.NewDirFetcher(cfg.FixtureDir, cfg.FixturePhone)
		if err != nil {
			return nil, noop, err
		}
		log.Printf("serving fixtures for %s from %s", cfg.FixturePhone, cfg.FixtureDir)
		return f, noop, nil
	}

	var handler mcpclient.SamplingHandler
	if sampler != nil {
		handler = sampler
	}
	c, err := fimcp.Dial(ctx, cfg.MCPServerURL, constants.AppName, constants.AppVersion, handler)
	if err != nil {
		return nil, noop, err
	}
	log.Printf("connected to fi mcp at %s", cfg.MCPServerURL)
	return fimcp.NewMCPFetcher(c), func() { c.Close() }, nil
}

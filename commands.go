package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"finsage/agent"
	"finsage/conf"
	"finsage/constants"
	"finsage/fimcp"
	"finsage/logger"
	"finsage/store"
	"finsage/tools"

	"github.com/go-resty/resty/v2"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cfg := &conf.Config{}

	rootCmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "FinSage - personal finance assistant over Fi Money data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := conf.Load()
			if err != nil {
				return err
			}
			*cfg = loaded
			if err := logger.Setup(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups); err != nil {
				log.Printf("warning: %v", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newMCPCmd(cfg))
	rootCmd.AddCommand(newFiMockCmd(cfg))
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newRunCmd(cfg))
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newServeCmd(cfg *conf.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway with the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *cfg)
		},
	}
}

func serve(ctx context.Context, cfg conf.Config) error {
	cfg.LogSummary()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()

	genClient, err := newGenAI(ctx, cfg)
	if err != nil {
		return err
	}
	sampler := &agent.GeminiSampler{Gen: genClient.Models, DefaultModel: cfg.Model}
	fetcher, closeFetcher, err := openFetcher(ctx, cfg, sampler)
	if err != nil {
		return err
	}
	defer closeFetcher()

	registry := tools.NewRegistry(fetcher)
	app := NewApp(cfg, db, agent.New(cfg, genClient.Models, registry, fetcher), registry, true)

	srv := &http.Server{
		Addr:              cfg.Addr,
		ReadHeaderTimeout: 3 * time.Second,
		Handler:           app.Routes(),
		IdleTimeout:       65 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newMCPCmd(cfg *conf.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the calculators as MCP tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdio, _ := cmd.Flags().GetBool("stdio")
			fetcher, closeFetcher, err := openFetcher(cmd.Context(), *cfg, nil)
			if err != nil {
				return err
			}
			defer closeFetcher()

			s := newMCPServer(tools.NewRegistry(fetcher))
			if stdio {
				return server.ServeStdio(s)
			}
			log.Printf("mcp listening on %s/mcp", cfg.MCPAddr)
			return server.NewStreamableHTTPServer(s).Start(cfg.MCPAddr)
		},
	}
	cmd.Flags().Bool("stdio", false, "Serve over stdin/stdout instead of HTTP")
	return cmd
}

func newMCPServer(registry *tools.Registry) *server.MCPServer {
	s := server.NewMCPServer(
		constants.AppName,
		constants.AppVersion,
		server.WithInstructions("Personal finance calculators over the user's Fi Money data: portfolio P&L, retirement projection, net worth, credit score, EPF balance, bank cash flow, and top funds and stocks."),
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)
	tools.RegisterMCP(s, registry)
	return s
}

func newFiMockCmd(cfg *conf.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fimock",
		Short: "Serve FIXTURE_DIR as a local Fi MCP server with a test login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.FixtureDir == "" {
				return errors.New("set FIXTURE_DIR")
			}
			baseURL, _ := cmd.Flags().GetString("base-url")
			if baseURL == "" {
				baseURL = "http://localhost" + cfg.FiMockAddr
			}
			mock := fimcp.NewMockServer(cfg.FixtureDir, baseURL)
			log.Printf("fi mock listening on %s%s", cfg.FiMockAddr, fimcp.MockEndpoint)
			srv := &http.Server{
				Addr:              cfg.FiMockAddr,
				ReadHeaderTimeout: 3 * time.Second,
				Handler:           mock.Handler(),
			}
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().String("base-url", "", "Public base URL used in login links")
	return cmd
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the calculators and remote data tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			printCatalog(cmd.OutOrStdout(), catalog(tools.NewRegistry(nil), true))
			return nil
		},
	}
}

func printCatalog(w io.Writer, c toolsResp) {
	fmt.Fprintln(w, titleStyle.Render("Calculators"))
	for _, t := range c.Calculators {
		fmt.Fprintf(w, "  %s  %s\n", nameStyle.Render(t.Name), t.Description)
		for _, p := range t.Params {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("      %s (%s, default %v)  %s", p.Name, p.Type, p.Default, p.Description)))
		}
	}
	fmt.Fprintln(w, titleStyle.Render("Fi data tools"))
	for _, t := range c.Remote {
		fmt.Fprintf(w, "  %s\n", nameStyle.Render(t.Name))
	}
}

func newRunCmd(cfg *conf.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run <tool> [key=value...]",
		Short: "Invoke one calculator and print its JSON result",
		Example: `  finsage run retirement_calculator current_age=35 target_age=60 net_worth=1500000
  finsage run top_mf_performers top_n=3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseToolArgs(args[1:])
			if err != nil {
				return err
			}
			var fetcher fimcp.Fetcher
			f, closeFetcher, err := openFetcher(cmd.Context(), *cfg, nil)
			if err != nil {
				log.Printf("no data source: %v", err)
			} else {
				fetcher = f
				defer closeFetcher()
			}
			return runTool(cmd.Context(), cmd.OutOrStdout(), tools.NewRegistry(fetcher), args[0], toolArgs)
		},
	}
}

func runTool(ctx context.Context, w io.Writer, registry *tools.Registry, name string, args map[string]any) error {
	out, err := registry.Invoke(ctx, name, args)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if tools.Failed(out) {
		fmt.Fprintln(w, errorStyle.Render(string(b)))
		return nil
	}
	fmt.Fprintln(w, string(b))
	return nil
}

// parseToolArgs turns key=value pairs into tool arguments. Numeric values
// become float64, the rest stay strings.
func parseToolArgs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("argument %q is not key=value", p)
		}
		if f, err := cast.ToFloat64E(v); err == nil {
			out[k] = f
		} else {
			out[k] = v
		}
	}
	return out, nil
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a running gateway a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			session, _ := cmd.Flags().GetString("session")
			showTrace, _ := cmd.Flags().GetBool("trace")
			return ask(cmd.Context(), cmd.OutOrStdout(), url, session, strings.Join(args, " "), showTrace)
		},
	}
	cmd.Flags().String("url", "http://localhost:4000", "Gateway base URL")
	cmd.Flags().String("session", "", "Continue an existing session")
	cmd.Flags().Bool("trace", false, "Print the tool calls made")
	return cmd
}

func ask(ctx context.Context, w io.Writer, baseURL, session, question string, showTrace bool) error {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(2 * time.Minute)

	var out queryResp
	resp, err := client.R().
		SetContext(ctx).
		SetBody(queryReq{SessionID: session, Q: question}).
		SetResult(&out).
		SetError(&out).
		Post("/query")
	if err != nil {
		return fmt.Errorf("query gateway: %w", err)
	}
	if showTrace {
		for _, st := range out.Trace {
			if st.CallName != "" {
				fmt.Fprintln(w, toolCallStyle.Render("-> "+st.CallName))
			}
		}
	}
	if resp.IsError() {
		msg := out.Err
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		fmt.Fprintln(w, errorStyle.Render(msg))
		return fmt.Errorf("gateway returned %s", resp.Status())
	}
	fmt.Fprintln(w, answerStyle.Render(out.Final))
	fmt.Fprintln(w, mutedStyle.Render("session "+out.SessionID))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", constants.AppName, constants.AppVersion)
		},
	}
}

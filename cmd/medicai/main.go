package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	_ "github.com/lib/pq"

	"medicai/internal/agent"
	"medicai/internal/cli"
	"medicai/internal/config"
	httpserver "medicai/internal/http"
	"medicai/internal/llm"
	"medicai/internal/memory"
	"medicai/internal/store"
	"medicai/internal/tools"
)

func main() {
	root := &cobra.Command{
		Use:           "medicai",
		Short:         "AI-powered medical memory system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var doctorID string
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive doctor console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), doctorID)
		},
	}
	chatCmd.Flags().StringVar(&doctorID, "doctor", "Jones", "doctor identifier threaded through agent calls")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(serveCmd, chatCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger: console output in development,
// JSON elsewhere.
func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// bootstrap loads config, opens the store, and wires the service graph.
// The returned store must be closed by the caller.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, store.Store, *agent.Agent, *tools.Toolset, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Logger{}, nil, nil, nil, err
	}
	log := newLogger(cfg)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, log, nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, log, nil, nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, log, nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	st := store.NewPostgres(db, cfg.NotifyChannel, log)
	log.Info().Msg("connected to medical record store")

	mem := memory.NewService(st, log)
	ts := tools.NewToolset(mem, cfg.RecentPatientLimit, log)
	client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	ag := agent.New(client, ts, log)
	return cfg, log, st, ag, ts, nil
}

func runServe(ctx context.Context) error {
	cfg, log, st, ag, ts, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	_, e := httpserver.NewServer(ts, ag, cfg.CORSOrigins, log)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func runChat(ctx context.Context, doctorID string) error {
	_, log, st, ag, _, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	repl := cli.New(ag, doctorID, log)
	return repl.Run(ctx, os.Stdin, os.Stdout)
}

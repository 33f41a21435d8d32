package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pevans/newsdigest/api"
	"github.com/pevans/newsdigest/config"
	"github.com/pevans/newsdigest/logger"
	"github.com/pevans/newsdigest/storage"
	"github.com/spf13/cobra"
)

type options struct {
	storage    string
	dsn        string
	addr       string
	configPath string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "articles-api",
		Short:         "Serve scraped articles over HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.storage, "storage", "", "record store type: csv or sqlite")
	flags.StringVar(&opts.dsn, "dsn", "", "record store path (default TechCrunch_latest_news.csv)")
	flags.StringVar(&opts.addr, "addr", ":8080", "listen address")
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.newsdigest/config.yaml)")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	if opts.storage != "" {
		cfg.Storage.Type = opts.storage
	}
	if opts.dsn != "" {
		cfg.Storage.DSN = opts.dsn
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "TechCrunch_latest_news.csv"
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, closeStore, err := storage.Open(cfg.Storage.Type, cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           api.NewServer(store).SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting articles API server",
			logger.String("addr", opts.addr),
			logger.String("storage", cfg.Storage.Type),
			logger.String("dsn", cfg.Storage.DSN),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down articles API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

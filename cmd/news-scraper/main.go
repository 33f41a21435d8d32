package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pevans/newsdigest/article"
	"github.com/pevans/newsdigest/config"
	"github.com/pevans/newsdigest/fetcher"
	"github.com/pevans/newsdigest/logger"
	"github.com/pevans/newsdigest/scraper"
	"github.com/pevans/newsdigest/storage"
	"github.com/spf13/cobra"
)

type options struct {
	verbose     bool
	source      string
	output      string
	storage     string
	configPath  string
	failFast    bool
	maxAttempts int
}

func main() {
	// A missing .env file is fine; the environment may already be set
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
		Use:   "news-scraper",
		Short: "Scrape the latest articles from a news site",
		Long: `Scrape the latest articles from a news site's listing page and append
the ones not seen before to a record store.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.source, "source", article.SourceTechCrunch.String(), "source to scrape (techcrunch, goblog)")
	flags.StringVarP(&opts.output, "output", "o", "", "record store path (default <Source>_latest_news.csv)")
	flags.StringVar(&opts.storage, "storage", "", "record store type: csv or sqlite")
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.newsdigest/config.yaml)")
	flags.BoolVar(&opts.failFast, "fail-fast", false, "abort the run on the first article that fails")
	flags.IntVar(&opts.maxAttempts, "max-attempts", 0, "fetch attempts per page")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	if opts.storage != "" {
		cfg.Storage.Type = opts.storage
	}
	if opts.failFast {
		cfg.Scrape.FailFast = true
	}
	if opts.maxAttempts > 0 {
		cfg.Fetch.MaxAttempts = opts.maxAttempts
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	source, err := article.ParseSource(opts.source)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = cfg.Storage.DSN
	}
	if output == "" {
		output = defaultOutput(source, cfg.Storage.Type)
	}

	store, closeStore, err := storage.Open(cfg.Storage.Type, output)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	f := fetcher.NewDefault(&fetcher.Config{
		MaxAttempts: cfg.Fetch.MaxAttempts,
		Timeout:     cfg.Fetch.Timeout,
		UserAgent:   cfg.Fetch.UserAgent,
		Headless:    cfg.IsHeadless(),
	}, log)

	s := scraper.New(f, scraper.DefaultRegistry(log), &scraper.Config{
		FailFast: cfg.Scrape.FailFast,
	}, log)

	result, err := s.ScrapeSource(cmd.Context(), source)
	if err != nil {
		return err
	}

	added, err := storage.Update(store, result.Records)
	if err != nil {
		return err
	}

	log.Info("Records saved",
		logger.String("run_id", result.RunID),
		logger.String("output", output),
		logger.Int("added", added),
	)

	fmt.Fprintf(cmd.OutOrStdout(), "Scraped %d articles from %s (%d skipped)\n",
		len(result.Records), source.DisplayName(), len(result.Failures))
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d new articles to %s\n", added, output)

	return nil
}

// defaultOutput names the record store after the source, as in
// TechCrunch_latest_news.csv.
func defaultOutput(source article.Source, kind string) string {
	ext := "csv"
	if kind == storage.KindSQLite {
		ext = "db"
	}
	return fmt.Sprintf("%s_latest_news.%s", source.DisplayName(), ext)
}

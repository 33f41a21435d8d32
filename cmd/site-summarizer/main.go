package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pevans/newsdigest/config"
	"github.com/pevans/newsdigest/logger"
	"github.com/pevans/newsdigest/storage"
	"github.com/pevans/newsdigest/summarizer"
	"github.com/spf13/cobra"
)

type options struct {
	verbose    bool
	sentences  int
	configPath string
}

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "site-summarizer INPUT OUTPUT",
		Short: "Summarize scraped articles",
		Long: `Read articles from the INPUT CSV file, add a LexRank summary of each
article's content, and write the result to the OUTPUT CSV file.

Example:
  site-summarizer TechCrunch_latest_news.csv TechCrunch_summaries.csv`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], args[1])
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.IntVar(&opts.sentences, "sentences", 0, "sentences per summary (default 3)")
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.newsdigest/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, opts *options, input, output string) error {
	if input == output {
		return fmt.Errorf("output path must differ from input path: %s", input)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()

	if opts.sentences > 0 {
		cfg.Summarizer.Sentences = opts.sentences
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

	records, err := storage.ReadCSV(input)
	if err != nil {
		return err
	}

	s, err := summarizer.New(summarizer.Config{
		MaxSentences: cfg.Summarizer.Sentences,
		Log:          log,
	})
	if err != nil {
		return err
	}

	summarized := s.SummarizeRecords(records)
	if err := storage.WriteSummarizedCSV(output, summarized); err != nil {
		return err
	}

	log.Info("Summaries written",
		logger.String("input", input),
		logger.String("output", output),
		logger.Int("articles", len(summarized)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Summarized %d articles to %s\n", len(summarized), output)

	return nil
}

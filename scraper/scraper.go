// Package scraper turns a source's listing page into article records.
package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pevans/newsdigest/article"
	"github.com/pevans/newsdigest/logger"
)

// errNoContent records an article page whose fetch exhausted its retries.
var errNoContent = errors.New("article page returned no content")

// PageFetcher retrieves page markup. ok is false when the page could not be
// reached after retrying; that outcome is not an error.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, render bool) (markup string, ok bool, err error)
}

// Config holds configuration for a scrape run.
type Config struct {
	// Abort the run on the first article that fails to fetch or extract
	// instead of skipping it
	FailFast bool
}

// ArticleFailure is an article skipped during a run.
type ArticleFailure struct {
	URL string
	Err error
}

// Result holds the outcome of one scrape run.
type Result struct {
	RunID    string
	Source   article.Source
	Records  []article.Record
	Failures []ArticleFailure
}

// Scraper runs the extraction pipeline: fetch the listing, enumerate
// article URLs, then fetch and extract each article in order.
type Scraper struct {
	fetcher  PageFetcher
	registry *Registry
	config   *Config
	log      logger.Logger
}

// New creates a scraper.
func New(fetcher PageFetcher, registry *Registry, config *Config, log logger.Logger) *Scraper {
	if config == nil {
		config = &Config{}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Scraper{
		fetcher:  fetcher,
		registry: registry,
		config:   config,
		log:      log,
	}
}

// ScrapeSource scrapes the source's own listing page.
func (s *Scraper) ScrapeSource(ctx context.Context, source article.Source) (*Result, error) {
	extractor, err := s.registry.Lookup(source)
	if err != nil {
		return nil, err
	}
	return s.Scrape(ctx, extractor.ListingURL(), source)
}

// Scrape extracts every article linked from listingURL. An unreachable
// listing yields an empty result and no error. An unknown source fails with
// article.ErrNoArticleSourceMatched once the listing has been fetched.
func (s *Scraper) Scrape(ctx context.Context, listingURL string, source article.Source) (*Result, error) {
	runID := uuid.New().String()
	log := s.log.With(logger.String("run_id", runID), logger.String("source", source.String()))

	// The extractor decides how the listing is fetched, but an unknown
	// source is only reported once the listing is known to exist
	extractor, lookupErr := s.registry.Lookup(source)
	render := true
	if lookupErr == nil {
		render = extractor.Render()
	}

	result := &Result{
		RunID:   runID,
		Source:  source,
		Records: []article.Record{},
	}

	log.Info("Fetching listing page", logger.String("url", listingURL))
	markup, ok, err := s.fetcher.Fetch(ctx, listingURL, render)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}
	if !ok {
		log.Warn("Listing page returned no content", logger.String("url", listingURL))
		return result, nil
	}

	if lookupErr != nil {
		log.Warn("No article source matched")
		return nil, lookupErr
	}

	listing, err := NewPage(listingURL, markup)
	if err != nil {
		return nil, err
	}

	urls := extractor.ArticleURLs(listing)
	log.Debug("Found article URLs", logger.Int("count", len(urls)))

	for _, url := range urls {
		record, err := s.scrapeArticle(ctx, extractor, url)
		if err == nil {
			result.Records = append(result.Records, *record)
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("scrape cancelled: %w", ctxErr)
		}
		if s.config.FailFast && !errors.Is(err, errNoContent) {
			return nil, err
		}

		log.Warn("Skipping article", logger.String("url", url), logger.Error(err))
		result.Failures = append(result.Failures, ArticleFailure{URL: url, Err: err})
	}

	log.Info("Scrape complete",
		logger.Int("records", len(result.Records)),
		logger.Int("skipped", len(result.Failures)),
	)

	return result, nil
}

// scrapeArticle fetches one article page and extracts its record.
func (s *Scraper) scrapeArticle(ctx context.Context, extractor Extractor, url string) (*article.Record, error) {
	markup, ok, err := s.fetcher.Fetch(ctx, url, extractor.Render())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoContent
	}

	page, err := NewPage(url, markup)
	if err != nil {
		return nil, err
	}

	return ExtractRecord(extractor, page)
}

// ExtractRecord runs every field extraction against an article page. The
// first structural failure is returned and no partial record is built.
func ExtractRecord(extractor Extractor, page *Page) (*article.Record, error) {
	title, err := extractor.Title(page.Doc, page.URL)
	if err != nil {
		return nil, err
	}

	id := extractor.ID(page.URL)

	content, err := extractor.Content(page.Doc, page.URL)
	if err != nil {
		return nil, err
	}

	author, err := extractor.Author(page.Doc, page.URL)
	if err != nil {
		return nil, err
	}

	date, err := extractor.Date(page.Doc, page.URL)
	if err != nil {
		return nil, err
	}

	return &article.Record{
		Title:         title,
		ArticleID:     id,
		Content:       content,
		URL:           page.URL,
		Author:        author,
		DatePublished: date,
		Source:        extractor.Source(),
	}, nil
}

package fetcher

import (
	"context"

	"github.com/gocolly/colly/v2"
)

// StaticTransport retrieves raw markup over HTTP without running scripts.
type StaticTransport struct {
	config *Config
}

// NewStaticTransport creates a colly-backed transport from config.
func NewStaticTransport(config *Config) *StaticTransport {
	return &StaticTransport{config: config}
}

// Open creates a collector for one fetch. Revisits are allowed so retries
// can request the same URL again.
func (t *StaticTransport) Open(ctx context.Context) (Session, error) {
	opts := []colly.CollectorOption{
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
	}
	if t.config.UserAgent != "" {
		opts = append(opts, colly.UserAgent(t.config.UserAgent))
	}

	c := colly.NewCollector(opts...)
	if t.config.Timeout > 0 {
		c.SetRequestTimeout(t.config.Timeout)
	}

	s := &staticSession{collector: c}
	c.OnResponse(func(r *colly.Response) {
		s.body = r.Body
	})

	return s, nil
}

type staticSession struct {
	collector *colly.Collector
	body      []byte
}

func (s *staticSession) Get(_ context.Context, url string) (string, error) {
	s.body = nil
	if err := s.collector.Visit(url); err != nil {
		return "", err
	}
	return string(s.body), nil
}

func (s *staticSession) Close() error {
	s.collector.Wait()
	return nil
}

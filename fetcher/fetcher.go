// Package fetcher retrieves page markup through short-lived transport
// sessions, retrying transient connection failures a bounded number of
// times.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pevans/newsdigest/logger"
)

// Transport opens sessions against a page retrieval engine.
type Transport interface {
	Open(ctx context.Context) (Session, error)
}

// Session retrieves pages. A session belongs to a single Fetch call and is
// closed before Fetch returns.
type Session interface {
	Get(ctx context.Context, url string) (string, error)
	Close() error
}

// Config holds configuration for page fetching.
type Config struct {
	// Attempts per fetch, including the first one
	MaxAttempts int
	// Timeout per attempt
	Timeout time.Duration
	// User-Agent sent by both transports
	UserAgent string
	// Run the rendering browser without a window
	Headless bool
}

// DefaultConfig returns the default fetch configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Timeout:     60 * time.Second,
		UserAgent:   "newsdigest/1.0 (news article scraper)",
		Headless:    true,
	}
}

// Fetcher retrieves page markup, either rendered (scripts executed) or
// static.
type Fetcher struct {
	rendered Transport
	static   Transport
	config   *Config
	log      logger.Logger
}

// New creates a fetcher over the given transports.
func New(rendered, static Transport, config *Config, log logger.Logger) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Fetcher{
		rendered: rendered,
		static:   static,
		config:   config,
		log:      log,
	}
}

// NewDefault creates a fetcher backed by headless Chrome for rendered pages
// and colly for static ones.
func NewDefault(config *Config, log logger.Logger) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	return New(NewBrowserTransport(config), NewStaticTransport(config), config, log)
}

// Fetch returns the markup of url. When every attempt fails with a
// transient connection error, Fetch returns ok=false and a nil error: the
// page is treated as absent rather than as a failure. Any other failure is
// returned as an error without retrying.
func (f *Fetcher) Fetch(ctx context.Context, url string, render bool) (markup string, ok bool, err error) {
	transport := f.static
	if render {
		transport = f.rendered
	}

	session, err := transport.Open(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			f.log.Warn("Failed to close session", logger.String("url", url), logger.Error(closeErr))
		}
	}()

	attempt := 0
	markup, err = backoff.Retry(ctx, func() (string, error) {
		attempt++
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", backoff.Permanent(ctxErr)
		}

		page, getErr := session.Get(ctx, url)
		if getErr == nil {
			return page, nil
		}
		if !IsTransient(getErr) {
			return "", backoff.Permanent(getErr)
		}

		f.log.Warn("Connection error occurred",
			logger.String("url", url),
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", f.config.MaxAttempts),
			logger.Error(getErr),
		)
		return "", getErr
	},
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(uint(f.config.MaxAttempts)),
	)

	if err == nil {
		return markup, true, nil
	}
	if ctx.Err() != nil {
		return "", false, fmt.Errorf("fetch of %s cancelled: %w", url, err)
	}
	if IsTransient(err) {
		f.log.Error("Failed to establish connection",
			logger.String("url", url),
			logger.Int("attempts", attempt),
		)
		return "", false, nil
	}

	return "", false, fmt.Errorf("failed to fetch %s: %w", url, err)
}

// transientPatterns match connection-level failures reported as text, such
// as Chrome network error codes.
var transientPatterns = []string{
	"connection reset",
	"connection refused",
	"connection aborted",
	"broken pipe",
	"unexpected eof",
	"i/o timeout",
	"net::err_connection_",
	"net::err_timed_out",
	"net::err_internet_disconnected",
	"net::err_network_changed",
	"net::err_empty_response",
}

// IsTransient reports whether err is a connectivity or protocol-level I/O
// failure worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

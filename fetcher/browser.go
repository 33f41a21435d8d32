package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserTransport renders pages in Chrome so script-populated markup is
// present in the result.
type BrowserTransport struct {
	opts    []chromedp.ExecAllocatorOption
	timeout time.Duration
}

// NewBrowserTransport creates a Chrome transport from config.
func NewBrowserTransport(config *Config) *BrowserTransport {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", config.Headless))
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}

	return &BrowserTransport{
		opts:    opts,
		timeout: config.Timeout,
	}
}

// Open launches a browser process for one fetch.
func (t *BrowserTransport) Open(ctx context.Context) (Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, t.opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Running no actions starts the browser, so launch failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &browserSession{
		ctx:     browserCtx,
		timeout: t.timeout,
		release: func() {
			cancelBrowser()
			cancelAlloc()
		},
	}, nil
}

type browserSession struct {
	ctx     context.Context
	timeout time.Duration
	release func()
}

// Get navigates to url and returns the document's outer HTML after load.
func (s *browserSession) Get(ctx context.Context, url string) (string, error) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, s.timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}

	return html, nil
}

// Close shuts the browser down and releases its process.
func (s *browserSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.release()
	return err
}

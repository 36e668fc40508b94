// Package rod fetches pages through a headless Chrome so that article
// markup inserted by scripts is present in the returned HTML.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/revise"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the number of pages rendered before the browser is
// restarted. Chrome's memory baseline only grows over a long campaign.
const DefaultMaxPages = 75

// DefaultFetchTimeout bounds navigation and load of a single page.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements revise.Fetcher at compile time.
var _ revise.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a headless browser.
// It is safe for concurrent use.
type Fetcher struct {
	timeout   time.Duration
	userAgent string
	maxPages  int

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int
	closed   bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout bounds each Fetch call.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides the browser's own User-Agent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxPages sets how many pages are rendered before a restart.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a headless browser. Close must be called to stop it.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.launch(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fetch navigates to url, waits for the load event and returns the
// document HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	browser, err := f.acquire()
	if err != nil {
		return "", err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", revise.Errorf(revise.EFETCH, "open page for %s: %v", url, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return "", revise.Errorf(revise.EFETCH, "set user agent: %v", err)
		}
	}
	if err := page.Navigate(url); err != nil {
		return "", fetchError(ctx, url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fetchError(ctx, url, err)
	}
	html, err := page.HTML()
	if err != nil {
		return "", fetchError(ctx, url, err)
	}
	return html, nil
}

// Close stops the browser. It is safe to call more than once.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.shutdown()
}

// LauncherPID returns the browser process ID, or 0 when none is running.
func (f *Fetcher) LauncherPID() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.launcher == nil {
		return 0
	}
	return f.launcher.PID()
}

// acquire returns the running browser, restarting it once maxPages
// pages have been rendered. A failed restart keeps the old browser.
func (f *Fetcher) acquire() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, revise.Errorf(revise.EINVALID, "fetcher is closed")
	}
	if f.maxPages > 0 && f.pages >= f.maxPages {
		oldBrowser, oldLauncher := f.browser, f.launcher
		if err := f.launch(); err == nil {
			_ = oldBrowser.Close()
			oldLauncher.Kill()
		}
	}
	f.pages++
	return f.browser, nil
}

// launch starts a browser and resets the page count. Callers other than
// NewFetcher must hold mu.
func (f *Fetcher) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser, f.launcher, f.pages = browser, l, 0
	return nil
}

func (f *Fetcher) shutdown() error {
	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// fetchError keeps context errors intact so callers can match them.
func fetchError(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("fetch %s: %w", url, ctxErr)
	}
	return revise.Errorf(revise.EFETCH, "could not render %s: %v", url, err)
}

package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"lego-price-agent/utils"
)

// PageRequest names the page a marketplace adapter wants rendered.
type PageRequest struct {
	Marketplace    string
	URL            string
	ReadySelectors []string
}

// Loader returns the rendered HTML of a results page.
type Loader interface {
	Load(ctx context.Context, req PageRequest) (string, error)
}

// BrowserLoader renders pages in a shared headless Chrome instance.
type BrowserLoader struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	settle     time.Duration
	logger     *utils.Logger
}

// NewBrowserLoader starts headless Chrome. chromeBin may be empty, in which
// case common install locations are searched.
func NewBrowserLoader(chromeBin string, settle time.Duration, logger *utils.Logger) (*BrowserLoader, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	// start the browser now so every Load opens a tab in the same instance
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	return &BrowserLoader{
		browserCtx: browserCtx,
		cancel:     cancel,
		settle:     settle,
		logger:     logger,
	}, nil
}

// Load opens req.URL in a new tab, waits up to the settle window for any
// ready selector and returns the page HTML. Missing ready selectors are not
// an error; the caller sees whatever rendered.
func (b *BrowserLoader) Load(ctx context.Context, req PageRequest) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}

	if err := chromedp.Run(tabCtx, chromedp.Navigate(req.URL)); err != nil {
		return "", fmt.Errorf("browser: navigate %s: %w", req.URL, err)
	}

	if len(req.ReadySelectors) > 0 {
		err := chromedp.Run(tabCtx, chromedp.Poll(readyExpression(req.ReadySelectors), nil,
			chromedp.WithPollingTimeout(b.settle)))
		if err != nil {
			if tabCtx.Err() != nil {
				return "", fmt.Errorf("browser: wait for results: %w", tabCtx.Err())
			}
			b.logger.Debug("[browser] %s: no ready selector after %v", req.Marketplace, b.settle)
		}
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("browser: read page: %w", err)
	}
	return html, nil
}

// Close shuts the browser down.
func (b *BrowserLoader) Close() {
	b.cancel()
}

func readyExpression(selectors []string) string {
	checks := make([]string, 0, len(selectors))
	for _, sel := range selectors {
		checks = append(checks, fmt.Sprintf("!!document.querySelector(%q)", sel))
	}
	return strings.Join(checks, " || ")
}

// FixtureLoader serves saved pages from disk instead of the network. It is
// selected explicitly through configuration, never as a failure fallback.
type FixtureLoader struct {
	dir string
}

// NewFixtureLoader reads "<marketplace>.html" files from dir.
func NewFixtureLoader(dir string) *FixtureLoader {
	return &FixtureLoader{dir: dir}
}

// ErrNoFixture is returned when no saved page exists for a marketplace.
var ErrNoFixture = errors.New("fixture: no saved page")

func (f *FixtureLoader) Load(ctx context.Context, req PageRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(f.dir, strings.ToLower(req.Marketplace)+".html")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNoFixture, path)
	}
	if err != nil {
		return "", fmt.Errorf("fixture: read %s: %w", path, err)
	}
	return string(data), nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

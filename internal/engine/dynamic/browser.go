// internal/engine/dynamic/browser.go
package dynamic

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// BrowserOptions configures the headless browser
type BrowserOptions struct {
	ChromePath string
	Headless   bool
	UserAgent  string
	Proxy      string
	ExtraArgs  []chromedp.ExecAllocatorOption
}

// Browser owns one Chrome process that is started on first use and reused
// for every render of the run. Each render opens its own tab.
type Browser struct {
	opts BrowserOptions

	mu            sync.Mutex
	started       bool
	closed        bool
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewBrowser prepares a browser without launching it
func NewBrowser(opts BrowserOptions) *Browser {
	return &Browser{opts: opts}
}

// tabContext returns a fresh tab context on the shared browser, starting
// Chrome if this is the first call.
func (b *Browser) tabContext() (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, fmt.Errorf("browser already closed")
	}

	if !b.started {
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(b.opts)...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// Launches the process and checks it answers.
		if err := chromedp.Run(browserCtx, chromedp.Navigate("about:blank")); err != nil {
			browserCancel()
			allocCancel()
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}

		b.allocCancel = allocCancel
		b.browserCtx = browserCtx
		b.browserCancel = browserCancel
		b.started = true
		log.Debug().Str("chrome", b.opts.ChromePath).Bool("headless", b.opts.Headless).Msg("Browser started")
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	return tabCtx, tabCancel, nil
}

// Close shuts down the browser process if it was started
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if b.started {
		b.browserCancel()
		b.allocCancel()
		log.Debug().Msg("Browser closed")
	}
	return nil
}

func allocatorOptions(opts BrowserOptions) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("disk-cache-size", "0"),
		chromedp.UserAgent(opts.UserAgent),
	}

	if opts.ChromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(opts.ChromePath)}, allocOpts...)
	}

	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	return append(allocOpts, opts.ExtraArgs...)
}

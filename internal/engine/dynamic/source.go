// internal/engine/dynamic/source.go
package dynamic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/papers/internal/engine"
	"github.com/law-makers/papers/pkg/models"
	"github.com/rs/zerolog/log"
)

// Source renders pages in headless Chrome so that script-built listings
// expose their markup.
type Source struct {
	browser    *Browser
	timeout    time.Duration
	renderWait time.Duration
}

// New creates a rendering source backed by browser
func New(browser *Browser, timeout, renderWait time.Duration) *Source {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Source{
		browser:    browser,
		timeout:    timeout + renderWait,
		renderWait: renderWait,
	}
}

// Name returns the name of this source
func (s *Source) Name() string {
	return "RenderedBrowser"
}

// Fetch navigates to url, waits for scripts to settle and returns the DOM
func (s *Source) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	start := time.Now()

	log.Debug().
		Str("url", url).
		Str("source", s.Name()).
		Msg("Starting render")

	tabCtx, tabCancel, err := s.browser.tabContext()
	if err != nil {
		return nil, err
	}
	defer tabCancel()

	tabCtx, cancel := context.WithTimeout(tabCtx, s.timeout)
	defer cancel()

	// Tie the tab to the caller so Ctrl-C stops a render in progress.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		mu          sync.Mutex
		statusCode  int64
		contentType string
	)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if statusCode == 0 {
			statusCode = resp.Response.Status
			contentType = resp.Response.MimeType
		}
	})

	var html, finalURL string
	err = chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(s.renderWait),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}

	mu.Lock()
	code := int(statusCode)
	mime := contentType
	mu.Unlock()

	status := models.FetchSuccess
	if code != 0 {
		status = engine.ClassifyStatus(code)
	}

	log.Debug().
		Str("url", url).
		Int("status", code).
		Int("bytes", len(html)).
		Int64("response_time_ms", time.Since(start).Milliseconds()).
		Msg("Render completed")

	return &models.FetchResult{
		Status:      status,
		Content:     []byte(html),
		FinalURL:    finalURL,
		StatusCode:  code,
		ContentType: mime,
		Source:      s.Name(),
	}, nil
}

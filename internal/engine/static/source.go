// internal/engine/static/source.go
package static

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/law-makers/papers/internal/engine"
	"github.com/law-makers/papers/internal/utils/headers"
	"github.com/law-makers/papers/pkg/models"
	"github.com/rs/zerolog/log"
)

// Source retrieves pages with a plain HTTP GET. It is the fast path and the
// only one used for robots.txt, landing pages and PDFs.
type Source struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	maxBytes  int64
}

// New creates a direct HTTP source with dependency injection
func New(client *http.Client, ua string, extra map[string]string, maxBytes int64) *Source {
	if client == nil {
		client = http.DefaultClient
	}
	return &Source{
		client:    client,
		userAgent: ua,
		headers:   extra,
		maxBytes:  maxBytes,
	}
}

// Name returns the name of this source
func (s *Source) Name() string {
	return "DirectHTTP"
}

// Fetch performs one GET and classifies the response. The body is read even
// for error statuses so callers can log what the server said.
func (s *Source) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	start := time.Now()

	log.Debug().
		Str("url", url).
		Str("source", s.Name()).
		Msg("Starting fetch")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	headers.Apply(req, s.headers)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	var body io.Reader = resp.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(resp.Body, s.maxBytes)
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	result := &models.FetchResult{
		Status:      engine.ClassifyStatus(resp.StatusCode),
		Content:     content,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Source:      s.Name(),
	}

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(content)).
		Int64("response_time_ms", time.Since(start).Milliseconds()).
		Msg("Fetch completed")

	return result, nil
}

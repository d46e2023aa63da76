package engine

import (
	"context"

	"github.com/law-makers/papers/internal/engine/hybrid"
	"github.com/law-makers/papers/internal/ratelimit"
	"github.com/law-makers/papers/pkg/models"
	"github.com/rs/zerolog/log"
)

// RobotsChecker answers whether a URL may be fetched
type RobotsChecker interface {
	IsAllowed(pathOrURL string) bool
}

// PageFetcher retrieves pages politely. The direct source is always used
// first; the rendered source, when present, replaces a direct result that
// failed or that lacks listing markers while running scripts.
type PageFetcher struct {
	direct   ContentSource
	rendered ContentSource
	robots   RobotsChecker
	limiter  ratelimit.RateLimiter
}

// NewPageFetcher wires a fetcher. rendered may be nil when no browser is available.
func NewPageFetcher(direct, rendered ContentSource, robots RobotsChecker, limiter ratelimit.RateLimiter) *PageFetcher {
	return &PageFetcher{
		direct:   direct,
		rendered: rendered,
		robots:   robots,
		limiter:  limiter,
	}
}

// SetRobots replaces the robots policy, e.g. once it has been loaded for the run
func (f *PageFetcher) SetRobots(robots RobotsChecker) {
	f.robots = robots
}

// CanRender reports whether a browser source is configured
func (f *PageFetcher) CanRender() bool {
	return f.rendered != nil
}

// Fetch retrieves url. It never returns nil; failures are described by the
// result's Status and Err.
func (f *PageFetcher) Fetch(ctx context.Context, url string) *models.FetchResult {
	if f.robots != nil && !f.robots.IsAllowed(url) {
		log.Info().Str("url", url).Msg("Blocked by robots.txt")
		return &models.FetchResult{
			Status:   models.FetchBlocked,
			FinalURL: url,
			Err:      NewError(ErrCodeRobotsBlocked, url, nil),
		}
	}

	result := f.fetchFrom(ctx, f.direct, url)
	if f.rendered == nil || ctx.Err() != nil {
		return result
	}

	if !result.OK() {
		log.Info().
			Err(result.Err).
			Str("url", url).
			Str("status", string(result.Status)).
			Msg("Direct fetch failed, retrying in browser")
		return f.renderOr(ctx, url, result)
	}

	strategy, signals := hybrid.DetermineStrategy(result.Content)
	if strategy != hybrid.StrategyRendered {
		return result
	}

	log.Info().
		Str("url", url).
		Int("scripts", signals.Scripts).
		Int("text_length", signals.TextLength).
		Str("framework", signals.Framework).
		Msg("No listing markers in direct content, retrying in browser")
	return f.renderOr(ctx, url, result)
}

// renderOr fetches url through the browser and falls back to direct when
// rendering does not succeed
func (f *PageFetcher) renderOr(ctx context.Context, url string, direct *models.FetchResult) *models.FetchResult {
	rendered := f.fetchFrom(ctx, f.rendered, url)
	if !rendered.OK() {
		log.Warn().Err(rendered.Err).Str("url", url).Msg("Browser rendering failed, keeping direct result")
		return direct
	}
	return rendered
}

func (f *PageFetcher) fetchFrom(ctx context.Context, src ContentSource, url string) *models.FetchResult {
	if err := f.limiter.Wait(ctx, url); err != nil {
		return &models.FetchResult{
			Status:   models.FetchNetworkError,
			FinalURL: url,
			Source:   src.Name(),
			Err:      NewError(ErrCodeNetworkError, "delay wait interrupted", err),
		}
	}

	result, err := src.Fetch(ctx, url)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Str("source", src.Name()).Msg("Fetch failed")
		return &models.FetchResult{
			Status:   models.FetchNetworkError,
			FinalURL: url,
			Source:   src.Name(),
			Err:      NewError(ErrCodeNetworkError, url, err),
		}
	}

	switch result.Status {
	case models.FetchNotFound:
		result.Err = NewError(ErrCodeNotFound, url, nil).WithDetail("status", result.StatusCode)
	case models.FetchBlocked:
		result.Err = NewError(ErrCodeNetworkError, "server refused access to "+url, nil).WithDetail("status", result.StatusCode)
	case models.FetchNetworkError:
		if result.Err == nil {
			result.Err = NewError(ErrCodeNetworkError, url, nil).WithDetail("status", result.StatusCode)
		}
	}
	return result
}

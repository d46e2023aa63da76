// Package robots loads a site's robots.txt once per run and answers
// fetchability and crawl-delay questions for a single user agent.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"

	urlutil "github.com/law-makers/papers/internal/utils/url"
)

// robotsTxtPath is the well-known path for robots.txt files.
const robotsTxtPath = "/robots.txt"

// maxRobotsBodyBytes limits the size of robots.txt responses we will read.
const maxRobotsBodyBytes = 512 * 1024 // 512 KB

// Rules is the read-only view of the loaded policy. Disallowed prefixes stay
// inside the parsed group and are queried through Policy.IsAllowed.
type Rules struct {
	AllowAll   bool
	Agent      string
	CrawlDelay time.Duration
	Source     string
}

// Policy answers robots.txt questions for one site and one user agent
type Policy struct {
	group *robotstxt.Group
	rules Rules
}

// AllowAll returns a policy that permits every path and declares no crawl-delay
func AllowAll(userAgent string) *Policy {
	return &Policy{rules: Rules{AllowAll: true, Agent: userAgent}}
}

// Load fetches and parses robots.txt for the site hosting baseURL.
// It fails soft: an unreachable, non-2xx, or unparsable robots.txt yields an
// allow-all policy. Only an unusable baseURL is reported as an error.
func Load(ctx context.Context, client *http.Client, baseURL, userAgent string) (*Policy, error) {
	root, err := urlutil.SiteRoot(baseURL)
	if err != nil {
		return nil, fmt.Errorf("robots: %w", err)
	}
	robotsURL := root + robotsTxtPath

	body, statusCode, err := fetch(ctx, client, robotsURL, userAgent)
	if err != nil {
		log.Debug().Err(err).Str("url", robotsURL).Msg("Could not fetch robots.txt, allowing all")
		return AllowAll(userAgent), nil
	}
	if statusCode < 200 || statusCode >= 300 {
		log.Debug().Int("status", statusCode).Str("url", robotsURL).Msg("robots.txt unavailable, allowing all")
		return AllowAll(userAgent), nil
	}

	return Parse(body, userAgent, robotsURL), nil
}

// Parse builds a policy from a robots.txt body. Malformed input allows all.
func Parse(body []byte, userAgent, source string) *Policy {
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		log.Debug().Err(err).Str("url", source).Msg("Malformed robots.txt, allowing all")
		return AllowAll(userAgent)
	}

	group := data.FindGroup(userAgent)
	p := &Policy{
		group: group,
		rules: Rules{
			Agent:      userAgent,
			CrawlDelay: group.CrawlDelay,
			Source:     source,
		},
	}

	if group.CrawlDelay > 0 {
		log.Info().Dur("crawl_delay", group.CrawlDelay).Msg("Respecting robots.txt crawl-delay")
	}
	return p
}

// IsAllowed reports whether the path (or absolute URL) may be fetched
func (p *Policy) IsAllowed(pathOrURL string) bool {
	if p == nil || p.rules.AllowAll || p.group == nil {
		return true
	}
	return p.group.Test(urlutil.RequestPath(pathOrURL))
}

// CrawlDelay returns the declared crawl-delay, or 0 when none applies
func (p *Policy) CrawlDelay() time.Duration {
	if p == nil {
		return 0
	}
	return p.rules.CrawlDelay
}

// EffectiveDelay is the configured delay raised to the site's crawl-delay.
// It is never less polite than configured.
func (p *Policy) EffectiveDelay(configured time.Duration) time.Duration {
	if d := p.CrawlDelay(); d > configured {
		return d
	}
	return configured
}

// Rules returns a copy of the loaded rules
func (p *Policy) Rules() Rules {
	if p == nil {
		return Rules{AllowAll: true}
	}
	return p.rules
}

func fetch(ctx context.Context, client *http.Client, robotsURL, userAgent string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("robots: create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("robots: fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("robots: read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

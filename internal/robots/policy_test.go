package robots_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/papers/internal/robots"
)

const testAgent = "Conference-Scraper/1.0 (Educational/Research Purpose)"

func robotsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			t.Errorf("unexpected request path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLoad_DisallowedPrefix(t *testing.T) {
	t.Parallel()

	server := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /pdf/*\n")

	policy, err := robots.Load(context.Background(), server.Client(), server.URL+"/conference-2024", testAgent)
	require.NoError(t, err)

	assert.False(t, policy.IsAllowed("/pdf/101.pdf"))
	assert.False(t, policy.IsAllowed(server.URL+"/pdf/102.pdf"))
	assert.True(t, policy.IsAllowed("/conf_papers/101.pdf"))
	assert.False(t, policy.Rules().AllowAll)
}

func TestLoad_AgentSpecificGroup(t *testing.T) {
	t.Parallel()

	body := "User-agent: *\nDisallow: /\n\nUser-agent: Conference-Scraper\nDisallow: /private/\nCrawl-delay: 3\n"
	server := robotsServer(t, http.StatusOK, body)

	policy, err := robots.Load(context.Background(), server.Client(), server.URL, testAgent)
	require.NoError(t, err)

	assert.True(t, policy.IsAllowed("/papers/1"))
	assert.False(t, policy.IsAllowed("/private/x"))
	assert.Equal(t, 3*time.Second, policy.CrawlDelay())
}

func TestLoad_FailSoft(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"forbidden", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := robotsServer(t, tt.status, "User-agent: *\nDisallow: /\n")

			policy, err := robots.Load(context.Background(), server.Client(), server.URL, testAgent)
			require.NoError(t, err)
			assert.True(t, policy.Rules().AllowAll)
			assert.True(t, policy.IsAllowed("/anything"))
			assert.Zero(t, policy.CrawlDelay())
		})
	}
}

func TestLoad_Unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	policy, err := robots.Load(context.Background(), &http.Client{Timeout: time.Second}, url, testAgent)
	require.NoError(t, err)
	assert.True(t, policy.IsAllowed("/pdf/1.pdf"))
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	_, err := robots.Load(context.Background(), http.DefaultClient, "conference-2024", testAgent)
	assert.Error(t, err)
}

func TestEffectiveDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		configured time.Duration
		want       time.Duration
	}{
		{"crawl-delay wins", "User-agent: *\nCrawl-delay: 5\n", 2 * time.Second, 5 * time.Second},
		{"configured wins", "User-agent: *\nCrawl-delay: 1\n", 2 * time.Second, 2 * time.Second},
		{"no crawl-delay", "User-agent: *\nDisallow: /x\n", 2 * time.Second, 2 * time.Second},
		{"zero configured", "User-agent: *\nCrawl-delay: 0.5\n", 0, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := robots.Parse([]byte(tt.body), testAgent, "test")
			assert.Equal(t, tt.want, policy.EffectiveDelay(tt.configured))
		})
	}
}

func TestAllowAll(t *testing.T) {
	t.Parallel()

	policy := robots.AllowAll(testAgent)
	assert.True(t, policy.IsAllowed("/pdf/1.pdf"))
	assert.Equal(t, 2*time.Second, policy.EffectiveDelay(2*time.Second))
}

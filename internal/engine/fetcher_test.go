package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/papers/internal/ratelimit"
	"github.com/law-makers/papers/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name    string
	content string
	status  models.FetchStatus
	err     error
	calls   []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, url string) (*models.FetchResult, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == "" {
		status = models.FetchSuccess
	}
	return &models.FetchResult{Status: status, Content: []byte(f.content), FinalURL: url, StatusCode: 200, Source: f.name}, nil
}

type denyPrefix string

func (d denyPrefix) IsAllowed(u string) bool { return !strings.Contains(u, string(d)) }

const shell = `<html><body><div id="root"></div><script src="/bundle.js"></script></body></html>`

func TestPageFetcher_DirectListing(t *testing.T) {
	direct := &fakeSource{name: "direct", content: `<a href="/papers/1">One</a>`}
	rendered := &fakeSource{name: "browser", content: "unused"}
	f := NewPageFetcher(direct, rendered, nil, ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/list")

	require.True(t, res.OK())
	assert.Equal(t, "direct", res.Source)
	assert.Empty(t, rendered.calls)
}

func TestPageFetcher_RendersScriptShell(t *testing.T) {
	direct := &fakeSource{name: "direct", content: shell}
	rendered := &fakeSource{name: "browser", content: `<a href="/papers/1">One</a>`}
	f := NewPageFetcher(direct, rendered, nil, ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/list")

	require.True(t, res.OK())
	assert.Equal(t, "browser", res.Source)
	assert.Len(t, rendered.calls, 1)
}

func TestPageFetcher_BrowserFailureKeepsDirect(t *testing.T) {
	direct := &fakeSource{name: "direct", content: shell}
	rendered := &fakeSource{name: "browser", err: errors.New("chrome crashed")}
	f := NewPageFetcher(direct, rendered, nil, ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/list")

	require.True(t, res.OK())
	assert.Equal(t, "direct", res.Source)
	assert.Equal(t, shell, string(res.Content))
}

func TestPageFetcher_RendersTextHeavyPageWithExternalScript(t *testing.T) {
	page := `<html><body><nav>` + strings.Repeat("Home Program Venue Registration Sponsors ", 8) +
		`</nav><div id="program">Loading program...</div><script src="/js/program.js"></script></body></html>`
	direct := &fakeSource{name: "direct", content: page}
	rendered := &fakeSource{name: "browser", content: `<a href="/papers/1">One</a>`}
	f := NewPageFetcher(direct, rendered, nil, ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/list")

	require.True(t, res.OK())
	assert.Equal(t, "browser", res.Source)
}

func TestPageFetcher_RendersAfterDirectFailure(t *testing.T) {
	direct := &fakeSource{name: "direct", status: models.FetchBlocked}
	rendered := &fakeSource{name: "browser", content: `<a href="/papers/1">One</a>`}
	f := NewPageFetcher(direct, rendered, nil, ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/list")

	require.True(t, res.OK())
	assert.Equal(t, "browser", res.Source)
	assert.Len(t, direct.calls, 1)
	assert.Len(t, rendered.calls, 1)
}

func TestPageFetcher_DirectFailureKeptWhenBrowserFails(t *testing.T) {
	direct := &fakeSource{name: "direct", err: errors.New("connection reset")}
	rendered := &fakeSource{name: "browser", err: errors.New("chrome crashed")}
	f := NewPageFetcher(direct, rendered, nil, ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/list")

	assert.Equal(t, models.FetchNetworkError, res.Status)
	assert.Equal(t, "direct", res.Source)
	assert.ErrorContains(t, res.Err, "connection reset")
}

func TestPageFetcher_RobotsBlockedNeverRenders(t *testing.T) {
	direct := &fakeSource{name: "direct"}
	rendered := &fakeSource{name: "browser"}
	f := NewPageFetcher(direct, rendered, denyPrefix("/private/"), ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/private/list")

	assert.ErrorIs(t, res.Err, ErrRobotsBlocked)
	assert.Empty(t, rendered.calls)
}

func TestPageFetcher_NoBrowserKeepsDirect(t *testing.T) {
	direct := &fakeSource{name: "direct", content: shell}
	f := NewPageFetcher(direct, nil, nil, ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/list")

	require.True(t, res.OK())
	assert.False(t, f.CanRender())
	assert.Equal(t, "direct", res.Source)
}

func TestPageFetcher_RobotsBlocked(t *testing.T) {
	direct := &fakeSource{name: "direct"}
	f := NewPageFetcher(direct, nil, denyPrefix("/private/"), ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/private/list")

	assert.Equal(t, models.FetchBlocked, res.Status)
	assert.ErrorIs(t, res.Err, ErrRobotsBlocked)
	assert.Empty(t, direct.calls, "no request may be made for a disallowed path")
}

func TestPageFetcher_TransportError(t *testing.T) {
	direct := &fakeSource{name: "direct", err: errors.New("dial tcp: connection refused")}
	f := NewPageFetcher(direct, nil, nil, ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/list")

	assert.Equal(t, models.FetchNetworkError, res.Status)
	assert.ErrorIs(t, res.Err, ErrNetworkError)
}

func TestPageFetcher_NotFound(t *testing.T) {
	direct := &fakeSource{name: "direct", status: models.FetchNotFound}
	f := NewPageFetcher(direct, nil, nil, ratelimit.NewDelayLimiter(0))

	res := f.Fetch(context.Background(), "https://conf.example.org/list")

	assert.Equal(t, models.FetchNotFound, res.Status)
	assert.ErrorIs(t, res.Err, ErrNotFound)
}

func TestPageFetcher_WaitsBetweenRequests(t *testing.T) {
	const delay = 50 * time.Millisecond
	direct := &fakeSource{name: "direct", content: `<a href="/papers/1">One</a>`}
	f := NewPageFetcher(direct, nil, nil, ratelimit.NewDelayLimiter(delay))

	start := time.Now()
	f.Fetch(context.Background(), "https://conf.example.org/a")
	f.Fetch(context.Background(), "https://conf.example.org/b")

	assert.GreaterOrEqual(t, time.Since(start), delay-5*time.Millisecond)
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, models.FetchSuccess, ClassifyStatus(204))
	assert.Equal(t, models.FetchNotFound, ClassifyStatus(410))
	assert.Equal(t, models.FetchBlocked, ClassifyStatus(451))
	assert.Equal(t, models.FetchNetworkError, ClassifyStatus(502))
}

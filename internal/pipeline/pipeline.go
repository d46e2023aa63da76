// Package pipeline drives one run: robots, listing, extraction, downloads, summary.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/law-makers/papers/internal/downloader"
	"github.com/law-makers/papers/internal/engine"
	"github.com/law-makers/papers/internal/engine/metadata"
	"github.com/law-makers/papers/internal/extractor"
	"github.com/law-makers/papers/internal/ratelimit"
	"github.com/law-makers/papers/internal/robots"
	"github.com/law-makers/papers/internal/runctx"
	"github.com/law-makers/papers/internal/summary"
	"github.com/law-makers/papers/internal/utils/output"
	"github.com/law-makers/papers/pkg/models"
	"github.com/rs/zerolog/log"
)

// Options are the run settings the pipeline needs
type Options struct {
	ConferenceURL string
	LogDir        string
	SummaryFile   string
	Delay         time.Duration
	UserAgent     string
}

// Run is the state of one invocation. It is created by the pipeline and
// handed to every stage instead of living in package state.
type Run struct {
	ID        string
	StartedAt time.Time
	State     State
	Summary   *summary.Summary
	Limiter   *ratelimit.DelayLimiter
	Robots    *robots.Policy
	Listing   *models.FetchResult
	Page      metadata.Page
	Records   []models.PaperRecord
}

func (r *Run) advance(s State) {
	log.Debug().Str("run_id", r.ID).Str("from", r.State.String()).Str("to", s.String()).Msg("Run state changed")
	r.State = s
}

// Pipeline wires the components of a run
type Pipeline struct {
	opts    Options
	client  *http.Client
	fetcher *engine.PageFetcher
	manager *downloader.Manager
	limiter *ratelimit.DelayLimiter
}

// New creates a pipeline. fetcher and manager must share limiter.
func New(opts Options, client *http.Client, fetcher *engine.PageFetcher, manager *downloader.Manager, limiter *ratelimit.DelayLimiter) *Pipeline {
	if opts.SummaryFile == "" {
		opts.SummaryFile = "summary.csv"
	}
	return &Pipeline{
		opts:    opts,
		client:  client,
		fetcher: fetcher,
		manager: manager,
		limiter: limiter,
	}
}

// Run executes the whole pipeline. Per-paper failures are recorded in the
// summary; only a startup failure returns an error, and then no paper is
// attempted.
func (p *Pipeline) Run(ctx context.Context) (*Run, error) {
	run := p.newRun(ctx)

	if err := p.extract(ctx, run); err != nil {
		return run, err
	}

	run.advance(StateDownloading)
	p.manager.Run(ctx, run.Records, run.Summary)

	p.writeSummary(run)
	run.advance(StateSummarized)

	counts := run.Summary.Counts()
	log.Info().
		Str("run_id", run.ID).
		Int("downloaded", counts.Downloaded).
		Int("skipped", counts.Skipped).
		Int("failed", counts.Failed).
		Dur("elapsed", time.Since(run.StartedAt)).
		Msg("Run complete")

	run.advance(StateDone)
	return run, nil
}

// List loads robots.txt and extracts the listing without downloading anything
func (p *Pipeline) List(ctx context.Context) (*Run, error) {
	run := p.newRun(ctx)
	if err := p.extract(ctx, run); err != nil {
		return run, err
	}
	run.advance(StateDone)
	return run, nil
}

func (p *Pipeline) newRun(ctx context.Context) *Run {
	rc := runctx.FromContext(ctx)
	id, started := rc.RunID, rc.StartTime
	if id == "unknown" {
		started = time.Now()
		id = runctx.NewRunID(started)
	}
	return &Run{
		ID:        id,
		StartedAt: started,
		State:     StateInit,
		Summary:   summary.New(),
		Limiter:   p.limiter,
	}
}

// extract runs Init -> RobotsLoaded -> Extracting
func (p *Pipeline) extract(ctx context.Context, run *Run) error {
	policy, err := robots.Load(ctx, p.client, p.opts.ConferenceURL, p.opts.UserAgent)
	if err != nil {
		return runctx.NewRunError(ctx, engine.NewError(engine.ErrCodeStartupError, "cannot resolve robots.txt", err))
	}
	run.Robots = policy
	p.fetcher.SetRobots(policy)
	p.manager.SetRobots(policy)

	delay := policy.EffectiveDelay(p.opts.Delay)
	run.Limiter.SetDelay(delay)

	rules := policy.Rules()
	log.Info().
		Str("robots", rules.Source).
		Bool("allow_all", rules.AllowAll).
		Dur("crawl_delay", rules.CrawlDelay).
		Dur("effective_delay", delay).
		Msg("Robots policy loaded")
	run.advance(StateRobotsLoaded)

	listing := p.fetcher.Fetch(ctx, p.opts.ConferenceURL)
	run.Listing = listing
	if !listing.OK() {
		return runctx.NewRunError(ctx, engine.NewError(engine.ErrCodeStartupError, "listing page unavailable", listing.Err).
			WithDetail("status", string(listing.Status)).
			WithDetail("url", p.opts.ConferenceURL))
	}
	run.Page = metadata.Extract(listing.Content)
	log.Info().
		Str("url", listing.FinalURL).
		Str("source", listing.Source).
		Str("title", run.Page.Title).
		Int("bytes", len(listing.Content)).
		Int("pdf_links", run.Page.PDFLinks).
		Msg("Listing page fetched")

	p.snapshot(run)

	run.advance(StateExtracting)
	base := listing.FinalURL
	if base == "" {
		base = p.opts.ConferenceURL
	}
	ext, err := extractor.New(base)
	if err != nil {
		return runctx.NewRunError(ctx, engine.NewError(engine.ErrCodeStartupError, "invalid listing URL", err))
	}
	run.Records = slices.Collect(ext.Extract(listing.Content))

	if len(run.Records) == 0 {
		log.Warn().Str("url", base).Msg("No papers found on listing page")
	} else {
		log.Info().Int("papers", len(run.Records)).Msg("Papers extracted")
	}
	return nil
}

// snapshot keeps a Markdown copy of the listing next to the run log
func (p *Pipeline) snapshot(run *Run) {
	if err := os.MkdirAll(p.opts.LogDir, 0755); err != nil {
		log.Warn().Err(err).Msg("Failed to create log directory")
		return
	}
	path := filepath.Join(p.opts.LogDir, run.ID+".listing.md")
	if err := output.SaveMarkdown(string(run.Listing.Content), run.Listing.FinalURL, path); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("Failed to write listing snapshot")
		return
	}
	log.Debug().Str("file", path).Msg("Listing snapshot written")
}

func (p *Pipeline) writeSummary(run *Run) {
	if err := os.MkdirAll(p.opts.LogDir, 0755); err != nil {
		log.Error().Err(err).Msg("Failed to create log directory")
		return
	}

	csvPath := filepath.Join(p.opts.LogDir, p.opts.SummaryFile)
	if err := run.Summary.Write(csvPath); err != nil {
		log.Error().Err(err).Str("file", csvPath).Msg("Failed to write summary")
	} else {
		log.Info().Str("file", csvPath).Msg("Summary written")
	}

	reportPath := filepath.Join(p.opts.LogDir, fmt.Sprintf("%s.json", run.ID))
	report := summary.Report{
		RunID:         run.ID,
		ConferenceURL: p.opts.ConferenceURL,
		StartedAt:     run.StartedAt,
		Listing:       run.Page,
		Papers:        run.Records,
	}
	if err := run.Summary.WriteReport(reportPath, report); err != nil {
		log.Error().Err(err).Str("file", reportPath).Msg("Failed to write report")
	}
}

// internal/downloader/downloader.go
package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/law-makers/papers/internal/engine"
	"github.com/law-makers/papers/internal/extractor"
	"github.com/law-makers/papers/internal/ratelimit"
	"github.com/law-makers/papers/internal/summary"
	"github.com/law-makers/papers/internal/utils/headers"
	"github.com/law-makers/papers/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// Outcome reasons shared with the summary
const (
	ReasonRobotsDisallowed  = "robots-disallowed"
	ReasonAlreadyDownloaded = "already-downloaded"
	ReasonNoPDFLink         = "no pdf link on landing page"
)

// sniffLen is how much of the body is inspected before committing to disk
const sniffLen = 3072

// PageSource fetches HTML pages such as paper landing pages
type PageSource interface {
	Fetch(ctx context.Context, url string) *models.FetchResult
}

// RobotsChecker answers whether a URL may be fetched
type RobotsChecker interface {
	IsAllowed(pathOrURL string) bool
}

// Options configures the download behavior
type Options struct {
	Dir       string
	UserAgent string
	Headers   map[string]string
	// Progress receives a progress bar when non-nil
	Progress io.Writer
}

// Manager downloads papers one at a time, in order, never retrying
type Manager struct {
	client  *http.Client
	pages   PageSource
	robots  RobotsChecker
	limiter ratelimit.RateLimiter
	opts    Options
}

// failure is a per-paper error whose message becomes the outcome reason
type failure struct {
	reason string
	err    error
}

func (f *failure) Error() string {
	if f.err != nil {
		return fmt.Sprintf("%s: %v", f.reason, f.err)
	}
	return f.reason
}

func (f *failure) Unwrap() error { return f.err }

func fail(reason string, err error) error {
	return &failure{reason: reason, err: err}
}

// NewManager creates a Manager. robots may be nil to allow everything.
func NewManager(client *http.Client, pages PageSource, robots RobotsChecker, limiter ratelimit.RateLimiter, opts Options) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.Dir == "" {
		opts.Dir = "downloads"
	}
	return &Manager{
		client:  client,
		pages:   pages,
		robots:  robots,
		limiter: limiter,
		opts:    opts,
	}
}

// SetRobots replaces the robots policy once it has been loaded for the run
func (m *Manager) SetRobots(robots RobotsChecker) {
	m.robots = robots
}

// Run processes records in order and returns exactly one outcome per record.
// Each outcome is also appended to sum when it is non-nil.
func (m *Manager) Run(ctx context.Context, records []models.PaperRecord, sum *summary.Summary) []models.DownloadOutcome {
	outcomes := make([]models.DownloadOutcome, 0, len(records))

	if err := os.MkdirAll(m.opts.Dir, 0755); err != nil {
		log.Error().Err(err).Str("dir", m.opts.Dir).Msg("Failed to create download directory")
	}

	var bar *progressbar.ProgressBar
	if m.opts.Progress != nil && len(records) > 0 {
		bar = progressbar.NewOptions(len(records),
			progressbar.OptionSetWriter(m.opts.Progress),
			progressbar.OptionSetDescription("Downloading"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i, rec := range records {
		start := time.Now()
		outcome := m.process(ctx, rec)
		outcomes = append(outcomes, outcome)
		if sum != nil {
			sum.Append(outcome)
		}

		event := log.Info()
		if outcome.Status == models.OutcomeFailed {
			event = log.Warn()
		}
		event.
			Int("n", i+1).
			Int("of", len(records)).
			Str("id", outcome.RecordID).
			Str("status", string(outcome.Status)).
			Str("reason", outcome.Reason).
			Str("file", outcome.FilePath).
			Dur("duration", time.Since(start)).
			Msg("Paper processed")

		if bar != nil {
			bar.Describe(rec.ID)
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	return outcomes
}

// process turns one record into its outcome
func (m *Manager) process(ctx context.Context, rec models.PaperRecord) models.DownloadOutcome {
	outcome := models.DownloadOutcome{RecordID: rec.ID}
	name, err := PaperFilename(rec.ID)
	if err != nil {
		outcome.Status = models.OutcomeFailed
		outcome.Reason = err.Error()
		return outcome
	}
	dest := filepath.Join(m.opts.Dir, name)

	// The robots decision comes first so a disallowed paper is reported as
	// such even when an earlier run saved it.
	known := rec.PDFURL
	if known == "" {
		known = rec.SourceURL
	}
	if known != "" && !m.allowed(known) {
		outcome.Status = models.OutcomeSkipped
		outcome.Reason = ReasonRobotsDisallowed
		return outcome
	}

	if _, err := os.Stat(dest); err == nil {
		outcome.Status = models.OutcomeSkipped
		outcome.Reason = ReasonAlreadyDownloaded
		outcome.FilePath = dest
		return outcome
	}

	pdfURL := rec.PDFURL
	if pdfURL == "" {
		resolved, err := m.resolveLanding(ctx, rec.SourceURL)
		if errors.Is(err, errRobots) {
			outcome.Status = models.OutcomeSkipped
			outcome.Reason = ReasonRobotsDisallowed
			return outcome
		}
		if err != nil {
			outcome.Status = models.OutcomeFailed
			outcome.Reason = err.Error()
			return outcome
		}
		log.Debug().Str("id", rec.ID).Str("landing", rec.SourceURL).Str("pdf", resolved).Msg("Resolved landing page")
		pdfURL = resolved
	}

	if !m.allowed(pdfURL) {
		outcome.Status = models.OutcomeSkipped
		outcome.Reason = ReasonRobotsDisallowed
		return outcome
	}

	if err := m.download(ctx, pdfURL, dest); err != nil {
		outcome.Status = models.OutcomeFailed
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.Status = models.OutcomeDownloaded
	outcome.FilePath = dest
	return outcome
}

var errRobots = errors.New(ReasonRobotsDisallowed)

func (m *Manager) allowed(u string) bool {
	return m.robots == nil || m.robots.IsAllowed(u)
}

// resolveLanding fetches a paper landing page and finds its PDF link
func (m *Manager) resolveLanding(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fail(ReasonNoPDFLink, nil)
	}

	res := m.pages.Fetch(ctx, pageURL)
	switch {
	case errors.Is(res.Err, engine.ErrRobotsBlocked):
		return "", errRobots
	case !res.OK():
		if res.StatusCode != 0 {
			return "", fail(fmt.Sprintf("landing page HTTP %d %s", res.StatusCode, http.StatusText(res.StatusCode)), nil)
		}
		return "", fail("landing page "+string(res.Status), res.Err)
	}

	if isPDFType(res.ContentType) || mimetype.Detect(res.Content).Is("application/pdf") {
		return res.FinalURL, nil
	}

	link, ok := extractor.FindPDFLink(res.Content, res.FinalURL)
	if !ok {
		return "", fail(ReasonNoPDFLink, nil)
	}
	return link, nil
}

// download waits for the delay gate, fetches pdfURL and streams it to dest.
// Nothing is left at dest unless the whole body was written.
func (m *Manager) download(ctx context.Context, pdfURL, dest string) error {
	if err := m.limiter.Wait(ctx, pdfURL); err != nil {
		return fail("delay wait interrupted", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return fail("invalid pdf url", err)
	}
	req.Header.Set("User-Agent", m.opts.UserAgent)
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")
	headers.Apply(req, m.opts.Headers)

	resp, err := m.client.Do(req)
	if err != nil {
		return fail("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)), nil)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fail("failed to read body", err)
	}
	head = head[:n]

	if err := checkPDF(resp.Header.Get("Content-Type"), head); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*.part")
	if err != nil {
		return fail("failed to create file", err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(head), resp.Body))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return fail("failed to write file", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fail("failed to move file into place", err)
	}

	log.Debug().
		Str("url", pdfURL).
		Str("file", dest).
		Int64("bytes", written).
		Msg("Download completed")
	return nil
}

// checkPDF accepts a body when its declared type is PDF or generic and the
// leading bytes sniff as PDF
func checkPDF(contentType string, head []byte) error {
	declared := mediaType(contentType)
	if declared != "" && !isPDFType(declared) && !isGenericType(declared) {
		return fail("non-pdf content-type: "+declared, nil)
	}

	sniffed := mimetype.Detect(head)
	if !sniffed.Is("application/pdf") {
		return fail("non-pdf content-type: "+sniffed.String(), nil)
	}
	return nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

func isPDFType(contentType string) bool {
	mt := mediaType(contentType)
	return mt == "application/pdf" || mt == "application/x-pdf"
}

func isGenericType(mt string) bool {
	switch mt {
	case "application/octet-stream", "binary/octet-stream", "application/download", "application/force-download":
		return true
	}
	return false
}

// PaperFilename returns the file name used for a paper id. The id is used
// verbatim, so it must be one the extractor accepts.
func PaperFilename(id string) (string, error) {
	if !extractor.ValidID(id) {
		return "", fail(fmt.Sprintf("unsafe paper id %q", id), nil)
	}
	return "Paper_" + id + ".pdf", nil
}

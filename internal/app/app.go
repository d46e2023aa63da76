// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/law-makers/papers/internal/config"
	"github.com/law-makers/papers/internal/downloader"
	"github.com/law-makers/papers/internal/engine"
	"github.com/law-makers/papers/internal/engine/dynamic"
	"github.com/law-makers/papers/internal/engine/static"
	"github.com/law-makers/papers/internal/pipeline"
	"github.com/law-makers/papers/internal/ratelimit"
	"github.com/law-makers/papers/internal/runctx"
	"github.com/law-makers/papers/internal/utils/headers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per invocation. Use Close() to release the browser and
// the run log file.
type Application struct {
	Config     *config.Config
	Logger     *zerolog.Logger
	RunID      string
	LogPath    string
	HTTPClient *http.Client
	Limiter    *ratelimit.DelayLimiter
	Browser    *dynamic.Browser
	Fetcher    *engine.PageFetcher
	Downloader *downloader.Manager
	Pipeline   *pipeline.Pipeline
	logFile    *os.File
	startTime  time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging to the console and to logs/<run-id>.log
//   - Creates the HTTP client with timeout and proxy settings
//   - Creates the delay limiter shared by every request of the run
//   - Probes for a headless browser and prepares it if one is installed
//   - Wires the page fetcher, download manager and pipeline
//
// ctx should carry a runctx.RunContext; one is created otherwise.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	rc := runctx.FromContext(ctx)
	runID := rc.RunID
	if runID == "unknown" {
		runID = runctx.NewRunID(rc.StartTime)
	}

	logger, logFile, logPath, err := setupLogging(cfg, runID)
	if err != nil {
		return nil, err
	}

	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		logFile.Close()
		return nil, err
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Str("proxy", cfg.Proxy).
		Msg("HTTP client initialized")

	limiter := ratelimit.NewDelayLimiter(cfg.Delay)

	headerMap := headers.ParseHeaders(cfg.Headers)
	direct := static.New(httpClient, cfg.UserAgent, headerMap, cfg.MaxPageBytes)

	var (
		browser  *dynamic.Browser
		rendered engine.ContentSource
	)
	if cfg.BrowserEnabled {
		capability := dynamic.Probe(cfg.ChromePath)
		if capability.Available {
			browser = dynamic.NewBrowser(dynamic.BrowserOptions{
				ChromePath: capability.Path,
				Headless:   cfg.BrowserHeadless,
				UserAgent:  cfg.UserAgent,
				Proxy:      cfg.Proxy,
			})
			rendered = dynamic.New(browser, cfg.HTTPTimeout, cfg.RenderWait)
			logger.Debug().Str("chrome", capability.Path).Msg("Browser rendering available")
		} else {
			logger.Info().Msg("No Chrome installation found, script-rendered listings will use direct content")
		}
	}

	fetcher := engine.NewPageFetcher(direct, rendered, nil, limiter)

	var progress io.Writer
	if !cfg.JSONLog && cfg.LogLevel != "debug" {
		progress = os.Stderr
	}
	manager := downloader.NewManager(httpClient, fetcher, nil, limiter, downloader.Options{
		Dir:       cfg.DownloadDir,
		UserAgent: cfg.UserAgent,
		Headers:   headerMap,
		Progress:  progress,
	})

	pl := pipeline.New(pipeline.Options{
		ConferenceURL: cfg.ConferenceURL,
		LogDir:        cfg.LogDir,
		SummaryFile:   config.DefaultSummaryFile,
		Delay:         cfg.Delay,
		UserAgent:     cfg.UserAgent,
	}, httpClient, fetcher, manager, limiter)

	a := &Application{
		Config:     cfg,
		Logger:     logger,
		RunID:      runID,
		LogPath:    logPath,
		HTTPClient: httpClient,
		Limiter:    limiter,
		Browser:    browser,
		Fetcher:    fetcher,
		Downloader: manager,
		Pipeline:   pl,
		logFile:    logFile,
		startTime:  time.Now(),
	}

	logger.Info().
		Str("run_id", runID).
		Str("conference_url", cfg.ConferenceURL).
		Dur("delay", cfg.Delay).
		Str("log_file", logPath).
		Msg("Application initialized")
	return a, nil
}

// setupLogging points the global logger at the console and the run log file
func setupLogging(cfg *config.Config, runID string) (*zerolog.Logger, *os.File, string, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var console io.Writer
	if cfg.JSONLog {
		console = os.Stderr
	} else {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, nil, "", fmt.Errorf("create log directory: %w", err)
	}
	logPath := filepath.Join(cfg.LogDir, runID+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open run log: %w", err)
	}
	fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true, TimeFormat: time.RFC3339}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, fileWriter)).With().Timestamp().Logger()
	logger := log.Logger

	logger.Debug().
		Str("level", level.String()).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")
	return &logger, logFile, logPath, nil
}

func newHTTPClient(cfg *config.Config) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: transport,
	}, nil
}

// Close gracefully shuts down the application and all its resources.
//
// The browser is closed first, then idle connections, then the run log.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().Dur("uptime", time.Since(a.startTime)).Msg("Shutting down application")

	if a.Browser != nil {
		if err := a.Browser.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing browser")
		}
	}

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	if a.logFile != nil {
		f := a.logFile
		a.logFile = nil
		return f.Close()
	}
	return nil
}

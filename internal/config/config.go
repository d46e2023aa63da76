package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Run
	ConferenceURL string
	DownloadDir   string
	LogDir        string
	Delay         time.Duration

	// HTTP
	HTTPTimeout  time.Duration
	UserAgent    string
	Proxy        string
	Headers      []string
	MaxPageBytes int64

	// Browser fallback
	BrowserEnabled  bool
	BrowserHeadless bool
	ChromePath      string
	RenderWait      time.Duration
}

// Load builds a Config by combining defaults, an optional .env and config file,
// environment variables, and CLI flags. Caller should pass the executing
// *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("verbose", false)
	v.SetDefault("json", DefaultJSONLog)
	v.SetDefault("download-dir", DefaultDownloadDir)
	v.SetDefault("log-dir", DefaultLogDir)
	v.SetDefault("delay", DefaultDelaySeconds)
	v.SetDefault("timeout", DefaultHTTPTimeout)
	v.SetDefault("user-agent", DefaultUserAgent)
	v.SetDefault("browser", DefaultBrowser)
	v.SetDefault("headless", DefaultHeadless)
	v.SetDefault("render-wait", DefaultRenderWait)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The bare name is accepted for the one value operators usually export by hand.
	if err := v.BindEnv("conference-url", EnvPrefix+"_CONFERENCE_URL", "CONFERENCE_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if cmd != nil {
		for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()} {
			if err := v.BindPFlags(fs); err != nil {
				return nil, fmt.Errorf("bind flags: %w", err)
			}
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         v.GetBool("json"),
		ConferenceURL:   strings.TrimSpace(v.GetString("conference-url")),
		DownloadDir:     v.GetString("download-dir"),
		LogDir:          v.GetString("log-dir"),
		Delay:           secondsToDuration(v.GetFloat64("delay")),
		HTTPTimeout:     v.GetDuration("timeout"),
		UserAgent:       v.GetString("user-agent"),
		Proxy:           v.GetString("proxy"),
		Headers:         v.GetStringSlice("header"),
		MaxPageBytes:    DefaultMaxPageBytes,
		BrowserEnabled:  v.GetBool("browser"),
		BrowserHeadless: v.GetBool("headless"),
		ChromePath:      v.GetString("chrome-path"),
		RenderWait:      v.GetDuration("render-wait"),
	}
	if v.GetBool("verbose") {
		cfg.LogLevel = "debug"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// secondsToDuration converts a fractional second count into a Duration
func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

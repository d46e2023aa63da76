package config

import (
	"fmt"

	urlutil "github.com/law-makers/papers/internal/utils/url"
)

func validate(c *Config) error {
	if c.ConferenceURL == "" {
		return fmt.Errorf("conference url is required (flag --conference-url or env %s_CONFERENCE_URL)", EnvPrefix)
	}
	if err := urlutil.ValidateURL(c.ConferenceURL); err != nil {
		return fmt.Errorf("conference url: %w", err)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must be >= 0")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.DownloadDir == "" || c.LogDir == "" {
		return fmt.Errorf("download and log directories must not be empty")
	}
	if c.RenderWait < 0 {
		return fmt.Errorf("render wait must be >= 0")
	}
	return nil
}

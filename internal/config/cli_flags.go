package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("json", false, "Emit logs as JSON")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (optional)")
	cmd.PersistentFlags().StringP("conference-url", "u", "", "Conference listing page URL (or PAPERS_CONFERENCE_URL)")
	cmd.PersistentFlags().String("download-dir", DefaultDownloadDir, "Directory to save PDFs")
	cmd.PersistentFlags().String("log-dir", DefaultLogDir, "Directory for run logs and the summary")
	cmd.PersistentFlags().Float64("delay", DefaultDelaySeconds, "Minimum seconds between requests")
	cmd.PersistentFlags().String("timeout", DefaultHTTPTimeout.String(), "Per-request timeout")
	cmd.PersistentFlags().String("user-agent", DefaultUserAgent, "User agent string")
	cmd.PersistentFlags().String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	cmd.PersistentFlags().StringArrayP("header", "H", []string{}, "Extra request header (e.g., -H \"From: me@example.org\")")
	cmd.PersistentFlags().Bool("browser", DefaultBrowser, "Fall back to headless Chrome for script-rendered pages")
	cmd.PersistentFlags().Bool("headless", DefaultHeadless, "Run the fallback browser headless")
	cmd.PersistentFlags().String("chrome-path", "", "Chrome/Chromium executable (auto-detected when empty)")
	cmd.PersistentFlags().String("render-wait", DefaultRenderWait.String(), "Time to let scripts run after navigation")
}

// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/papers/internal/app"
	"github.com/law-makers/papers/internal/config"
	"github.com/law-makers/papers/internal/pipeline"
	"github.com/law-makers/papers/internal/runctx"
	"github.com/law-makers/papers/internal/ui"
	"github.com/law-makers/papers/pkg/models"
)

// rootCmd runs the full download pipeline
var rootCmd = &cobra.Command{
	Use:   "papers",
	Short: "Politely download the PDFs listed on a conference page",
	Long: `Papers reads a conference listing page, honours the site's robots.txt and
crawl-delay, and downloads every paper PDF it can find into the download
directory. Each paper's outcome is written to logs/summary.csv.

Script-rendered listings are loaded in headless Chrome when it is installed.`,
	Example: `# Download everything listed on a program page
papers -u https://conf.example.org/2025/program

# Be gentler than the default two seconds between requests
papers -u https://conf.example.org/2025/program --delay 5

# Take the URL from the environment
CONFERENCE_URL=https://conf.example.org/2025/program papers`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

// Execute runs the root command with ctx and exits non-zero on startup or
// configuration errors. Paper failures never change the exit code.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Error("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().BoolP("help", "h", false, "Help for papers")
	rootCmd.Flags().Bool("version", false, "Version for papers")

	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)

	// Initialize the application lazily so -h and --version need no config.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = runctx.WithRunContext(ctx)
		cmd.SetContext(ctx)

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Close(ctx)
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	run, err := a.Pipeline.Run(cmd.Context())
	if err != nil {
		_ = a.Close(context.Background())
		return err
	}

	printSummary(run, a)
	return nil
}

// printSummary prints the final Downloaded/Skipped/Failed counts
func printSummary(run *pipeline.Run, a *app.Application) {
	counts := run.Summary.Counts()
	absDownloads, err := filepath.Abs(a.Config.DownloadDir)
	if err != nil {
		absDownloads = a.Config.DownloadDir
	}

	fmt.Printf("\n%s\n", ui.Bold("Summary:"))
	fmt.Printf("  %s %s\n", ui.ColorBold+"Papers found:"+ui.ColorReset, ui.ColorWhite+fmt.Sprintf("%d", len(run.Records))+ui.ColorReset)
	fmt.Printf("  %s %s\n", ui.ColorBold+"Downloaded:"+ui.ColorReset, ui.Success(fmt.Sprintf("%d", counts.Downloaded)))
	fmt.Printf("  %s %s\n", ui.ColorBold+"Skipped:"+ui.ColorReset, ui.Info(fmt.Sprintf("%d", counts.Skipped)))
	fmt.Printf("  %s %s\n", ui.ColorBold+"Failed:"+ui.ColorReset, ui.Error(fmt.Sprintf("%d", counts.Failed)))
	fmt.Printf("  %s %s\n", ui.ColorBold+"Delay:"+ui.ColorReset, ui.ColorWhite+run.Limiter.Delay().String()+ui.ColorReset)
	fmt.Printf("  %s %s\n", ui.ColorBold+"Output Directory:"+ui.ColorReset, ui.ColorWhite+absDownloads+ui.ColorReset)
	fmt.Printf("  %s %s\n", ui.ColorBold+"Summary File:"+ui.ColorReset, ui.ColorWhite+filepath.Join(a.Config.LogDir, config.DefaultSummaryFile)+ui.ColorReset)
	fmt.Printf("  %s %s\n", ui.ColorBold+"Run Log:"+ui.ColorReset, ui.ColorWhite+a.LogPath+ui.ColorReset)

	if counts.Skipped+counts.Failed > 0 {
		fmt.Printf("\n%s\n", ui.Bold("Not downloaded:"))
		for _, o := range run.Summary.Outcomes() {
			if o.Status == models.OutcomeDownloaded {
				continue
			}
			fmt.Printf("  %-10s %s%s%s  %s\n", ui.Status(o.Status), ui.ColorCyan, o.RecordID, ui.ColorReset, o.Reason)
		}
	}
	fmt.Println()
}

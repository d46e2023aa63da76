package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/papers/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the papers found on the listing page without downloading",
	Long: `List loads robots.txt and the listing page exactly like a full run, then
prints every extracted paper. Nothing is downloaded and no summary is written.`,
	Example: `# Preview what a run would download
papers list -u https://conf.example.org/2025/program`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		run, err := a.Pipeline.List(cmd.Context())
		if err != nil {
			_ = a.Close(context.Background())
			return err
		}

		fmt.Printf("\n%s %s\n", ui.Bold("Found"), ui.ColorWhite+fmt.Sprintf("%d paper(s):", len(run.Records))+ui.ColorReset)
		for i, rec := range run.Records {
			target := rec.PDFURL
			if target == "" {
				target = rec.SourceURL + ui.ColorDim + " (landing page)"
			}
			fmt.Printf("  %s%3d.%s %s%s%s  %s\n", ui.ColorDim, i+1, ui.ColorReset, ui.ColorCyan, rec.ID, ui.ColorReset, rec.Title)
			fmt.Printf("       %s%s%s\n", ui.ColorDim, target, ui.ColorReset)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

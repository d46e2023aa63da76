package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapText(t *testing.T) {
	text := "one two three four five six\n\n- keep this bullet as it is even if it is long"

	got := wrapText(text, 10)

	assert.Equal(t, "one two\nthree four\nfive six\n\n- keep this bullet as it is even if it is long", got)
}

func TestPrintFlagsTo_AlignsDescriptions(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().Float64("delay", 2, "Seconds between requests")
	cmd.Flags().StringP("conference-url", "u", "", "Listing page URL")

	var buf bytes.Buffer
	printFlagsTo(&buf, cmd.Flags().FlagUsages())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, strings.Index(lines[0], "Listing page URL"), strings.Index(lines[1], "Seconds between requests"))
}

func TestHelp_DoesNotInitializeApp(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())

	help := out.String()
	assert.Contains(t, help, "PAPERS")
	assert.Contains(t, help, "--conference-url")
	assert.Contains(t, help, "list")
	assert.Contains(t, help, "$ papers -u https://conf.example.org/2025/program")
	assert.Nil(t, GetAppFromCmd(rootCmd))
}

func TestGetAppFromCmd_Empty(t *testing.T) {
	assert.Nil(t, GetAppFromCmd(nil))
	assert.Nil(t, GetAppFromCmd(&cobra.Command{}))
}

// Package ui holds the terminal styling shared by the CLI output.
package ui

import "github.com/law-makers/papers/pkg/models"

// ANSI color and style constants for CLI output
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorWhite  = "\033[97m"
	ColorRed    = "\033[31m"
)

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}

// Status colors a paper outcome: green for downloaded, dim yellow for
// skipped and red for failed.
func Status(s models.OutcomeStatus) string {
	switch s {
	case models.OutcomeDownloaded:
		return Success(string(s))
	case models.OutcomeSkipped:
		return Info(string(s))
	case models.OutcomeFailed:
		return Error(string(s))
	default:
		return string(s)
	}
}

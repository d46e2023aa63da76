// Package summary accumulates download outcomes and writes the run reports.
package summary

import (
	"time"

	"github.com/law-makers/papers/internal/engine/metadata"
	"github.com/law-makers/papers/internal/utils/output"
	"github.com/law-makers/papers/pkg/models"
)

// Counts tallies outcomes by status
type Counts struct {
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// Row is one line of the CSV summary
type Row struct {
	ID       string `csv:"id"`
	Status   string `csv:"status"`
	Reason   string `csv:"reason"`
	FilePath string `csv:"file_path"`
}

// Report is the JSON document written at the end of a run
type Report struct {
	RunID         string                   `json:"run_id"`
	ConferenceURL string                   `json:"conference_url"`
	StartedAt     time.Time                `json:"started_at"`
	FinishedAt    time.Time                `json:"finished_at"`
	Listing       metadata.Page            `json:"listing"`
	PapersFound   int                      `json:"papers_found"`
	Counts        Counts                   `json:"counts"`
	Papers        []models.PaperRecord     `json:"papers"`
	Outcomes      []models.DownloadOutcome `json:"outcomes"`
}

// Summary keeps outcomes in the order they were produced. It is owned by a
// single run and is not safe for concurrent use.
type Summary struct {
	outcomes []models.DownloadOutcome
}

// New creates an empty summary
func New() *Summary {
	return &Summary{}
}

// Append records one outcome
func (s *Summary) Append(o models.DownloadOutcome) {
	s.outcomes = append(s.outcomes, o)
}

// Outcomes returns a copy of the recorded outcomes
func (s *Summary) Outcomes() []models.DownloadOutcome {
	out := make([]models.DownloadOutcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Counts tallies the recorded outcomes
func (s *Summary) Counts() Counts {
	c := Counts{Total: len(s.outcomes)}
	for _, o := range s.outcomes {
		switch o.Status {
		case models.OutcomeDownloaded:
			c.Downloaded++
		case models.OutcomeSkipped:
			c.Skipped++
		case models.OutcomeFailed:
			c.Failed++
		}
	}
	return c
}

// Write serializes one CSV row per outcome with header id,status,reason,file_path
func (s *Summary) Write(path string) error {
	rows := make([]Row, 0, len(s.outcomes))
	for _, o := range s.outcomes {
		rows = append(rows, Row{
			ID:       o.RecordID,
			Status:   string(o.Status),
			Reason:   o.Reason,
			FilePath: o.FilePath,
		})
	}
	return output.SaveCSV(rows, path)
}

// WriteReport writes report as JSON, filling in counts and outcomes
func (s *Summary) WriteReport(path string, report Report) error {
	report.Counts = s.Counts()
	report.Outcomes = s.Outcomes()
	if report.Papers == nil {
		report.Papers = []models.PaperRecord{}
	}
	report.PapersFound = len(report.Papers)
	if report.FinishedAt.IsZero() {
		report.FinishedAt = time.Now()
	}
	return output.SaveJSON(report, path)
}

package summary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/law-makers/papers/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Summary {
	s := New()
	s.Append(models.DownloadOutcome{RecordID: "101", Status: models.OutcomeDownloaded, FilePath: "downloads/Paper_101.pdf"})
	s.Append(models.DownloadOutcome{RecordID: "102", Status: models.OutcomeSkipped, Reason: "robots-disallowed"})
	s.Append(models.DownloadOutcome{RecordID: "103", Status: models.OutcomeFailed, Reason: "HTTP 404 Not Found"})
	return s
}

func TestSummary_Counts(t *testing.T) {
	assert.Equal(t, Counts{Downloaded: 1, Skipped: 1, Failed: 1, Total: 3}, sample().Counts())
	assert.Equal(t, Counts{}, New().Counts())
}

func TestSummary_OutcomesPreserveOrder(t *testing.T) {
	s := sample()
	got := s.Outcomes()

	require.Len(t, got, 3)
	assert.Equal(t, "101", got[0].RecordID)
	assert.Equal(t, "103", got[2].RecordID)

	got[0].RecordID = "mutated"
	assert.Equal(t, "101", s.Outcomes()[0].RecordID)
}

func TestSummary_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, sample().Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "id,status,reason,file_path\n" +
		"101,Downloaded,,downloads/Paper_101.pdf\n" +
		"102,Skipped,robots-disallowed,\n" +
		"103,Failed,HTTP 404 Not Found,\n"
	assert.Equal(t, want, string(data))
}

func TestSummary_WriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, New().Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,status,reason,file_path\n", string(data))
}

func TestSummary_WriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	papers := []models.PaperRecord{{ID: "101"}, {ID: "102"}, {ID: "103"}}

	require.NoError(t, sample().WriteReport(path, Report{RunID: "r1", ConferenceURL: "https://conf.example.org", Papers: papers}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "r1", report.RunID)
	assert.Equal(t, 3, report.PapersFound)
	assert.Equal(t, 1, report.Counts.Failed)
	assert.Len(t, report.Outcomes, 3)
	assert.False(t, report.FinishedAt.IsZero())
}

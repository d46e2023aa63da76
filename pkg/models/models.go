package models

// PaperRecord is a paper discovered on a conference listing page.
// PDFURL is empty when only a landing page is known.
type PaperRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	SourceURL string `json:"source_url"`
	PDFURL    string `json:"pdf_url,omitempty"`
}

// FetchStatus classifies the outcome of a single page retrieval
type FetchStatus string

const (
	FetchSuccess      FetchStatus = "success"
	FetchBlocked      FetchStatus = "blocked"
	FetchNotFound     FetchStatus = "not_found"
	FetchNetworkError FetchStatus = "network_error"
)

// FetchResult is produced by a content source for one request. It is never persisted.
type FetchResult struct {
	Status      FetchStatus `json:"status"`
	Content     []byte      `json:"-"`
	FinalURL    string      `json:"final_url"`
	StatusCode  int         `json:"status_code,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Source      string      `json:"source,omitempty"`
	Err         error       `json:"-"`
}

// OK reports whether the retrieval produced usable content
func (r *FetchResult) OK() bool {
	return r != nil && r.Status == FetchSuccess
}

// OutcomeStatus is the final state of a paper after the download step
type OutcomeStatus string

const (
	OutcomeDownloaded OutcomeStatus = "Downloaded"
	OutcomeSkipped    OutcomeStatus = "Skipped"
	OutcomeFailed     OutcomeStatus = "Failed"
)

// DownloadOutcome records what happened to exactly one PaperRecord
type DownloadOutcome struct {
	RecordID string        `json:"id"`
	Status   OutcomeStatus `json:"status"`
	Reason   string        `json:"reason,omitempty"`
	FilePath string        `json:"file_path,omitempty"`
}

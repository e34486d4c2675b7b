// Package models defines the data structures shared across the watcher.
package models

// Entry is one circular listed on the source page.
//
// SourceURL is the stable identity key: two entries with the same
// SourceURL are the same circular, regardless of title or date text.
type Entry struct {
	Title       string `json:"title"`
	PublishDate string `json:"publish_date"`
	SourceURL   string `json:"pdf_url"`

	// LocalName is the file name assigned when the PDF is downloaded.
	// Once recorded in the store it is never reassigned.
	LocalName string `json:"name,omitempty"`

	// Summary is present only when extraction and summarization both
	// succeeded for this entry.
	Summary string `json:"-"`
}

// RunStatus describes how a run ended when no hard failure occurred.
type RunStatus string

const (
	RunStatusNewEntries RunStatus = "new_entries"
	RunStatusNoData     RunStatus = "no_data"
	RunStatusNothingNew RunStatus = "nothing_new"
)

// RunResult aggregates the outcome of a single run. It is transient;
// the entry store remains the only durable record.
type RunResult struct {
	Status     RunStatus
	NewEntries []Entry
	Downloaded []string
	Summarized int
}

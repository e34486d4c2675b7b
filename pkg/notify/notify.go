// Package notify renders a run's outward-facing outputs: the JSON
// payload for downstream automation, the plain-text notification
// body, and key=value outputs for the invoking scheduler.
package notify

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"dotwatch/models"
)

// summaryLimit caps how much of a summary the notification renders.
const summaryLimit = 2000

// Payload is the machine-readable record of one run's new entries.
type Payload struct {
	GeneratedAt string `json:"generated_at"`
	Count       int    `json:"count"`
	Items       []Item `json:"items"`
}

type Item struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	PublishDate string `json:"publish_date"`
	PDFURL      string `json:"pdf_url"`
}

// BuildPayload assembles the payload for the given new entries, in
// discovery order. Entries without a downloaded artifact fall back to
// a name derived from the URL tail.
func BuildPayload(entries []models.Entry, now time.Time) Payload {
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		name := e.LocalName
		if name == "" {
			name = fallbackName(e.SourceURL)
		}
		items = append(items, Item{
			Name:        name,
			Title:       e.Title,
			PublishDate: e.PublishDate,
			PDFURL:      e.SourceURL,
		})
	}
	return Payload{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Count:       len(items),
		Items:       items,
	}
}

// WritePayload writes the payload as indented JSON.
func WritePayload(outPath string, p Payload) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create payload directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// EmailBody renders the human-readable notification. Every new entry
// is listed; unavailable fields are marked explicitly rather than the
// entry being dropped. Summaries are indented and cut at 2000
// characters with an ellipsis.
func EmailBody(entries []models.Entry) string {
	var b strings.Builder
	b.WriteString("New DoT circulars detected:\n\n")

	var downloaded []string
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Title)
		fmt.Fprintf(&b, "   Date: %s\n", e.PublishDate)
		fmt.Fprintf(&b, "   PDF:  %s\n", e.SourceURL)
		if e.Summary == "" {
			b.WriteString("   Summary: unavailable\n")
		} else {
			b.WriteString("   Summary:\n")
			for _, line := range strings.Split(truncate(e.Summary, summaryLimit), "\n") {
				fmt.Fprintf(&b, "     %s\n", line)
			}
		}
		if e.LocalName == "" {
			b.WriteString("   File: not downloaded\n")
		} else {
			fmt.Fprintf(&b, "   File: %s\n", e.LocalName)
			downloaded = append(downloaded, e.LocalName)
		}
		b.WriteString("\n")
	}

	b.WriteString("Downloaded this run:\n")
	if len(downloaded) == 0 {
		b.WriteString(" (none)\n")
	}
	for _, name := range downloaded {
		fmt.Fprintf(&b, " - %s\n", name)
	}
	return b.String()
}

// WriteEmailBody writes the notification text to outPath.
func WriteEmailBody(outPath string, entries []models.Entry) error {
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, []byte(EmailBody(entries)), 0o644); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	return nil
}

// GitHubOutput appends a name=value line to the file named by
// GITHUB_OUTPUT. Outside a CI scheduler the variable is unset and the
// call is a no-op.
func GitHubOutput(name, value string) error {
	outPath := os.Getenv("GITHUB_OUTPUT")
	if outPath == "" {
		return nil
	}
	f, err := os.OpenFile(outPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open GITHUB_OUTPUT: %w", err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s=%s\n", name, value); err != nil {
		return fmt.Errorf("failed to write GITHUB_OUTPUT: %w", err)
	}
	return nil
}

// fallbackName extracts the trailing path segment of a URL, query
// stripped, for entries that were never downloaded.
func fallbackName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		if tail := path.Base(u.Path); tail != "." && tail != "/" {
			return tail
		}
	}
	return "document.pdf"
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

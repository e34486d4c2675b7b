package notify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dotwatch/models"
)

var fixedNow = time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)

func TestBuildPayload(t *testing.T) {
	entries := []models.Entry{
		{Title: "A", PublishDate: "01-01-2024", SourceURL: "https://x/a.pdf", LocalName: "a.pdf"},
		{Title: "B", PublishDate: "02-01-2024", SourceURL: "https://x/files/b.pdf?dl=1"},
	}

	p := BuildPayload(entries, fixedNow)
	if p.Count != 2 {
		t.Errorf("Count = %d, want 2", p.Count)
	}
	if p.GeneratedAt != "2024-02-01T10:30:00Z" {
		t.Errorf("GeneratedAt = %q", p.GeneratedAt)
	}
	if p.Items[0].Name != "a.pdf" {
		t.Errorf("Items[0].Name = %q, want downloaded name", p.Items[0].Name)
	}
	if p.Items[1].Name != "b.pdf" {
		t.Errorf("Items[1].Name = %q, want URL-derived fallback", p.Items[1].Name)
	}
}

func TestWritePayloadRoundTrip(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out", "payload.json")
	p := BuildPayload([]models.Entry{{Title: "A", SourceURL: "https://x/a.pdf"}}, fixedNow)
	if err := WritePayload(outPath, p); err != nil {
		t.Fatalf("WritePayload() error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	var got Payload
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if got.Count != 1 || got.Items[0].PDFURL != "https://x/a.pdf" {
		t.Errorf("round-tripped payload = %+v", got)
	}
}

func TestEmailBodyListsEveryEntry(t *testing.T) {
	entries := []models.Entry{
		{Title: "With everything", PublishDate: "01-01-2024", SourceURL: "https://x/a.pdf",
			LocalName: "a.pdf", Summary: "- point one\n- point two"},
		{Title: "Download failed", PublishDate: "02-01-2024", SourceURL: "https://x/b.pdf"},
	}

	body := EmailBody(entries)

	if !strings.Contains(body, "1. With everything") || !strings.Contains(body, "2. Download failed") {
		t.Errorf("body missing numbered entries:\n%s", body)
	}
	if !strings.Contains(body, "     - point one\n") {
		t.Errorf("summary bullets not indented:\n%s", body)
	}
	if !strings.Contains(body, "Summary: unavailable") {
		t.Error("entry without summary not marked unavailable")
	}
	if !strings.Contains(body, "File: not downloaded") {
		t.Error("entry without artifact not marked")
	}
	if !strings.Contains(body, " - a.pdf\n") {
		t.Error("downloaded files trailer missing a.pdf")
	}
	if strings.Contains(body, " - b.pdf") {
		t.Error("trailer lists a file that was never downloaded")
	}
}

func TestEmailBodyTruncatesLongSummaries(t *testing.T) {
	long := strings.Repeat("x", 3000)
	body := EmailBody([]models.Entry{{Title: "T", SourceURL: "https://x/a.pdf", Summary: long}})
	if !strings.Contains(body, "…") {
		t.Error("long summary not marked with ellipsis")
	}
	if strings.Contains(body, strings.Repeat("x", 2001)) {
		t.Error("summary rendered beyond the 2000 character cap")
	}
}

func TestGitHubOutput(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "gh_output")
	t.Setenv("GITHUB_OUTPUT", outPath)

	if err := GitHubOutput("has_new", "true"); err != nil {
		t.Fatalf("GitHubOutput() error = %v", err)
	}
	if err := GitHubOutput("new_count", "3"); err != nil {
		t.Fatalf("GitHubOutput() error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "has_new=true\nnew_count=3\n" {
		t.Errorf("output file = %q", data)
	}
}

func TestGitHubOutputNoopWithoutEnv(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", "")
	if err := GitHubOutput("has_new", "false"); err != nil {
		t.Errorf("GitHubOutput() error = %v, want nil no-op", err)
	}
}

// Package artifact downloads circular PDFs into the content directory
// with stable, collision-safe file names.
package artifact

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"dotwatch/models"
	"dotwatch/pkg/fetcher"
)

const (
	defaultStem = "circular"
	maxNameLen  = 120
)

var (
	whitespace      = regexp.MustCompile(`\s+`)
	invalidNameChar = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// Fetcher downloads artifacts through the shared HTTP client.
type Fetcher struct {
	client *fetcher.Client
	dir    string
}

// New creates a Fetcher writing into dir, creating it if needed.
func New(client *fetcher.Client, dir string) (*Fetcher, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	return &Fetcher{client: client, dir: dir}, nil
}

// Dir returns the content directory.
func (f *Fetcher) Dir() string { return f.dir }

// PathFor returns the on-disk path for a stored artifact name.
func (f *Fetcher) PathFor(name string) string {
	return filepath.Join(f.dir, name)
}

// Fetch downloads the entry's PDF and returns the assigned file name.
//
// If a file already exists at the derived name and this entry wins
// the claim for it, the existing content is reused and nothing is
// fetched; this is a cache, not a freshness check. Every assigned
// name goes through a claim against names (which already holds every
// name recorded in the store), so uniqueness holds across the whole
// batch even when workers race over the same base name. A download
// failure leaves the entry without an artifact; it never aborts the
// run.
func (f *Fetcher) Fetch(ctx context.Context, e models.Entry, names *Names) (string, error) {
	base := BaseName(e)

	cached := false
	if !names.Has(base) {
		if _, err := os.Stat(f.PathFor(base)); err == nil {
			cached = true
		}
	}

	name := names.Claim(base)
	if cached && name == base {
		return base, nil
	}

	body, err := f.client.Get(ctx, e.SourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", e.SourceURL, err)
	}
	if err := os.WriteFile(f.PathFor(name), body, 0o644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	return name, nil
}

// BaseName derives the default file name for an entry. The URL's
// trailing path segment is preferred when it already looks like a PDF
// name, because it stays stable across reruns even if the title text
// changes. Otherwise the name is synthesized from the title plus a
// compacted digit prefix of the publish date.
func BaseName(e models.Entry) string {
	if u, err := url.Parse(e.SourceURL); err == nil {
		tail := path.Base(u.Path)
		if strings.HasSuffix(strings.ToLower(tail), ".pdf") {
			if s := Sanitize(tail); s != "" {
				return ensurePDF(s)
			}
		}
	}

	stem := Sanitize(e.Title)
	if d := digitPrefix(e.PublishDate, 8); d != "" {
		if stem == "" {
			stem = d
		} else {
			stem = stem + "_" + d
		}
	}
	if stem == "" {
		stem = defaultStem
	}
	return ensurePDF(stem)
}

// Sanitize makes s safe for use as a file name: runs of whitespace
// become single underscores, anything outside [A-Za-z0-9._-] is
// stripped, the result is capped at 120 characters and trimmed of
// leading and trailing separators.
func Sanitize(s string) string {
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "_")
	s = invalidNameChar.ReplaceAllString(s, "")
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return strings.Trim(s, "._-")
}

func ensurePDF(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return name
	}
	return name + ".pdf"
}

// digitPrefix collects the first n digits of s, in order.
func digitPrefix(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == n {
				break
			}
		}
	}
	return b.String()
}

// Package store implements the durable append-only record of every
// circular ever seen. The backing file is a CSV consumed by external
// tooling, so existing rows are never rewritten: the file only ever
// grows, one header plus one row per entry.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"dotwatch/models"
)

// Column order of the master CSV. The trailing pdf_filename column
// was added after the first deployments; Load tolerates files written
// with the original three-column header.
var header = []string{"title", "publish_date", "pdf_url", "pdf_filename"}

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads the master CSV and returns the set of already-seen
// source URLs and the set of file names already assigned. A missing
// or empty file is a warm start, not an error: it is created with the
// header row and both sets come back empty.
func (s *Store) Load() (seenURLs, seenNames map[string]bool, err error) {
	if err := s.ensureHeader(); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open master CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read master CSV: %w", err)
	}

	seenURLs = make(map[string]bool)
	seenNames = make(map[string]bool)
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) > 2 && rec[2] != "" {
			seenURLs[rec[2]] = true
		}
		if len(rec) > 3 && rec[3] != "" {
			seenNames[rec[3]] = true
		}
	}
	return seenURLs, seenNames, nil
}

// Diff returns the candidates whose SourceURL is not in seen, order
// preserved. Duplicates within the candidate batch itself are also
// dropped, keeping the first occurrence. Neither input is mutated, so
// calling Diff twice without an intervening Append yields the same
// result.
func Diff(candidates []models.Entry, seen map[string]bool) []models.Entry {
	var fresh []models.Entry
	batch := make(map[string]bool)
	for _, e := range candidates {
		if seen[e.SourceURL] || batch[e.SourceURL] {
			continue
		}
		batch[e.SourceURL] = true
		fresh = append(fresh, e)
	}
	return fresh
}

// Append writes the batch to the end of the master CSV in the fixed
// column order. The write either succeeds for the whole batch or
// reports an error; callers treat a failure here as fatal to the run
// so that fetched candidates are never silently lost.
func (s *Store) Append(entries []models.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.ensureHeader(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open master CSV for append: %w", err)
	}

	w := csv.NewWriter(f)
	for _, e := range entries {
		if err := w.Write([]string{e.Title, e.PublishDate, e.SourceURL, e.LocalName}); err != nil {
			f.Close()
			return fmt.Errorf("failed to append row for %s: %w", e.SourceURL, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush master CSV: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close master CSV: %w", err)
	}
	return nil
}

// Snapshot overwrites path with a plain three-column CSV of the given
// entries. Unlike the master store this is a full rewrite each time;
// it backs the export command only.
func Snapshot(path string, entries []models.Entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot CSV: %w", err)
	}

	w := csv.NewWriter(f)
	w.Write(header[:3])
	for _, e := range entries {
		w.Write([]string{e.Title, e.PublishDate, e.SourceURL})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot CSV: %w", err)
	}
	return f.Close()
}

// ensureHeader creates the master CSV with its header row when the
// file is missing or empty.
func (s *Store) ensureHeader() error {
	info, err := os.Stat(s.path)
	if err == nil && info.Size() > 0 {
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat master CSV: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create master CSV: %w", err)
	}
	w := csv.NewWriter(f)
	w.Write(header)
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return f.Close()
}

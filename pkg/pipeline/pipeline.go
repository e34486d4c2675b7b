// Package pipeline wires the watcher's stages into a single run:
// fetch listing, diff against the store, append the new batch, then
// per-entry download, extraction and summarization.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"dotwatch/models"
	"dotwatch/pkg/artifact"
	"dotwatch/pkg/fetcher"
	"dotwatch/pkg/listing"
	"dotwatch/pkg/pdftext"
	"dotwatch/pkg/store"
	"dotwatch/pkg/summarize"
)

// Options selects the capabilities of a run. The same orchestrator
// backs the full watch, the metadata-only scan, and anything in
// between; there are no separate code paths per variant.
type Options struct {
	ListURL string
	// Limit caps how many new entries are processed, applied to the
	// already-deduplicated list. Zero means no limit.
	Limit int
	// Downloads enables artifact retrieval (and with it extraction
	// and summarization).
	Downloads bool
	// Workers bounds the per-entry enrichment fan-out.
	Workers int
	// MaxChars bounds text extraction per artifact.
	MaxChars int
}

// Pipeline holds the collaborators for a run. Construct one per
// process; runs against the same store must be serialized by the
// caller (the scheduled trigger guarantees no overlap).
type Pipeline struct {
	fetch      *fetcher.Client
	store      *store.Store
	artifacts  *artifact.Fetcher
	summarizer *summarize.Summarizer
	logger     *slog.Logger
	opts       Options
}

func New(fetch *fetcher.Client, st *store.Store, artifacts *artifact.Fetcher,
	summarizer *summarize.Summarizer, logger *slog.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Pipeline{
		fetch:      fetch,
		store:      st,
		artifacts:  artifacts,
		summarizer: summarizer,
		logger:     logger,
		opts:       opts,
	}
}

// Run executes one watch cycle. Only two stages can fail the run: the
// listing fetch and the store append. Every per-entry step degrades
// that entry's fields and nothing else.
func (p *Pipeline) Run(ctx context.Context) (*models.RunResult, error) {
	doc, err := p.fetch.GetDocument(ctx, p.opts.ListURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}

	candidates := listing.Parse(doc, p.opts.ListURL)
	p.logger.Info("scraped listing", "rows", len(candidates))
	if len(candidates) == 0 {
		return &models.RunResult{Status: models.RunStatusNoData}, nil
	}

	seenURLs, seenNames, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load entry store: %w", err)
	}

	fresh := store.Diff(candidates, seenURLs)
	p.logger.Info("diffed against store", "seen", len(seenURLs), "new", len(fresh))
	if len(fresh) == 0 {
		return &models.RunResult{Status: models.RunStatusNothingNew}, nil
	}
	if p.opts.Limit > 0 && len(fresh) > p.opts.Limit {
		fresh = fresh[:p.opts.Limit]
	}

	if p.opts.Downloads {
		p.enrich(ctx, fresh, seenNames)
	}

	// One append per run, after all diff decisions and enrichment, so
	// each row carries its final filename and no two entries can race
	// for the same derived name.
	if err := p.store.Append(fresh); err != nil {
		return nil, fmt.Errorf("failed to append to entry store: %w", err)
	}

	result := &models.RunResult{Status: models.RunStatusNewEntries, NewEntries: fresh}
	for _, e := range fresh {
		if e.LocalName != "" {
			result.Downloaded = append(result.Downloaded, e.LocalName)
		}
		if e.Summary != "" {
			result.Summarized++
		}
	}
	return result, nil
}

// enrich fans the per-entry work out across a bounded worker pool.
// Entries touch disjoint artifacts; file name claims are serialized
// inside artifact.Names.
func (p *Pipeline) enrich(ctx context.Context, entries []models.Entry, seenNames map[string]bool) {
	names := artifact.NewNames(seenNames)

	workers := p.opts.Workers
	if workers > len(entries) {
		workers = len(entries)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p.enrichEntry(ctx, &entries[i], names)
			}
		}()
	}
	for i := range entries {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (p *Pipeline) enrichEntry(ctx context.Context, e *models.Entry, names *artifact.Names) {
	name, err := p.artifacts.Fetch(ctx, *e, names)
	if err != nil {
		p.logger.Warn("artifact download failed", "url", e.SourceURL, "error", err)
		return
	}
	e.LocalName = name

	if p.summarizer == nil || !p.summarizer.Enabled() {
		return
	}

	text := pdftext.Extract(p.artifacts.PathFor(name), p.opts.MaxChars)
	if text == "" {
		p.logger.Warn("no text extracted, skipping summarization", "file", name)
		return
	}

	summary := p.summarizer.Summarize(ctx, text)
	if summary == "" {
		p.logger.Warn("summary unavailable", "file", name)
		return
	}
	e.Summary = summary
}

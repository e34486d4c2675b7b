package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dotwatch/pkg/chunker"
)

// Summarizer orchestrates map-reduce summarization of one document.
type Summarizer struct {
	client  Client
	size    int
	overlap int
	logger  *slog.Logger
}

// New builds a Summarizer. A nil client disables summarization:
// Summarize then returns empty without attempting any call.
func New(client Client, size, overlap int, logger *slog.Logger) *Summarizer {
	if size <= 0 {
		size = chunker.DefaultSize
	}
	// Zero is a legal overlap; only a negative value falls back.
	if overlap < 0 {
		overlap = chunker.DefaultOverlap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{client: client, size: size, overlap: overlap, logger: logger}
}

// Enabled reports whether a backend is configured.
func (s *Summarizer) Enabled() bool { return s.client != nil }

// Summarize produces a bullet-point summary of text, or empty when no
// summary is available. Empty is not an error: a disabled backend,
// empty text, all map calls failing, or the reduce call failing each
// degrade to "no summary" for this document only.
//
// Map stage: one completion per chunk; a failed chunk is logged and
// dropped. Reduce stage: one completion combining the surviving
// partials; there is no partial fallback if it fails.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	if s.client == nil || strings.TrimSpace(text) == "" {
		return ""
	}

	chunks := chunker.Chunks(text, s.size, s.overlap)
	if len(chunks) == 0 {
		return ""
	}

	var partials []string
	for _, ch := range chunks {
		partial, err := s.client.Complete(ctx, fmt.Sprintf(chunkPrompt, ch.Text))
		if err != nil {
			s.logger.Warn("chunk summarization failed", "backend", s.client.Name(), "chunk", ch.Index, "error", err)
			continue
		}
		if partial != "" {
			partials = append(partials, partial)
		}
	}
	if len(partials) == 0 {
		return ""
	}

	combined, err := s.client.Complete(ctx, fmt.Sprintf(combinePrompt, strings.Join(partials, "\n\n")))
	if err != nil {
		s.logger.Warn("combine summarization failed", "backend", s.client.Name(), "error", err)
		return ""
	}
	return strings.TrimSpace(combined)
}

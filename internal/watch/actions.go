// Package watch wires the CLI commands to the pipeline.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"dotwatch/models"
	"dotwatch/pkg/artifact"
	"dotwatch/pkg/fetcher"
	"dotwatch/pkg/listing"
	"dotwatch/pkg/notify"
	"dotwatch/pkg/pipeline"
	"dotwatch/pkg/store"
	"dotwatch/pkg/summarize"
)

// WatchAction runs the full pipeline: detect, download, summarize,
// notify.
func WatchAction(c *cli.Context) error {
	return run(c, true)
}

// ScanAction runs the metadata-only variant: same detection and
// store append, no downloads and no summarization.
func ScanAction(c *cli.Context) error {
	return run(c, false)
}

func run(c *cli.Context, downloads bool) error {
	logger := newLogger(c)

	cfg, err := resolveConfig(c)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit("", 2)
	}

	client := fetcher.New(fetcher.Options{Logger: logger})
	st := store.New(cfg.MasterCSV)

	artifacts, err := artifact.New(client, cfg.PDFDir)
	if err != nil {
		logger.Error("failed to set up content directory", "error", err)
		return cli.Exit("", 2)
	}

	backend := cfg.Backend
	if !downloads {
		backend = "none"
	}
	llm, err := summarize.NewClient(backend, apiKeyFor(backend), os.Getenv("DOTWATCH_MODEL"))
	if err != nil {
		logger.Error("failed to set up summarization backend", "error", err)
		return cli.Exit("", 2)
	}
	if llm == nil && backend != "none" {
		logger.Warn("summarization disabled: no API key in environment", "backend", backend)
	}
	summarizer := summarize.New(llm, cfg.ChunkSize, cfg.ChunkOverlap, logger)

	p := pipeline.New(client, st, artifacts, summarizer, logger, pipeline.Options{
		ListURL:   cfg.ListURL,
		Limit:     cfg.Limit,
		Downloads: downloads,
		Workers:   cfg.Workers,
		MaxChars:  cfg.MaxChars,
	})

	ctx, cancel := context.WithTimeout(c.Context, 30*time.Minute)
	defer cancel()

	res, err := p.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		ghOutput(logger, "has_new", "false")
		return cli.Exit("", 1)
	}

	switch res.Status {
	case models.RunStatusNoData:
		logger.Warn("no rows scraped from listing")
		ghOutput(logger, "has_new", "false")
		return nil
	case models.RunStatusNothingNew:
		logger.Info("no new circulars found")
		ghOutput(logger, "has_new", "false")
		return nil
	}

	payload := notify.BuildPayload(res.NewEntries, time.Now())
	if err := notify.WritePayload(cfg.PayloadPath, payload); err != nil {
		logger.Error("failed to write payload", "error", err)
		return cli.Exit("", 1)
	}
	if err := notify.WriteEmailBody(cfg.EmailBody, res.NewEntries); err != nil {
		logger.Error("failed to write email body", "error", err)
		return cli.Exit("", 1)
	}

	ghOutput(logger, "has_new", "true")
	ghOutput(logger, "new_count", strconv.Itoa(len(res.NewEntries)))
	ghOutput(logger, "subject_suffix", fmt.Sprintf("%d new", len(res.NewEntries)))

	logger.Info("run complete",
		"new", len(res.NewEntries),
		"downloaded", len(res.Downloaded),
		"summarized", res.Summarized)
	return nil
}

// ExportAction scrapes the top of the listing and overwrites a plain
// CSV snapshot. It never touches the master store.
func ExportAction(c *cli.Context) error {
	logger := newLogger(c)
	listURL := c.String("list-url")

	client := fetcher.New(fetcher.Options{Logger: logger})
	ctx, cancel := context.WithTimeout(c.Context, 2*time.Minute)
	defer cancel()

	doc, err := client.GetDocument(ctx, listURL)
	if err != nil {
		logger.Error("failed to fetch listing", "error", err)
		return cli.Exit("", 1)
	}

	rows := listing.Parse(doc, listURL)
	if limit := c.Int("limit"); limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := c.String("output")
	if err := store.Snapshot(out, rows); err != nil {
		logger.Error("failed to write snapshot", "error", err)
		return cli.Exit("", 1)
	}
	logger.Info("wrote snapshot", "rows", len(rows), "path", out)
	return nil
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("quiet") {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveConfig layers CLI flags over the optional config file.
func resolveConfig(c *cli.Context) (*models.WatchConfig, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("list-url") {
		cfg.ListURL = c.String("list-url")
	}
	if c.IsSet("master-csv") {
		cfg.MasterCSV = c.String("master-csv")
	}
	if c.IsSet("pdf-dir") {
		cfg.PDFDir = c.String("pdf-dir")
	}
	if c.IsSet("payload") {
		cfg.PayloadPath = c.String("payload")
	}
	if c.IsSet("email-body") {
		cfg.EmailBody = c.String("email-body")
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("limit") {
		cfg.Limit = c.Int("limit")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("max-chars") {
		cfg.MaxChars = c.Int("max-chars")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ghOutput writes a workflow output variable. A write failure only
// degrades the CI surface, so it is logged and the run goes on.
func ghOutput(logger *slog.Logger, name, value string) {
	if err := notify.GitHubOutput(name, value); err != nil {
		logger.Warn("failed to write workflow output", "name", name, "error", err)
	}
}

func apiKeyFor(backend string) string {
	switch backend {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

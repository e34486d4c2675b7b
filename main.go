package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"dotwatch/internal/watch"
)

func main() {
	// API keys may live in a local .env during development; in CI they
	// come from the environment directly.
	godotenv.Load()

	app := &cli.App{
		Name:  "dotwatch",
		Usage: "watch the DoT circulars listing and notify on new publications",
		Commands: []*cli.Command{
			{
				Name:   "watch",
				Usage:  "full pipeline: detect new circulars, download PDFs, summarize, write notification outputs",
				Flags:  watch.PipelineFlags(),
				Action: watch.WatchAction,
			},
			{
				Name:   "scan",
				Usage:  "metadata only: detect new circulars and record them, no downloads or summaries",
				Flags:  watch.PipelineFlags(),
				Action: watch.ScanAction,
			},
			{
				Name:   "export",
				Usage:  "overwrite a CSV snapshot of the newest listing rows",
				Flags:  watch.ExportFlags(),
				Action: watch.ExportAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

package watch

import "github.com/urfave/cli/v2"

// PipelineFlags are shared by the watch and scan commands. Every flag
// overrides the corresponding config file value.
func PipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to a YAML config file",
		},
		&cli.StringFlag{
			Name:  "list-url",
			Usage: "circulars listing page URL",
		},
		&cli.StringFlag{
			Name:  "master-csv",
			Usage: "path of the append-only master CSV",
		},
		&cli.StringFlag{
			Name:  "pdf-dir",
			Usage: "directory for downloaded PDFs",
		},
		&cli.StringFlag{
			Name:  "payload",
			Usage: "path of the JSON payload written for new entries",
		},
		&cli.StringFlag{
			Name:  "email-body",
			Usage: "path of the plain-text notification body",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "summarization backend: openai, anthropic or none",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "max new entries processed per run, applied after dedup (0 = all)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "per-entry enrichment workers",
		},
		&cli.IntFlag{
			Name:  "max-chars",
			Usage: "max characters extracted per PDF",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "log errors only",
		},
	}
}

// ExportFlags configure the export command.
func ExportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "list-url",
			Value: "https://dot.gov.in/all-circulars",
			Usage: "circulars listing page URL",
		},
		&cli.StringFlag{
			Name:  "output",
			Value: "circulars.csv",
			Usage: "snapshot CSV path (overwritten each run)",
		},
		&cli.IntFlag{
			Name:  "limit",
			Value: 10,
			Usage: "number of rows exported from the top of the listing",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "log errors only",
		},
	}
}

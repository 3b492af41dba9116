package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "seoctl",
		Usage: "generate and validate SEO metadata from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "seo-service configuration file supplying engine and site settings",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "site base URL used for canonical links (overrides config)",
			},
			&cli.IntFlag{
				Name:  "max-keywords",
				Usage: "number of keywords to keep (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "generate metadata for markdown files with optional front matter",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print the full response as JSON"},
				},
				Action: generateAction,
			},
			{
				Name:      "validate",
				Usage:     "validate a metadata JSON file; exits 1 when it may not be published",
				ArgsUsage: "FILE",
				Action:    validateAction,
			},
			{
				Name:      "import",
				Usage:     "extract an article from an HTML page (URL or file) and generate metadata",
				ArgsUsage: "URL|FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "page URL for a local file, used to resolve relative links"},
					&cli.DurationFlag{Name: "timeout", Value: defaultFetchTimeout, Usage: "fetch timeout"},
					&cli.BoolFlag{Name: "allow-private", Usage: "allow fetching from loopback and private network addresses"},
					&cli.BoolFlag{Name: "json", Usage: "print the full response as JSON"},
				},
				Action: importAction,
			},
		},
	}
}

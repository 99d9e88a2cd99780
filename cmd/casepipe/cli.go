package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/opendefense/casepipe/internal/config"
	"github.com/opendefense/casepipe/internal/db"
	"github.com/opendefense/casepipe/internal/errors"
	"github.com/opendefense/casepipe/internal/extract"
	"github.com/opendefense/casepipe/internal/pipeline"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(database *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "casepipe",
		Usage:   "Court record ingestion pipeline",
		Version: Version,
		Commands: []*cli.Command{
			ingestCmd(database, cfg, logger),
			parseCmd(database, cfg, logger),
			caseCmd(database),
			versionsCmd(database),
			statsCmd(database),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// deps assembles the pipeline dependencies shared by ingest and parse.
func deps(database *sql.DB, cfg *config.Config, logger *zap.Logger) pipeline.Deps {
	return pipeline.Deps{
		DB:       database,
		Config:   cfg,
		Logger:   logger,
		Registry: extract.DefaultRegistry(),
	}
}

// ingestCmd creates the ingest command.
func ingestCmd(database *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Process every HTML document for a jurisdiction into the store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "jurisdiction", Aliases: []string{"j"}, Required: true, Usage: "Jurisdiction key (e.g. hays)"},
			&cli.StringFlag{Name: "input-dir", Aliases: []string{"i"}, Usage: "Override the case_html source directory"},
		},
		Action: func(c *cli.Context) error {
			output, err := pipeline.Run(c.Context, deps(database, cfg, logger), pipeline.RunInput{
				Jurisdiction: c.String("jurisdiction"),
				InputDir:     c.String("input-dir"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// parseCmd creates the parse command.
func parseCmd(database *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Extract and enrich a single document without persisting it",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "jurisdiction", Aliases: []string{"j"}, Required: true, Usage: "Jurisdiction key (e.g. hays)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("document path is required"))
			}
			output, err := pipeline.ParseOne(deps(database, cfg, logger), pipeline.ParseOneInput{
				Jurisdiction: c.String("jurisdiction"),
				Path:         c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// caseCmd creates the case command.
func caseCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "case",
		Usage:     "Fetch the latest persisted version of a case",
		ArgsUsage: "<cause-number>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("cause number is required"))
			}
			output, err := db.GetLatestCase(c.Context, database, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// versionsCmd creates the versions command.
func versionsCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "versions",
		Usage:     "List every persisted version of a case, oldest first",
		ArgsUsage: "<cause-number>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("cause number is required"))
			}
			output, err := db.ListVersions(c.Context, database, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Summarize the persisted dataset",
		Action: func(c *cli.Context) error {
			output, err := db.Stats(c.Context, database)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if pipeErr, ok := err.(*errors.PipeError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pipeErr.Code, pipeErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/inkpad/internal"
	pkgconfig "github.com/starford/inkpad/pkg/config"
)

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

func importNotes(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Import(ctx, internal.ImportOptions{
		Datafile: cmd.String("datafile"),
		Replace:  cmd.Bool("replace"),
	}, opts...)
}

func exportNotes(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Export(ctx, internal.ExportOptions{
		Datafile: cmd.String("datafile"),
	}, opts...)
}

func listNotes(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.List(ctx, internal.ListOptions{
		Scope:   cmd.String("scope"),
		Keyword: cmd.String("keyword"),
		Sorting: cmd.String("sort"),
	}, opts...)
}

func main() {
	datafileFlag := &cli.StringFlag{
		Name:    "datafile",
		Aliases: []string{"f"},
		Usage:   "JSON-per-line note datafile; when empty the configured vault is used",
	}

	cmd := &cli.Command{
		Name:   "inkpad",
		Usage:  "Note organizer with categories, filters and full-text search",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcp,
			},
			{
				Name:   "import",
				Usage:  "Import notes from a datafile or the Markdown vault",
				Action: importNotes,
				Flags: []cli.Flag{
					datafileFlag,
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Remove every note before importing",
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Export notes to a datafile or the Markdown vault",
				Action: exportNotes,
				Flags:  []cli.Flag{datafileFlag},
			},
			{
				Name:   "list",
				Usage:  "Print the notes of a scope",
				Action: listNotes,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "scope",
						Usage: "everything, starred, archived or a category name",
						Value: "everything",
					},
					&cli.StringFlag{
						Name:    "keyword",
						Aliases: []string{"k"},
						Usage:   "Only notes containing this text",
					},
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort order; defaults to notes.default_sort",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

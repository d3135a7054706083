package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/starford/inkpad/internal/mcpserver"
	"github.com/starford/inkpad/internal/models"
	"github.com/starford/inkpad/internal/noteservice"
	"github.com/starford/inkpad/internal/presenter"
	"github.com/starford/inkpad/internal/storage"
)

// withStack runs fn against the opened note store. Logs go to stderr so
// stdout stays free for command output.
func withStack(opts []Option, fn func(app *application, st *stack, logger *slog.Logger) error) error {
	app, err := configFrom(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)
	st, err := openStack(app.config, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(app, st, logger)
}

// RunMCP serves the MCP tools on stdin/stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	return withStack(opts, func(app *application, st *stack, logger *slog.Logger) error {
		logger.Info("MCP server starting", slog.String("store_path", app.config.Store.Path))
		return mcpserver.New(st.svc).ServeStdio()
	})
}

// ImportOptions controls the import command.
type ImportOptions struct {
	// Datafile is a JSON-per-line note datafile. Empty imports the vault.
	Datafile string
	// Replace removes every note before importing.
	Replace bool
}

// Import loads notes from a datafile or from the configured vault.
func Import(ctx context.Context, in ImportOptions, opts ...Option) error {
	return withStack(opts, func(app *application, st *stack, logger *slog.Logger) error {
		if in.Replace {
			n, err := st.svc.RemoveAllNotes(ctx)
			if err != nil {
				return fmt.Errorf("clear notes: %w", err)
			}
			logger.Info("notes removed", slog.Int64("count", n))
		}

		if in.Datafile != "" {
			f, err := os.Open(in.Datafile)
			if err != nil {
				return fmt.Errorf("open datafile: %w", err)
			}
			defer f.Close()
			n, err := st.svc.ImportDatafile(ctx, f)
			if err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(app.output, "imported %d notes from %s\n", n, in.Datafile)
			return nil
		}

		vault, err := storage.NewFS(app.config.Vault.Path)
		if err != nil {
			return fmt.Errorf("open vault: %w", err)
		}
		res, err := st.svc.ImportVault(ctx, vault)
		if err != nil {
			return err
		}
		printVaultResult(app.output, "imported", vault.Root(), res)
		return nil
	})
}

// ExportOptions controls the export command.
type ExportOptions struct {
	// Datafile is the destination datafile. Empty exports to the vault.
	Datafile string
}

// Export writes every note to a datafile or to the configured vault.
func Export(ctx context.Context, out ExportOptions, opts ...Option) error {
	return withStack(opts, func(app *application, st *stack, _ *slog.Logger) error {
		if out.Datafile != "" {
			f, err := os.Create(out.Datafile)
			if err != nil {
				return fmt.Errorf("create datafile: %w", err)
			}
			n, err := st.svc.ExportDatafile(ctx, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(app.output, "exported %d notes to %s\n", n, out.Datafile)
			return nil
		}

		vault, err := storage.NewFS(app.config.Vault.Path)
		if err != nil {
			return fmt.Errorf("open vault: %w", err)
		}
		res, err := st.svc.ExportVault(ctx, vault)
		if err != nil {
			return err
		}
		printVaultResult(app.output, "exported", vault.Root(), res)
		return nil
	})
}

func printVaultResult(w io.Writer, verb, root string, res noteservice.VaultResult) {
	_, _ = color.New(color.FgGreen).Fprintf(w, "%s %d notes", verb, res.Written)
	_, _ = fmt.Fprintf(w, " (%s): %d unchanged", root, res.Unchanged)
	if res.Failed > 0 {
		_, _ = color.New(color.FgRed).Fprintf(w, ", %d failed", res.Failed)
	}
	_, _ = fmt.Fprintln(w)
}

// ListOptions controls the list command.
type ListOptions struct {
	Scope   string
	Keyword string
	Sorting string
}

// List prints the notes of a scope, one per line.
func List(ctx context.Context, in ListOptions, opts ...Option) error {
	return withStack(opts, func(app *application, st *stack, _ *slog.Logger) error {
		sorting := app.config.Notes.Sorting()
		if in.Sorting != "" {
			s, err := models.ParseSorting(in.Sorting)
			if err != nil {
				return err
			}
			sorting = s
		}
		notes, err := st.svc.ListNotes(ctx, models.ParseScope(in.Scope), sorting, in.Keyword)
		if err != nil {
			return err
		}
		printNotes(app.output, notes, time.Now())
		return nil
	})
}

func printNotes(w io.Writer, notes []*models.Note, now time.Time) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	star := color.New(color.FgYellow)
	cat := color.New(color.FgCyan)

	for _, n := range notes {
		_, _ = faint.Fprintf(w, "%s  ", n.ID)
		if n.Starred {
			_, _ = star.Fprint(w, "* ")
		}
		title := n.Title
		if title == "" {
			title = "(untitled)"
		}
		_, _ = bold.Fprint(w, title)
		if n.Category != "" {
			_, _ = cat.Fprintf(w, "  [%s]", n.Category)
		}
		_, _ = faint.Fprintf(w, "  %s\n", presenter.RelativeTime(n.UpdatedAt(), now))
	}
	_, _ = faint.Fprintf(w, "%d notes\n", len(notes))
}

package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/starford/inkpad/internal/models"
	"github.com/starford/inkpad/internal/parser"
	"github.com/starford/inkpad/internal/storage"
)

// uncategorizedDir holds exported notes without a category.
const uncategorizedDir = "_uncategorized"

// VaultResult summarizes an import or export run.
type VaultResult struct {
	Written   int `json:"written"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// ImportVault creates or updates a note for every Markdown file in the
// provider. Files that carry an id in their frontmatter update that note;
// categories they name are added to the registry when missing. A file
// that cannot be parsed is logged and skipped.
func (s *Service) ImportVault(ctx context.Context, p storage.Provider) (VaultResult, error) {
	var res VaultResult
	files, err := p.List("")
	if err != nil {
		return res, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		data, err := p.Read(f.Path)
		if err != nil {
			s.logger.Warn("import: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			res.Failed++
			continue
		}
		parsed, err := parser.Parse(data)
		if err != nil {
			s.logger.Warn("import: parse failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			res.Failed++
			continue
		}
		changed, err := s.importFile(ctx, parsed)
		if err != nil {
			return res, fmt.Errorf("import %s: %w", f.Path, err)
		}
		if changed {
			res.Written++
		} else {
			res.Unchanged++
		}
	}

	s.logger.Info("vault imported",
		slog.Int("written", res.Written),
		slog.Int("unchanged", res.Unchanged),
		slog.Int("failed", res.Failed))
	return res, nil
}

func (s *Service) importFile(ctx context.Context, r *parser.Result) (bool, error) {
	if r.Category != "" {
		if _, err := s.ensureCategories(ctx, []string{r.Category}); err != nil {
			return false, err
		}
	}

	var existing *models.Note
	if r.ID != "" {
		n, err := s.store.FindByID(ctx, r.ID)
		if err != nil {
			return false, err
		}
		existing = n
	}

	n := existing
	if n == nil {
		n = models.NewNote(s.now())
		n.ID = r.ID
	} else if n.FullText == r.Body && n.Category == r.Category &&
		n.Starred == r.Starred && n.Archived == r.Archived &&
		slices.Equal(n.HashTags, r.Tags) {
		return false, nil
	}

	n.Update(r.Body, s.now())
	if r.Title != "" {
		n.Title = r.Title
	}
	n.Category = r.Category
	n.Starred = r.Starred
	n.Archived = r.Archived
	n.SetHashTags(r.Tags)

	if _, err := s.store.AddOrUpdate(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}

// ExportVault writes every note, archived ones included, to
// <category>/<id>.md with a frontmatter header. Files whose content
// already matches are left alone.
func (s *Service) ExportVault(ctx context.Context, p storage.Provider) (VaultResult, error) {
	var res VaultResult
	existing, err := p.List("")
	if err != nil {
		return res, err
	}
	sums := make(map[string]string, len(existing))
	for _, f := range existing {
		sums[f.Path] = f.Checksum
	}

	var notes []*models.Note
	for _, scope := range []models.Scope{models.Everything(), models.Archived()} {
		batch, err := s.store.Find(ctx, scope, models.SortCreatedAsc, "")
		if err != nil {
			return res, err
		}
		notes = append(notes, batch...)
	}

	for _, n := range notes {
		data, err := parser.Render(parser.Header{
			ID:       n.ID,
			Category: n.Category,
			Tags:     n.HashTags,
			Starred:  n.Starred,
			Archived: n.Archived,
		}, n.RawText())
		if err != nil {
			return res, fmt.Errorf("render %s: %w", n.ID, err)
		}

		rel := exportPath(n)
		if sums[rel] == storage.Checksum(data) {
			res.Unchanged++
			continue
		}
		if err := p.Write(rel, data); err != nil {
			return res, err
		}
		res.Written++
	}

	s.logger.Info("vault exported",
		slog.Int("written", res.Written),
		slog.Int("unchanged", res.Unchanged))
	return res, nil
}

func exportPath(n *models.Note) string {
	dir := uncategorizedDir
	if n.Category != "" {
		dir = strings.NewReplacer("/", "-", `\`, "-", "..", "-").Replace(n.Category)
	}
	return path.Join(dir, n.ID+".md")
}

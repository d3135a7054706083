package presenter

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
)

// NoteService is the write side the coordinator drives.
type NoteService interface {
	CreateNote(ctx context.Context, scope models.Scope) (*models.Note, error)
	UpdateText(ctx context.Context, id, text string) (*models.Note, error)
	SetHashTags(ctx context.Context, id string, tags []string) (*models.Note, error)
	SetStarred(ctx context.Context, id string, starred bool) (*models.Note, error)
	MoveToCategory(ctx context.Context, id, category string) (*models.Note, error)
	Duplicate(ctx context.Context, id string) (*models.Note, error)
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
	ArchiveScope(ctx context.Context, scope models.Scope) (int64, error)
	Trash(ctx context.Context, id string) (*models.Note, bool, error)
	EmptyArchive(ctx context.Context) (int64, error)

	AddCategory(ctx context.Context, name string) error
	UpdateCategory(ctx context.Context, oldName, newName string) error
	RemoveCategory(ctx context.Context, name string, cascadeArchive bool) error
}

// Coordinator owns the four presenters and keeps the filter and category
// selections mutually exclusive. Operations run one at a time.
type Coordinator struct {
	Filters    *FilterList
	Categories *CategoryList
	Notes      *NoteList
	Editor     *Editor

	svc      NoteService
	reporter ErrorReporter
	listener ChangeListener

	mu sync.Mutex
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*coordinatorConfig)

type coordinatorConfig struct {
	sorting  models.Sorting
	now      func() time.Time
	reporter ErrorReporter
	listener ChangeListener
}

// WithSorting sets the initial note sort order.
func WithSorting(s models.Sorting) CoordinatorOption {
	return func(c *coordinatorConfig) { c.sorting = s }
}

// WithClock overrides the time source for relative times.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *coordinatorConfig) { c.now = now }
}

// WithErrorReporter sets where failures are broadcast.
func WithErrorReporter(r ErrorReporter) CoordinatorOption {
	return func(c *coordinatorConfig) { c.reporter = r }
}

// WithChangeListener sets who is told about list changes.
func WithChangeListener(l ChangeListener) CoordinatorOption {
	return func(c *coordinatorConfig) { c.listener = l }
}

// NewCoordinator wires the presenters over the given store views.
func NewCoordinator(svc NoteService, notes NoteQuerier, categories CategorySource, opts ...CoordinatorOption) *Coordinator {
	cfg := coordinatorConfig{
		sorting:  models.SortUpdatedDesc,
		now:      time.Now,
		reporter: nopReporter{},
		listener: nopListener{},
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Coordinator{
		Filters:    NewFilterList(notes),
		Categories: NewCategoryList(categories, notes),
		Notes:      NewNoteList(notes, cfg.sorting, cfg.now),
		Editor:     NewEditor(notes),
		svc:        svc,
		reporter:   cfg.reporter,
		listener:   cfg.listener,
	}
}

// Load populates every list.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := errors.Join(
		c.Filters.Refresh(ctx),
		c.Categories.Refresh(ctx),
		c.Notes.Refresh(ctx),
	)
	c.changed(ListFilters, ListCategories, ListNotes)
	return c.fail(err)
}

// SelectFilter selects a fixed filter, deselecting any category, and
// shows its notes with nothing loaded in the editor.
func (c *Coordinator) SelectFilter(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.Filters.Select(id); err != nil {
		return c.fail(err)
	}
	scope, _ := FilterScope(id)
	c.Categories.Deselect()
	return c.fail(c.showScope(ctx, scope))
}

// SelectCategory selects a category, deselecting any filter.
func (c *Coordinator) SelectCategory(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.Categories.Select(name); err != nil {
		return c.fail(err)
	}
	c.Filters.Deselect()
	return c.fail(c.showScope(ctx, models.InCategory(name)))
}

func (c *Coordinator) showScope(ctx context.Context, scope models.Scope) error {
	err := c.Notes.SetScope(ctx, scope)
	if loadErr := c.Editor.Load(ctx, c.Notes.Selected()); loadErr != nil {
		err = errors.Join(err, loadErr)
	}
	c.changed(ListFilters, ListCategories, ListNotes, ListEditor)
	return err
}

// SelectNote selects a listed note and loads it into the editor.
func (c *Coordinator) SelectNote(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.Notes.Select(id); err != nil {
		return c.fail(err)
	}
	err := c.Editor.Load(ctx, id)
	c.changed(ListNotes, ListEditor)
	return c.fail(err)
}

// Search sets the keyword filter of the note list.
func (c *Coordinator) Search(ctx context.Context, keyword string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.Notes.SetKeyword(ctx, keyword)
	c.changed(ListNotes)
	return c.fail(err)
}

// Sort sets the sort order of the note list.
func (c *Coordinator) Sort(ctx context.Context, sorting models.Sorting) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.Notes.SetSorting(ctx, sorting)
	c.changed(ListNotes)
	return c.fail(err)
}

// AddNote creates a blank note under the current scope. The note is
// prepended to the list and the scope's badge is bumped without a query.
func (c *Coordinator) AddNote(ctx context.Context) (*models.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	scope := c.Notes.Scope()
	if scope.IsZero() {
		return nil, c.fail(apperr.ErrInvalidScope)
	}
	n, err := c.svc.CreateNote(ctx, scope)
	if err != nil {
		return nil, c.fail(err)
	}
	c.Notes.Insert(n)
	c.Editor.Set(n)
	if scope.Kind == models.ScopeCategory {
		c.Categories.Increment(scope.Category)
	} else {
		c.Filters.Increment(FilterID(scope))
	}
	c.listener.NoteChanged("created", n.ID)
	c.changed(ListFilters, ListCategories, ListNotes, ListEditor)
	return n, nil
}

// UpdateNote replaces a note's text.
func (c *Coordinator) UpdateNote(ctx context.Context, id, text string) (*models.Note, error) {
	return c.mutateNote(ctx, id, func() (*models.Note, error) { return c.svc.UpdateText(ctx, id, text) })
}

// SetHashTags assigns a note's tags.
func (c *Coordinator) SetHashTags(ctx context.Context, id string, tags []string) (*models.Note, error) {
	return c.mutateNote(ctx, id, func() (*models.Note, error) { return c.svc.SetHashTags(ctx, id, tags) })
}

// SetStarred stars or unstars a note.
func (c *Coordinator) SetStarred(ctx context.Context, id string, starred bool) (*models.Note, error) {
	return c.mutateNote(ctx, id, func() (*models.Note, error) { return c.svc.SetStarred(ctx, id, starred) })
}

// MoveToCategory reassigns a note's category.
func (c *Coordinator) MoveToCategory(ctx context.Context, id, category string) (*models.Note, error) {
	return c.mutateNote(ctx, id, func() (*models.Note, error) { return c.svc.MoveToCategory(ctx, id, category) })
}

// Duplicate copies a note.
func (c *Coordinator) Duplicate(ctx context.Context, id string) (*models.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.svc.Duplicate(ctx, id)
	if err != nil {
		return nil, c.fail(err)
	}
	c.listener.NoteChanged("created", n.ID)
	return n, c.fail(c.refreshAll(ctx))
}

// Archive soft-deletes a note.
func (c *Coordinator) Archive(ctx context.Context, id string) error {
	_, err := c.mutateNote(ctx, id, func() (*models.Note, error) { return nil, c.svc.Archive(ctx, id) })
	return err
}

// Unarchive restores a note.
func (c *Coordinator) Unarchive(ctx context.Context, id string) error {
	_, err := c.mutateNote(ctx, id, func() (*models.Note, error) { return nil, c.svc.Unarchive(ctx, id) })
	return err
}

// Trash archives a live note and deletes an archived one.
func (c *Coordinator) Trash(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, deleted, err := c.svc.Trash(ctx, id)
	if err != nil {
		return c.fail(err)
	}
	kind := "updated"
	if deleted {
		kind = "deleted"
	}
	c.listener.NoteChanged(kind, id)
	return c.fail(c.refreshAll(ctx))
}

// ArchiveAll archives every note of the current scope; under the archived
// filter it restores them all.
func (c *Coordinator) ArchiveAll(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.svc.ArchiveScope(ctx, c.Notes.Scope())
	if err != nil {
		return 0, c.fail(err)
	}
	return n, c.fail(c.refreshAll(ctx))
}

// EmptyArchive deletes every archived note.
func (c *Coordinator) EmptyArchive(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := c.svc.EmptyArchive(ctx)
	if err != nil {
		return 0, c.fail(err)
	}
	return n, c.fail(c.refreshAll(ctx))
}

// AddCategory creates a category and reconciles the category list.
func (c *Coordinator) AddCategory(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.svc.AddCategory(ctx, name); err != nil {
		return c.fail(err)
	}
	err := c.Categories.NotifyDataSetChanged(ctx)
	c.changed(ListCategories)
	return c.fail(err)
}

// UpdateCategory renames a category. A selected category stays selected
// under its new name, with no note selected.
func (c *Coordinator) UpdateCategory(ctx context.Context, oldName, newName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	wasShown := c.Notes.Scope() == models.InCategory(oldName)
	if err := c.svc.UpdateCategory(ctx, oldName, newName); err != nil {
		return c.fail(err)
	}
	err := c.Categories.NotifyDataSetChanged(ctx)
	switch {
	case err != nil:
		c.changed(ListCategories)
	case wasShown:
		if err = c.Categories.Select(newName); err == nil {
			err = c.showScope(ctx, models.InCategory(newName))
		}
	default:
		// The edited note may carry the old name.
		err = errors.Join(c.Notes.Refresh(ctx), c.Editor.Load(ctx, c.Notes.Selected()))
		c.changed(ListCategories, ListNotes, ListEditor)
	}
	return c.fail(err)
}

// RemoveCategory deletes a category, optionally archiving its notes.
func (c *Coordinator) RemoveCategory(ctx context.Context, name string, cascadeArchive bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.svc.RemoveCategory(ctx, name, cascadeArchive); err != nil {
		return c.fail(err)
	}
	return c.fail(c.reconcileCategories(ctx))
}

// CategoriesChanged reconciles after the registry changed outside the
// coordinator, such as an external edit of the settings file.
func (c *Coordinator) CategoriesChanged(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fail(c.reconcileCategories(ctx))
}

func (c *Coordinator) reconcileCategories(ctx context.Context) error {
	if err := c.Categories.NotifyDataSetChanged(ctx); err != nil {
		c.changed(ListCategories)
		return err
	}
	scope := c.Notes.Scope()
	var err error
	if scope.Kind == models.ScopeCategory && c.Categories.Selected() == "" {
		err = c.showScope(ctx, models.Scope{})
	} else {
		err = c.Notes.Refresh(ctx)
	}
	err = errors.Join(err, c.Filters.Refresh(ctx))
	c.changed(ListFilters, ListCategories, ListNotes)
	return err
}

// RefreshCounts re-reads every badge from the store.
func (c *Coordinator) RefreshCounts(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := errors.Join(c.Filters.Refresh(ctx), c.Categories.NotifyDataSetChanged(ctx))
	c.changed(ListFilters, ListCategories)
	return c.fail(err)
}

func (c *Coordinator) mutateNote(ctx context.Context, id string, fn func() (*models.Note, error)) (*models.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, err := fn()
	if err != nil {
		return nil, c.fail(err)
	}
	c.listener.NoteChanged("updated", id)
	return n, c.fail(c.refreshAll(ctx))
}

// refreshAll re-queries the note list and every badge, and reloads the
// editor when its note was touched.
func (c *Coordinator) refreshAll(ctx context.Context) error {
	err := errors.Join(
		c.Notes.Refresh(ctx),
		c.Filters.Refresh(ctx),
		c.Categories.NotifyDataSetChanged(ctx),
	)
	if loaded := c.Editor.Note(); loaded != nil {
		selected := c.Notes.Selected()
		if selected == loaded.ID {
			err = errors.Join(err, c.Editor.Load(ctx, selected))
		} else {
			c.Editor.Set(nil)
		}
	}
	c.changed(ListFilters, ListCategories, ListNotes, ListEditor)
	return err
}

func (c *Coordinator) changed(lists ...string) {
	for _, l := range lists {
		c.listener.ListChanged(l)
	}
}

func (c *Coordinator) fail(err error) error {
	if err != nil {
		c.reporter.ReportError(err)
	}
	return err
}

// View is a snapshot of every list model and the editor.
type View struct {
	Filters    []ListItem     `json:"filters"`
	Categories []ListItem     `json:"categories"`
	Notes      []ListItem     `json:"notes"`
	Editor     *models.Note   `json:"editor"`
	Scope      models.Scope   `json:"scope"`
	Keyword    string         `json:"keyword"`
	Sorting    models.Sorting `json:"sorting"`
}

// View returns the current snapshot.
func (c *Coordinator) View() View {
	return View{
		Filters:    c.Filters.Items(),
		Categories: c.Categories.Items(),
		Notes:      c.Notes.Items(),
		Editor:     c.Editor.Note(),
		Scope:      c.Notes.Scope(),
		Keyword:    c.Notes.Keyword(),
		Sorting:    c.Notes.Sorting(),
	}
}

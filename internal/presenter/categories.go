package presenter

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/starford/inkpad/internal/apperr"
	"github.com/starford/inkpad/internal/models"
)

type categoryItem struct {
	name  string
	count int
}

// CategoryList mirrors the category registry, one item per category with
// its live note count.
type CategoryList struct {
	source CategorySource
	notes  NoteQuerier

	refreshMu sync.Mutex

	mu       sync.RWMutex
	items    []categoryItem
	selected string
	state    State
}

// NewCategoryList creates the category list presenter.
func NewCategoryList(source CategorySource, notes NoteQuerier) *CategoryList {
	return &CategoryList{source: source, notes: notes}
}

// Refresh rebuilds the whole list from the registry. Counts are fetched
// before the model is swapped, so readers never see a partial list.
func (c *CategoryList) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	c.setState(StateRefreshing)
	defer c.setState(StateIdle)

	names, err := c.source.Find(ctx)
	if err != nil {
		return err
	}
	items := make([]categoryItem, 0, len(names))
	for _, name := range names {
		n, err := c.notes.Count(ctx, models.InCategory(name))
		if err != nil {
			return err
		}
		items = append(items, categoryItem{name: name, count: n})
	}
	sortItems(items)

	c.mu.Lock()
	c.items = items
	c.dropVanishedSelection()
	c.mu.Unlock()
	return nil
}

// NotifyDataSetChanged reconciles the list with the registry after a
// background change: new categories are appended with a zero count,
// vanished ones are removed, and then every count is re-read. The
// selection survives unless its category vanished.
func (c *CategoryList) NotifyDataSetChanged(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	c.setState(StateRefreshing)
	defer c.setState(StateIdle)

	names, err := c.source.Find(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	kept := make([]categoryItem, 0, len(names))
	for _, it := range c.items {
		if slices.Contains(names, it.name) {
			kept = append(kept, it)
		}
	}
	for _, name := range names {
		if !slices.ContainsFunc(kept, func(it categoryItem) bool { return it.name == name }) {
			kept = append(kept, categoryItem{name: name})
		}
	}
	sortItems(kept)
	c.items = kept
	c.dropVanishedSelection()
	surviving := make([]string, len(kept))
	for i, it := range kept {
		surviving[i] = it.name
	}
	c.mu.Unlock()

	for _, name := range surviving {
		n, err := c.notes.Count(ctx, models.InCategory(name))
		if err != nil {
			return err
		}
		c.setCount(name, n)
	}
	return nil
}

// Select marks a category as selected.
func (c *CategoryList) Select(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index(name) < 0 {
		return fmt.Errorf("%w: category %q", apperr.ErrNotFound, name)
	}
	c.selected = name
	return nil
}

// Deselect clears the selection.
func (c *CategoryList) Deselect() {
	c.mu.Lock()
	c.selected = ""
	c.mu.Unlock()
}

// Selected returns the selected category, or "".
func (c *CategoryList) Selected() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// Increment bumps the badge of a category without a query.
func (c *CategoryList) Increment(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(name); i >= 0 {
		c.items[i].count++
	}
}

// Items returns a snapshot of the list model.
func (c *CategoryList) Items() []ListItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]ListItem, len(c.items))
	for i, it := range c.items {
		items[i] = ListItem{
			ItemID:        it.name,
			PrimaryText:   it.name,
			SecondaryText: strconv.Itoa(it.count),
			Selected:      it.name == c.selected,
		}
	}
	return items
}

// State reports whether a refresh is in flight.
func (c *CategoryList) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *CategoryList) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *CategoryList) setCount(name string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(name); i >= 0 {
		c.items[i].count = n
	}
}

// index must be called with mu held.
func (c *CategoryList) index(name string) int {
	return slices.IndexFunc(c.items, func(it categoryItem) bool { return it.name == name })
}

func (c *CategoryList) dropVanishedSelection() {
	if c.selected != "" && c.index(c.selected) < 0 {
		c.selected = ""
	}
}

func sortItems(items []categoryItem) {
	slices.SortStableFunc(items, func(a, b categoryItem) int {
		if d := strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name)); d != 0 {
			return d
		}
		return strings.Compare(a.name, b.name)
	})
}

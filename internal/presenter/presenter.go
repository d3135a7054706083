// Package presenter holds the display-ready list models and the selection
// coordinator. Every presenter is a plain state container: Refresh
// recomputes its items from the store and readers take snapshots.
package presenter

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/inkpad/internal/models"
)

// ListItem is the display projection of a note, filter or category.
type ListItem struct {
	ItemID        string `json:"itemId"`
	PrimaryText   string `json:"primaryText"`
	SecondaryText string `json:"secondaryText"`
	TertiaryText  string `json:"tertiaryText,omitempty"`
	Selected      bool   `json:"selected"`
}

// State is the refresh state of a presenter.
type State int

const (
	StateIdle State = iota
	StateRefreshing
)

func (s State) String() string {
	if s == StateRefreshing {
		return "refreshing"
	}
	return "idle"
}

// NoteQuerier is the read side of the note store.
type NoteQuerier interface {
	FindByID(ctx context.Context, id string) (*models.Note, error)
	Find(ctx context.Context, scope models.Scope, sorting models.Sorting, keyword string) ([]*models.Note, error)
	Count(ctx context.Context, scope models.Scope) (int, error)
}

// CategorySource lists the registered categories.
type CategorySource interface {
	Find(ctx context.Context) ([]string, error)
}

// ErrorReporter receives every failure a presenter operation produces.
type ErrorReporter interface {
	ReportError(err error)
}

// ChangeListener is told when a list model or a note changed.
type ChangeListener interface {
	ListChanged(list string)
	NoteChanged(kind, id string)
}

// List names passed to ChangeListener.ListChanged.
const (
	ListFilters    = "filters"
	ListCategories = "categories"
	ListNotes      = "notes"
	ListEditor     = "editor"
)

type nopReporter struct{}

func (nopReporter) ReportError(error) {}

type nopListener struct{}

func (nopListener) ListChanged(string)         {}
func (nopListener) NoteChanged(string, string) {}

// RelativeTime renders t relative to now for the tertiary text column.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	}
	days := calendarDays(t, now)
	switch {
	case days <= 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	}
	return t.Format("Jan 2, 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func calendarDays(t, now time.Time) int {
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

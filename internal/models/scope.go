package models

import "fmt"

// ScopeKind identifies which list the note list is showing.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeEverything
	ScopeStarred
	ScopeArchived
	ScopeCategory
)

// Scope is the query context of the note list: one of the three fixed
// filters or a single category.
type Scope struct {
	Kind     ScopeKind `json:"kind"`
	Category string    `json:"category,omitempty"`
}

func Everything() Scope { return Scope{Kind: ScopeEverything} }
func Starred() Scope    { return Scope{Kind: ScopeStarred} }
func Archived() Scope   { return Scope{Kind: ScopeArchived} }

// InCategory returns the scope of a single category.
func InCategory(name string) Scope {
	return Scope{Kind: ScopeCategory, Category: name}
}

// IsZero reports whether no scope is selected.
func (s Scope) IsZero() bool {
	return s.Kind == ScopeNone
}

// Matches reports whether n belongs to the scope. Archived notes only
// belong to the archived scope.
func (s Scope) Matches(n *Note) bool {
	switch s.Kind {
	case ScopeEverything:
		return !n.Archived
	case ScopeStarred:
		return n.Starred && !n.Archived
	case ScopeArchived:
		return n.Archived
	case ScopeCategory:
		return !n.Archived && n.Category == s.Category
	}
	return false
}

// Apply stamps a new note with the attributes implied by the scope.
func (s Scope) Apply(n *Note) {
	switch s.Kind {
	case ScopeStarred:
		n.Starred = true
	case ScopeArchived:
		n.Archived = true
	case ScopeCategory:
		n.Category = s.Category
	}
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeEverything:
		return "everything"
	case ScopeStarred:
		return "starred"
	case ScopeArchived:
		return "archived"
	case ScopeCategory:
		return fmt.Sprintf("category:%s", s.Category)
	}
	return "none"
}

// ParseScope maps a scope name to a Scope. Empty means everything and
// any name other than the three filters selects that category.
func ParseScope(s string) Scope {
	switch s {
	case "", "everything":
		return Everything()
	case "starred":
		return Starred()
	case "archived":
		return Archived()
	}
	return InCategory(s)
}

package models

import (
	"fmt"
)

// Sorting is one of the six fixed orderings applied to note queries.
type Sorting int

const (
	SortTitleAsc Sorting = iota
	SortTitleDesc
	SortUpdatedAsc
	SortUpdatedDesc
	SortCreatedAsc
	SortCreatedDesc
)

var sortingNames = [...]string{
	SortTitleAsc:    "title-asc",
	SortTitleDesc:   "title-desc",
	SortUpdatedAsc:  "updated-asc",
	SortUpdatedDesc: "updated-desc",
	SortCreatedAsc:  "created-asc",
	SortCreatedDesc: "created-desc",
}

// SortingNames lists the accepted textual forms, in declaration order.
func SortingNames() []string {
	return append([]string(nil), sortingNames[:]...)
}

// ParseSorting converts a textual sort key like "updated-desc".
func ParseSorting(s string) (Sorting, error) {
	for i, name := range sortingNames {
		if name == s {
			return Sorting(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sorting %q", s)
}

// Valid reports whether s is one of the six sort keys.
func (s Sorting) Valid() bool {
	return s >= SortTitleAsc && s <= SortCreatedDesc
}

func (s Sorting) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Sorting(%d)", int(s))
	}
	return sortingNames[s]
}

// Descending reports whether the ordering is descending.
func (s Sorting) Descending() bool {
	return s == SortTitleDesc || s == SortUpdatedDesc || s == SortCreatedDesc
}

// MarshalText implements encoding.TextMarshaler.
func (s Sorting) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid sorting %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sorting) UnmarshalText(b []byte) error {
	v, err := ParseSorting(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

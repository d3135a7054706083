package api

import (
	"github.com/starford/inkpad/internal/models"
	"github.com/starford/inkpad/internal/presenter"
)

// CategoryRequest is the request body for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name" example:"Work" validate:"required"`
}

// NoteTextRequest is the request body for replacing a note's text.
type NoteTextRequest struct {
	Text string `json:"text" example:"# Groceries\nmilk"`
}

// TagsRequest is the request body for assigning hash tags.
type TagsRequest struct {
	Tags []string `json:"tags" example:"home,weekly"`
}

// StarRequest is the request body for starring or unstarring a note.
type StarRequest struct {
	Starred bool `json:"starred"`
}

// MoveRequest is the request body for moving a note; an empty category
// uncategorizes it.
type MoveRequest struct {
	Category string `json:"category" example:"Work"`
}

// KeywordRequest sets the note list keyword filter.
type KeywordRequest struct {
	Keyword string `json:"keyword" example:"milk"`
}

// SortRequest sets the note list order.
type SortRequest struct {
	Sorting models.Sorting `json:"sorting" example:"updated-desc" validate:"required"`
}

// ListResponse wraps a list model.
type ListResponse struct {
	Items []presenter.ListItem `json:"items" validate:"required"`
}

// CountResponse reports how many notes a bulk operation touched.
type CountResponse struct {
	Count int64 `json:"count" example:"3"`
}

// StateResponse is the snapshot of every list and the editor.
type StateResponse = presenter.View

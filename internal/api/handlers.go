package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/inkpad/internal/models"
	"github.com/starford/inkpad/internal/presenter"
)

// NoteReader reads single notes outside the list models.
type NoteReader interface {
	GetNote(ctx context.Context, id string) (*models.Note, error)
	SerializeNote(ctx context.Context, id string) (string, error)
}

// Handler holds API route handlers.
type Handler struct {
	coord  *presenter.Coordinator
	reader NoteReader
}

// NewHandler creates a new Handler.
func NewHandler(coord *presenter.Coordinator, reader NoteReader) *Handler {
	return &Handler{coord: coord, reader: reader}
}

// State handles GET /api/state.
//
//	@Summary		Snapshot of every list and the editor
//	@Tags			state
//	@Produce		json
//	@Success		200	{object}	StateResponse
//	@Security		BearerAuth
//	@Router			/state [get]
func (h *Handler) State(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.coord.View())
}

// Reload handles POST /api/state/reload.
//
//	@Summary		Reload every list from the store
//	@Tags			state
//	@Produce		json
//	@Success		200	{object}	StateResponse
//	@Security		BearerAuth
//	@Router			/state/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.Load(r.Context()); err != nil {
		writeError(w, "reload", err)
		return
	}
	writeJSON(w, http.StatusOK, h.coord.View())
}

// ListFilters handles GET /api/filters.
//
//	@Summary		List the three filters with their counts
//	@Tags			filters
//	@Produce		json
//	@Success		200	{object}	ListResponse
//	@Security		BearerAuth
//	@Router			/filters [get]
func (h *Handler) ListFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Items: h.coord.Filters.Items()})
}

// SelectFilter handles POST /api/filters/{id}/select.
//
//	@Summary		Show the notes of a filter
//	@Tags			filters
//	@Produce		json
//	@Param			id		path		string	true	"Filter id"	Enums(everything, starred, archived)
//	@Success		200		{object}	StateResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/filters/{id}/select [post]
func (h *Handler) SelectFilter(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.SelectFilter(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "select filter", err)
		return
	}
	writeJSON(w, http.StatusOK, h.coord.View())
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List categories with their counts
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	ListResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Items: h.coord.Categories.Items()})
}

// CreateCategory handles POST /api/categories.
//
//	@Summary		Create an empty category
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CategoryRequest	true	"Category to create"
//	@Success		201		{object}	ListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.coord.AddCategory(r.Context(), req.Name); err != nil {
		writeError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, ListResponse{Items: h.coord.Categories.Items()})
}

// RenameCategory handles PUT /api/categories/{name}.
//
//	@Summary		Rename a category and every note in it
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string			true	"Category name"
//	@Param			body	body		CategoryRequest	true	"New name"
//	@Success		200		{object}	ListResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{name} [put]
func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.coord.UpdateCategory(r.Context(), chi.URLParam(r, "name"), req.Name); err != nil {
		writeError(w, "rename category", err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: h.coord.Categories.Items()})
}

// DeleteCategory handles DELETE /api/categories/{name}?archive=true.
//
//	@Summary		Delete a category, optionally archiving its notes
//	@Tags			categories
//	@Param			name	path		string			true	"Category name"
//	@Param			archive	query		bool			false	"Archive the notes of the category"
//	@Success		204
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{name} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	archive := false
	if v := r.URL.Query().Get("archive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("archive must be true or false"))
			return
		}
		archive = b
	}
	if err := h.coord.RemoveCategory(r.Context(), chi.URLParam(r, "name"), archive); err != nil {
		writeError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectCategory handles POST /api/categories/{name}/select.
//
//	@Summary		Show the notes of a category
//	@Tags			categories
//	@Produce		json
//	@Param			name	path		string			true	"Category name"
//	@Success		200		{object}	StateResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{name}/select [post]
func (h *Handler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.SelectCategory(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, "select category", err)
		return
	}
	writeJSON(w, http.StatusOK, h.coord.View())
}

// ListNotes handles GET /api/notes: the note list of the current scope.
//
//	@Summary		List the notes of the current scope
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	ListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Items: h.coord.Notes.Items()})
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Add a blank note under the current scope
//	@Tags			notes
//	@Produce		json
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.coord.AddNote(r.Context())
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Success		200		{object}	models.Note
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.reader.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// RawNote handles GET /api/notes/{id}/raw.
//
//	@Summary		Get a note's raw text
//	@Tags			notes
//	@Produce		plain
//	@Param			id		path		string			true	"Note id"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/raw [get]
func (h *Handler) RawNote(w http.ResponseWriter, r *http.Request) {
	text, err := h.reader.SerializeNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "raw note", err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Replace a note's text
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Param			body	body		NoteTextRequest	true	"New text"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteTextRequest
	if !readJSON(w, r, &req) {
		return
	}
	h.respondNote(w, "update note")(h.coord.UpdateNote(r.Context(), chi.URLParam(r, "id"), req.Text))
}

// SetTags handles PUT /api/notes/{id}/tags.
//
//	@Summary		Replace a note's hash tags
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Param			body	body		TagsRequest	true	"Hash tags"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/tags [put]
func (h *Handler) SetTags(w http.ResponseWriter, r *http.Request) {
	var req TagsRequest
	if !readJSON(w, r, &req) {
		return
	}
	h.respondNote(w, "set tags")(h.coord.SetHashTags(r.Context(), chi.URLParam(r, "id"), req.Tags))
}

// SetStarred handles PUT /api/notes/{id}/star.
//
//	@Summary		Star or unstar a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Param			body	body		StarRequest	true	"Starred flag"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/star [put]
func (h *Handler) SetStarred(w http.ResponseWriter, r *http.Request) {
	var req StarRequest
	if !readJSON(w, r, &req) {
		return
	}
	h.respondNote(w, "star note")(h.coord.SetStarred(r.Context(), chi.URLParam(r, "id"), req.Starred))
}

// MoveNote handles PUT /api/notes/{id}/category.
//
//	@Summary		Move a note to a category
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Param			body	body		MoveRequest	true	"Target category, empty to uncategorize"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/category [put]
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !readJSON(w, r, &req) {
		return
	}
	h.respondNote(w, "move note")(h.coord.MoveToCategory(r.Context(), chi.URLParam(r, "id"), req.Category))
}

// DuplicateNote handles POST /api/notes/{id}/duplicate.
//
//	@Summary		Copy a note under a new id
//	@Tags			notes
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Success		201		{object}	models.Note
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/duplicate [post]
func (h *Handler) DuplicateNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.coord.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "duplicate note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// ArchiveNote handles POST /api/notes/{id}/archive.
//
//	@Summary		Archive a note
//	@Tags			notes
//	@Param			id		path		string			true	"Note id"
//	@Success		204
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/archive [post]
func (h *Handler) ArchiveNote(w http.ResponseWriter, r *http.Request) {
	h.respondEmpty(w, "archive note", h.coord.Archive(r.Context(), chi.URLParam(r, "id")))
}

// UnarchiveNote handles POST /api/notes/{id}/unarchive.
//
//	@Summary		Restore an archived note
//	@Tags			notes
//	@Param			id		path		string			true	"Note id"
//	@Success		204
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/unarchive [post]
func (h *Handler) UnarchiveNote(w http.ResponseWriter, r *http.Request) {
	h.respondEmpty(w, "unarchive note", h.coord.Unarchive(r.Context(), chi.URLParam(r, "id")))
}

// TrashNote handles DELETE /api/notes/{id}: archive when live, delete when archived.
//
//	@Summary		Archive a live note or delete an archived one
//	@Tags			notes
//	@Param			id		path		string			true	"Note id"
//	@Success		204
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) TrashNote(w http.ResponseWriter, r *http.Request) {
	h.respondEmpty(w, "trash note", h.coord.Trash(r.Context(), chi.URLParam(r, "id")))
}

// SelectNote handles POST /api/notes/{id}/select.
//
//	@Summary		Select a listed note and load it into the editor
//	@Tags			notes
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Success		200		{object}	StateResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/select [post]
func (h *Handler) SelectNote(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.SelectNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "select note", err)
		return
	}
	writeJSON(w, http.StatusOK, h.coord.View())
}

// ArchiveAll handles POST /api/notes/archive-all for the current scope.
//
//	@Summary		Archive every note of the current scope
//	@Tags			notes
//	@Produce		json
//	@Success		200		{object}	CountResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/archive-all [post]
func (h *Handler) ArchiveAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.coord.ArchiveAll(r.Context())
	if err != nil {
		writeError(w, "archive all", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// EmptyArchive handles DELETE /api/archive.
//
//	@Summary		Delete every archived note
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	CountResponse
//	@Security		BearerAuth
//	@Router			/archive [delete]
func (h *Handler) EmptyArchive(w http.ResponseWriter, r *http.Request) {
	n, err := h.coord.EmptyArchive(r.Context())
	if err != nil {
		writeError(w, "empty archive", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

// SetKeyword handles PUT /api/keyword.
//
//	@Summary		Filter the note list by keyword
//	@Tags			list
//	@Accept			json
//	@Produce		json
//	@Param			body	body		KeywordRequest	true	"Keyword, empty to clear"
//	@Success		200		{object}	ListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/keyword [put]
func (h *Handler) SetKeyword(w http.ResponseWriter, r *http.Request) {
	var req KeywordRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.coord.Search(r.Context(), req.Keyword); err != nil {
		writeError(w, "set keyword", err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: h.coord.Notes.Items()})
}

// SetSorting handles PUT /api/sort.
//
//	@Summary		Change the note list order
//	@Tags			list
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SortRequest	true	"Sort order"
//	@Success		200		{object}	ListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sort [put]
func (h *Handler) SetSorting(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if !readJSON(w, r, &req) {
		return
	}
	if err := h.coord.Sort(r.Context(), req.Sorting); err != nil {
		writeError(w, "set sorting", err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: h.coord.Notes.Items()})
}

func (h *Handler) respondNote(w http.ResponseWriter, op string) func(*models.Note, error) {
	return func(n *models.Note, err error) {
		if err != nil {
			writeError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}

func (h *Handler) respondEmpty(w http.ResponseWriter, op string, err error) {
	if err != nil {
		writeError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

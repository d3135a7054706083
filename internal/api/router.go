package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/starford/inkpad/internal/presenter"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AuthEnabled controls whether Bearer token auth is enforced.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
	// AllowedOrigins lists the UI shell origins allowed by CORS.
	AllowedOrigins []string
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(coord *presenter.Coordinator, reader NoteReader, opts RouterOptions) chi.Router {
	h := NewHandler(coord, reader)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

	r.Get("/state", h.State)
	r.Post("/state/reload", h.Reload)

	// Filters.
	r.Get("/filters", h.ListFilters)
	r.Post("/filters/{id}/select", h.SelectFilter)

	// Categories.
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/{name}", h.RenameCategory)
	r.Delete("/categories/{name}", h.DeleteCategory)
	r.Post("/categories/{name}/select", h.SelectCategory)

	// Notes of the current scope.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/archive-all", h.ArchiveAll)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.TrashNote)
	r.Get("/notes/{id}/raw", h.RawNote)
	r.Put("/notes/{id}/tags", h.SetTags)
	r.Put("/notes/{id}/star", h.SetStarred)
	r.Put("/notes/{id}/category", h.MoveNote)
	r.Post("/notes/{id}/duplicate", h.DuplicateNote)
	r.Post("/notes/{id}/archive", h.ArchiveNote)
	r.Post("/notes/{id}/unarchive", h.UnarchiveNote)
	r.Post("/notes/{id}/select", h.SelectNote)
	r.Delete("/archive", h.EmptyArchive)

	// List controls.
	r.Put("/keyword", h.SetKeyword)
	r.Put("/sort", h.SetSorting)

	// SSE endpoint (protected by same auth middleware).
	if opts.Events != nil {
		r.Get("/events", opts.Events.ServeHTTP)
	}

	return r
}

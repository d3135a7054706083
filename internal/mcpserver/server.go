// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Inkpad tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/inkpad/internal/models"
)

// searchLimit caps the number of notes returned by search_notes.
const searchLimit = 20

// Notes is the note service surface the tools use.
type Notes interface {
	ListNotes(ctx context.Context, scope models.Scope, sorting models.Sorting, keyword string) ([]*models.Note, error)
	CountNotes(ctx context.Context, scope models.Scope) (int, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	CreateFromText(ctx context.Context, scope models.Scope, text string) (*models.Note, error)
	SetStarred(ctx context.Context, id string, starred bool) (*models.Note, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// Server wraps the MCP server with Inkpad tools.
type Server struct {
	mcp   *server.MCPServer
	notes Notes
}

// New creates a new MCP server with all Inkpad tools registered.
func New(notes Notes) *Server {
	s := &Server{notes: notes}

	s.mcp = server.NewMCPServer(
		"Inkpad",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Find notes whose text contains a keyword (case-insensitive). "+
			"Searches every non-archived note unless a scope is given."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Keyword to look for")),
		mcp.WithString("scope", mcp.Description("everything (default), starred, archived, or a category name")),
		mcp.WithString("sorting", mcp.Description("title-asc, title-desc, updated-asc, updated-desc (default), created-asc or created-desc")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full text of a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id as returned by search_notes")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note from text. The first line becomes the title. "+
			"Read the contract first via the get_note_contract tool or the inkpad://note-format resource."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Note text, plain or Markdown")),
		mcp.WithString("category", mcp.Description("Existing category to file the note under")),
		mcp.WithBoolean("starred", mcp.Description("Star the new note")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List every category with its number of non-archived notes."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns how Inkpad derives titles and search text from note text."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("inkpad://note-format", "Note Format Contract",
			mcp.WithResourceDescription("How note text maps to titles, previews and search."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type noteHit struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category,omitempty"`
	Starred       bool   `json:"starred"`
	Archived      bool   `json:"archived"`
	LastUpdatedAt int64  `json:"lastUpdatedAt"`
}

type categoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sorting := models.SortUpdatedDesc
	if raw := req.GetString("sorting", ""); raw != "" {
		if sorting, err = models.ParseSorting(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	notes, err := s.notes.ListNotes(ctx, models.ParseScope(req.GetString("scope", "")), sorting, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits := make([]noteHit, 0, min(len(notes), searchLimit))
	for _, n := range notes {
		if len(hits) == searchLimit {
			break
		}
		hits = append(hits, noteHit{
			ID:            n.ID,
			Title:         n.Title,
			Description:   n.Description,
			Category:      n.Category,
			Starred:       n.Starred,
			Archived:      n.Archived,
			LastUpdatedAt: n.LastUpdatedAt,
		})
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.notes.GetNote(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(n.RawText()), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	scope := models.Everything()
	switch {
	case req.GetString("category", "") != "":
		scope = models.InCategory(req.GetString("category", ""))
	case req.GetBool("starred", false):
		scope = models.Starred()
	}

	n, err := s.notes.CreateFromText(ctx, scope, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if scope.Kind == models.ScopeCategory && req.GetBool("starred", false) {
		if _, err := s.notes.SetStarred(ctx, n.ID, true); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", n.ID)), nil
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.notes.ListCategories(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]categoryCount, 0, len(names))
	for _, name := range names {
		n, err := s.notes.CountNotes(ctx, models.InCategory(name))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out = append(out, categoryCount{Name: name, Count: n})
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "inkpad://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}

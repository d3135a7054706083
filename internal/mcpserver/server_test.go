package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/inkpad/internal/noteservice"
	"github.com/starford/inkpad/internal/testutil"
)

func testServer(t *testing.T, categories ...string) *Server {
	t.Helper()
	store := testutil.TestStore(t)
	reg := testutil.TestRegistry(t, categories...)
	return New(noteservice.NewService(store, reg))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "list_categories":
		result, err = srv.listCategories(ctx, req)
	case "get_note_contract":
		result, err = srv.getNoteContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func createdID(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	text := resultText(r)
	id, ok := strings.CutPrefix(text, "created: ")
	if !ok || r.IsError {
		t.Fatalf("create result = %q", text)
	}
	return id
}

func TestCreateAndReadNote(t *testing.T) {
	srv := testServer(t)

	id := createdID(t, callTool(t, srv, "create_note", map[string]interface{}{
		"text": "# Test\nHello",
	}))

	r := callTool(t, srv, "read_note", map[string]interface{}{"id": id})
	if text := resultText(r); text != "# Test\nHello" {
		t.Errorf("read result = %q", text)
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_note", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestCreateNote_UnknownCategory(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_note", map[string]interface{}{
		"text":     "x",
		"category": "Nope",
	})
	if !r.IsError {
		t.Errorf("expected error, got %q", resultText(r))
	}
}

func TestSearchNotes(t *testing.T) {
	srv := testServer(t, "Home")
	milk := createdID(t, callTool(t, srv, "create_note", map[string]interface{}{
		"text":     "Buy **milk** today",
		"category": "Home",
		"starred":  true,
	}))
	createdID(t, callTool(t, srv, "create_note", map[string]interface{}{"text": "Call mom"}))

	r := callTool(t, srv, "search_notes", map[string]interface{}{"query": "MILK"})
	var hits []noteHit
	if err := json.Unmarshal([]byte(resultText(r)), &hits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != milk || hits[0].Category != "Home" || !hits[0].Starred {
		t.Errorf("hits = %+v", hits)
	}

	r = callTool(t, srv, "search_notes", map[string]interface{}{"query": "milk", "scope": "archived"})
	if text := resultText(r); text != "[]" {
		t.Errorf("archived search = %q", text)
	}

	r = callTool(t, srv, "search_notes", map[string]interface{}{"query": "milk", "sorting": "sideways"})
	if !r.IsError {
		t.Error("expected error for bad sorting")
	}
}

func TestListCategories(t *testing.T) {
	srv := testServer(t, "Home", "Work")
	createdID(t, callTool(t, srv, "create_note", map[string]interface{}{"text": "a", "category": "Work"}))

	r := callTool(t, srv, "list_categories", map[string]interface{}{})
	var got []categoryCount
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []categoryCount{{"Home", 0}, {"Work", 1}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("categories = %+v, want %+v", got, want)
	}
}

func TestNoteContract(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_note_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "Inkpad Note Format Contract") {
		t.Error("contract missing")
	}
}

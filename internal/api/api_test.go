package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/inkpad/internal/models"
	"github.com/starford/inkpad/internal/noteservice"
	"github.com/starford/inkpad/internal/presenter"
	"github.com/starford/inkpad/internal/testutil"
)

// testEnv sets up a temp SQLite store, registry, coordinator and router.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	store := testutil.TestStore(t)
	reg := testutil.TestRegistry(t)
	svc := noteservice.NewService(store, reg)
	coord := presenter.NewCoordinator(svc, store, reg)
	if err := coord.Load(t.Context()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return NewRouter(coord, svc, RouterOptions{AuthEnabled: authToken != "", Token: authToken})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestCreateNote_NoScope(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodPost, "/notes", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "no scope selected") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestCreateAndEditNote(t *testing.T) {
	router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/filters/everything/select", nil); w.Code != http.StatusOK {
		t.Fatalf("select status = %d", w.Code)
	}
	w := do(t, router, http.MethodPost, "/notes", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	n := decode[models.Note](t, w)
	if n.ID == "" || n.Archived || n.Starred {
		t.Fatalf("unexpected note %+v", n)
	}

	w = do(t, router, http.MethodPut, "/notes/"+n.ID, NoteTextRequest{Text: "# Groceries\nBuy **milk**"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode[models.Note](t, w); got.Title != "Groceries" || got.SearchableText != "Groceries\nBuy milk" {
		t.Errorf("derived fields not updated: %+v", got)
	}

	w = do(t, router, http.MethodGet, "/notes/"+n.ID+"/raw", nil)
	if w.Body.String() != "# Groceries\nBuy **milk**" {
		t.Errorf("raw = %q", w.Body.String())
	}

	w = do(t, router, http.MethodPut, "/keyword", KeywordRequest{Keyword: "bread"})
	if items := decode[ListResponse](t, w).Items; len(items) != 0 {
		t.Errorf("keyword bread matched %d notes", len(items))
	}
	w = do(t, router, http.MethodPut, "/keyword", KeywordRequest{Keyword: "milk"})
	if items := decode[ListResponse](t, w).Items; len(items) != 1 {
		t.Errorf("keyword milk matched %d notes", len(items))
	}

	w = do(t, router, http.MethodGet, "/filters", nil)
	items := decode[ListResponse](t, w).Items
	if items[0].ItemID != presenter.FilterEverything || items[0].SecondaryText != "1" {
		t.Errorf("filters = %+v", items)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/notes/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/categories", CategoryRequest{Name: "A"}); w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/categories", CategoryRequest{Name: "A"}); w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", w.Code)
	}

	do(t, router, http.MethodPost, "/categories/A/select", nil)
	w := do(t, router, http.MethodPost, "/notes", nil)
	if n := decode[models.Note](t, w); n.Category != "A" {
		t.Fatalf("category = %q, want A", n.Category)
	}

	w = do(t, router, http.MethodPut, "/categories/A", CategoryRequest{Name: "B"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename status = %d, body = %s", w.Code, w.Body.String())
	}
	items := decode[ListResponse](t, w).Items
	if len(items) != 1 || items[0].ItemID != "B" || items[0].SecondaryText != "1" || !items[0].Selected {
		t.Errorf("categories after rename = %+v", items)
	}

	if w := do(t, router, http.MethodDelete, "/categories/A", nil); w.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", w.Code)
	}
	if w := do(t, router, http.MethodDelete, "/categories/B?archive=true", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	state := decode[StateResponse](t, do(t, router, http.MethodGet, "/state", nil))
	if len(state.Categories) != 0 {
		t.Errorf("categories = %+v", state.Categories)
	}
	for _, f := range state.Filters {
		if f.ItemID == presenter.FilterArchived && f.SecondaryText != "1" {
			t.Errorf("archived count = %s, want 1", f.SecondaryText)
		}
	}
}

func TestDeleteCategory_InvalidArchiveFlag(t *testing.T) {
	router := testEnv(t, "")
	if w := do(t, router, http.MethodPost, "/categories", CategoryRequest{Name: "A"}); w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	w := do(t, router, http.MethodDelete, "/categories/A?archive=yes", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", w.Code, w.Body.String())
	}
	items := decode[ListResponse](t, do(t, router, http.MethodGet, "/categories", nil)).Items
	if len(items) != 1 || items[0].ItemID != "A" {
		t.Errorf("category removed on bad flag: %+v", items)
	}

	if w := do(t, router, http.MethodDelete, "/categories/A?archive=false", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
}

func TestSetSorting_Invalid(t *testing.T) {
	router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPut, "/sort", strings.NewReader(`{"sorting":"sideways"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAuthDisabledMode(t *testing.T) {
	router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/state", nil); w.Code != http.StatusOK {
		t.Fatalf("disabled mode: status = %d", w.Code)
	}
}

func TestAuthTokenMode(t *testing.T) {
	router := testEnv(t, "secret")

	if w := do(t, router, http.MethodGet, "/state", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := testEnv(t, "secret")
	req := httptest.NewRequest(http.MethodOptions, "/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}
}

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gridstore/gridstore/internal/config"
	"github.com/gridstore/gridstore/internal/persist"
	"github.com/gridstore/gridstore/internal/table"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 30 * time.Second
	cfg.Server.MaxImportSize = 1 << 20
	cfg.View.PageSize = 10

	mem := persist.NewMemory()
	rows := table.NewRowStore(context.Background(), mem)
	columns := table.NewColumnRegistry(context.Background(), mem)

	return NewServer(rows, columns, cfg)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// ============================================================================
// View
// ============================================================================

func TestHandleView_Defaults(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/view", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp ViewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.TotalCount != len(table.DefaultRows()) {
		t.Errorf("TotalCount = %d, want %d", resp.TotalCount, len(table.DefaultRows()))
	}
	if resp.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", resp.PageSize)
	}
	if resp.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", resp.PageCount)
	}
}

func TestHandleView_SearchSortPage(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/view?search=example.com&sort=age&dir=desc&page=0&pageSize=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ViewResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)

	if resp.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", resp.TotalCount)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("page length = %d, want 2", len(resp.Items))
	}
	if resp.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", resp.PageCount)
	}
	// Default rows sorted by age desc: Carol (45) first.
	if resp.Items[0]["name"] != "Carol Diaz" {
		t.Errorf("first item = %v, want Carol Diaz", resp.Items[0]["name"])
	}
}

// ============================================================================
// Rows
// ============================================================================

func TestHandleAddRow_SynthesizesID(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/rows", `{"name":"Dana","email":"d@x.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var row table.Row
	json.Unmarshal(rec.Body.Bytes(), &row)
	if row.ID() == "" {
		t.Error("expected a synthesized id")
	}
	if s.rows.Len() != len(table.DefaultRows())+1 {
		t.Errorf("row count = %d, want one more than defaults", s.rows.Len())
	}
}

func TestHandleUpdateRow_InvalidAgeRejected(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/rows/1", `{"name":"Alice","email":"a@x.com","age":"forty"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}

	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != "VAL001" {
		t.Errorf("code = %q, want VAL001", resp.Code)
	}

	// Nothing committed: the stored row is untouched.
	for _, row := range s.rows.Rows() {
		if row.ID() == "1" && row["age"] == "forty" {
			t.Error("rejected edit was committed")
		}
	}
}

func TestHandleUpdateRow_UnknownID(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/rows/ghost", `{"name":"X","email":"x@x.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDeleteRow_Idempotent(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodDelete, "/api/rows/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/rows/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("second delete status = %d, want 204", rec.Code)
	}

	if s.rows.Len() != len(table.DefaultRows())-1 {
		t.Errorf("row count = %d, want one less than defaults", s.rows.Len())
	}
}

// ============================================================================
// Columns
// ============================================================================

func TestHandleAddColumn_DuplicateConflict(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/columns", `{"key":"city","label":"City","visible":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, "/api/columns", `{"key":"city","label":"City 2","visible":true}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
}

func TestHandleReorderColumns(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/columns/order",
		`[{"key":"email","label":"Email","visible":true},{"key":"name","label":"Name","visible":true}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	cols := s.columns.Columns()
	if len(cols) != 2 || cols[0].Key != "email" {
		t.Errorf("columns = %+v, want the verbatim new order", cols)
	}
}

// ============================================================================
// CSV interchange
// ============================================================================

func TestHandleImport_ReportsErrorsWithoutAborting(t *testing.T) {
	s := newTestServer(t)

	csv := "name,email\nAlice,a@x.com\n,b@x.com\n"
	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp ImportResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Imported != 2 {
		t.Errorf("Imported = %d, want 2 (errors never drop data)", resp.Imported)
	}
	if len(resp.Errors) != 1 {
		t.Errorf("Errors = %v, want exactly one", resp.Errors)
	}
	if s.rows.Len() != 2 {
		t.Errorf("row count = %d, want 2", s.rows.Len())
	}
}

func TestHandleImport_EmptyBody(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/import", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleExport_Headers(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="export.csv"`) {
		t.Errorf("Content-Disposition = %q, want export.csv attachment", cd)
	}

	// Header line is the visible keys; id is hidden by default.
	firstLine := strings.SplitN(rec.Body.String(), "\n", 2)[0]
	if firstLine != "name,email,age,role" {
		t.Errorf("header line = %q, want visible columns in order", firstLine)
	}
}

func TestHandleExport_RespectsVisibilityToggle(t *testing.T) {
	s := newTestServer(t)

	if err := s.columns.ToggleVisibility(context.Background(), "role"); err != nil {
		t.Fatalf("ToggleVisibility() error = %v", err)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/export", "")
	firstLine := strings.SplitN(rec.Body.String(), "\n", 2)[0]
	if strings.Contains(firstLine, "role") {
		t.Errorf("hidden column leaked into export header: %q", firstLine)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

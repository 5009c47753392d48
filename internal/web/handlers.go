package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gridstore/gridstore/internal/table"
)

// ViewResponse is the JSON shape of a computed view page.
type ViewResponse struct {
	Items      []table.Row `json:"items"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	PageCount  int         `json:"pageCount"`
}

// handleView computes the filtered, sorted, paginated view from the
// current row snapshot and the request's query parameters.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q := table.ViewQuery{
		Search:   r.URL.Query().Get("search"),
		SortKey:  r.URL.Query().Get("sort"),
		SortDir:  parseDir(r.URL.Query().Get("dir")),
		Page:     parseIntParam(r, "page", 0, 0),
		PageSize: parseIntParam(r, "pageSize", s.cfg.View.PageSize, 1),
	}

	view := table.ComputeView(s.rows.Rows(), q)

	pageCount := (view.TotalCount + q.PageSize - 1) / q.PageSize
	items := view.Items
	if items == nil {
		items = []table.Row{}
	}

	writeJSON(w, http.StatusOK, ViewResponse{
		Items:      items,
		TotalCount: view.TotalCount,
		Page:       q.Page,
		PageSize:   q.PageSize,
		PageCount:  pageCount,
	})
}

// handleAddRow appends one row. A missing id is synthesized; the edit
// is validated before anything commits.
func (s *Server) handleAddRow(w http.ResponseWriter, r *http.Request) {
	var row table.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if row.ID() == "" {
		row[table.FieldID] = uuid.NewString()
	}
	if _, ok := row[table.FieldName]; !ok {
		row[table.FieldName] = ""
	}
	if _, ok := row[table.FieldEmail]; !ok {
		row[table.FieldEmail] = ""
	}

	if err := table.ValidateRow(row); err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	rows := append(s.rows.Rows(), row)
	if err := s.rows.ReplaceAll(r.Context(), rows); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, row)
}

// handleUpdateRow replaces a row in place. Validation failures reject
// the pending edit with 422 and commit nothing.
func (s *Server) handleUpdateRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var row table.Row
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	row[table.FieldID] = id

	if err := table.ValidateRow(row); err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	if !s.rowExists(id) {
		writeError(w, http.StatusNotFound, "row not found")
		return
	}

	if err := s.rows.Update(r.Context(), row); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// handleDeleteRow removes a row. Deleting an absent id still succeeds;
// the operation is idempotent.
func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.rows.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListColumns returns the ordered column definitions.
func (s *Server) handleListColumns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.columns.Columns())
}

// handleAddColumn appends a column definition at the end of the order.
func (s *Server) handleAddColumn(w http.ResponseWriter, r *http.Request) {
	var def table.ColumnDef
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if def.Key == "" {
		writeError(w, http.StatusBadRequest, "column key is required")
		return
	}
	if def.Label == "" {
		def.Label = def.Key
	}

	if err := s.columns.Add(r.Context(), def); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, table.ErrDuplicateColumn) {
			status = http.StatusConflict
		}
		s.respondError(w, r, err, status)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

// handleToggleColumn flips visibility of one column.
func (s *Server) handleToggleColumn(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := s.columns.ToggleVisibility(r.Context(), key); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.columns.Columns())
}

// handleReorderColumns replaces the whole ordered list. The client is
// the one translating a drag gesture into the new order.
func (s *Server) handleReorderColumns(w http.ResponseWriter, r *http.Request) {
	var order []table.ColumnDef
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.columns.Reorder(r.Context(), order); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s.columns.Columns())
}

func (s *Server) rowExists(id string) bool {
	for _, row := range s.rows.Rows() {
		if row.ID() == id {
			return true
		}
	}
	return false
}

// parseIntParam parses an integer query parameter with a default value
// and a lower bound.
func parseIntParam(r *http.Request, name string, defaultVal, min int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < min {
		return defaultVal
	}
	return i
}

func parseDir(dir string) table.SortDir {
	if dir == "desc" {
		return table.SortDesc
	}
	return table.SortAsc
}

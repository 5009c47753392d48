package web

// handlers_io.go implements the CSV interchange boundary: import of
// raw CSV text and export of the visible-column projection.

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gridstore/gridstore/internal/logging"
	"github.com/gridstore/gridstore/internal/table"
)

// ImportResponse reports a best-effort import: how many rows were
// taken, plus the collected per-row errors. Errors never abort an
// import, so both fields can be populated at once.
type ImportResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// handleImport parses CSV text from the request body (raw or the
// "file" part of a multipart form) and replaces the row collection
// with the result.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	text, err := readImportBody(r, s.cfg.Server.MaxImportSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "empty CSV payload")
		return
	}

	result := table.Parse(text)

	logger := logging.FromContext(r.Context())
	logger.Info("csv import parsed",
		"rows", len(result.Rows),
		"errors", len(result.Errors),
	)

	if err := s.rows.ReplaceAll(r.Context(), result.Rows); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	writeJSON(w, http.StatusOK, ImportResponse{
		Imported: len(result.Rows),
		Errors:   errs,
	})
}

// handleExport serializes all rows projected onto the visible columns
// as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	keys := s.columns.VisibleKeys()
	if len(keys) == 0 {
		writeError(w, http.StatusConflict, "no visible columns to export")
		return
	}

	text := table.Serialize(s.rows.Rows(), keys)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="export.csv"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	io.WriteString(w, text)
}

// readImportBody extracts CSV text from either a raw body or a
// multipart form's "file" part, bounded by maxSize.
func readImportBody(r *http.Request, maxSize int64) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return "", fmt.Errorf("invalid multipart form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("missing file part: %w", err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxSize))
		if err != nil {
			return "", fmt.Errorf("reading upload: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxSize))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(data), nil
}

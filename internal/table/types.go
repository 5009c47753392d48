// Package table implements the in-memory tabular data engine: the
// row/column data model, the derived-view pipeline (filter, sort,
// paginate), and the CSV interchange codec. It has no UI dependencies
// and is consumed by the web layer.
package table

import (
	"fmt"
	"strconv"
)

// Row is one record in the table. Values are either string or float64
// (the two scalar shapes JSON produces); a missing key means the field
// is absent. Every row carries the guaranteed keys "id", "name" and
// "email"; all other keys are dynamic and schema-free.
type Row map[string]any

// ID returns the row's unique identifier as a string.
func (r Row) ID() string {
	return FieldString(r[FieldID])
}

// Clone returns an independent shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Guaranteed and well-known field keys.
const (
	FieldID    = "id"
	FieldName  = "name"
	FieldEmail = "email"
	FieldAge   = "age"
	FieldRole  = "role"
)

// DefaultRole is the role assigned when a record carries none.
const DefaultRole = "Viewer"

// ColumnDef describes one display column. The position of a ColumnDef
// inside the registry's slice is itself the display order; there is no
// separate order field.
type ColumnDef struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
}

// SortDir is the direction of a sort.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ViewQuery is the transient query state feeding ComputeView. It is
// never persisted.
type ViewQuery struct {
	Search   string
	SortKey  string
	SortDir  SortDir
	Page     int // zero-based
	PageSize int // positive
}

// View is the filtered, sorted, paginated subset of rows computed for
// display at a given moment. TotalCount is the filtered pre-pagination
// length, used by the caller to compute the page count.
type View struct {
	Items      []Row
	TotalCount int
}

// FieldString converts a field value to its canonical string form.
// Absent values render as the empty string; numbers render in minimal
// decimal form so CSV round-trips are stable.
func FieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

// DefaultColumns is the built-in column snapshot used when persistence
// is empty or unreadable.
func DefaultColumns() []ColumnDef {
	return []ColumnDef{
		{Key: FieldID, Label: "ID", Visible: false},
		{Key: FieldName, Label: "Name", Visible: true},
		{Key: FieldEmail, Label: "Email", Visible: true},
		{Key: FieldAge, Label: "Age", Visible: true},
		{Key: FieldRole, Label: "Role", Visible: true},
	}
}

// DefaultRows is the built-in row snapshot used when persistence is
// empty or unreadable.
func DefaultRows() []Row {
	return []Row{
		{FieldID: "1", FieldName: "Alice Johnson", FieldEmail: "alice@example.com", FieldAge: float64(34), FieldRole: "Admin"},
		{FieldID: "2", FieldName: "Bob Smith", FieldEmail: "bob@example.com", FieldAge: float64(28), FieldRole: DefaultRole},
		{FieldID: "3", FieldName: "Carol Diaz", FieldEmail: "carol@example.com", FieldAge: float64(45), FieldRole: "Editor"},
	}
}

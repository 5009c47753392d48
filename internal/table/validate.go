package table

import (
	"errors"
	"fmt"
	"regexp"
)

// Pre-compiled regex for numeric validation (avoids recompilation on each call)
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ErrInvalidAge is returned when a pending edit carries a non-numeric
// age value.
var ErrInvalidAge = errors.New("age must be numeric")

// ValidateRow checks a pending add or edit before it commits. The only
// typed constraint in the schema-free model is that "age", when present
// as a string, must parse as a number. A rejected edit commits nothing;
// the caller keeps the in-progress state so the user can correct and
// retry.
func ValidateRow(row Row) error {
	v, ok := row[FieldAge]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return nil
	case string:
		if t == "" || numericRegex.MatchString(t) {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrInvalidAge, t)
	default:
		return fmt.Errorf("%w: unsupported value type %T", ErrInvalidAge, v)
	}
}

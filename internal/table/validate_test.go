package table

import (
	"errors"
	"testing"
)

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name    string
		age     any
		present bool
		wantErr bool
	}{
		{"absent age", nil, false, false},
		{"numeric age", float64(30), true, false},
		{"numeric string", "42", true, false},
		{"decimal string", "42.5", true, false},
		{"signed string", "-3", true, false},
		{"empty string", "", true, false},
		{"non-numeric string", "forty", true, true},
		{"trailing junk", "30x", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Row{FieldID: "1", FieldName: "A", FieldEmail: "a@x.com"}
			if tt.present {
				row[FieldAge] = tt.age
			}

			err := ValidateRow(row)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error for age %v", tt.age)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidAge) {
				t.Errorf("error %v is not ErrInvalidAge", err)
			}
		})
	}
}

func TestMapError_Codes(t *testing.T) {
	if got := MapError(ErrInvalidAge).Code; got != "VAL001" {
		t.Errorf("code = %q, want VAL001", got)
	}
	if got := MapError(ErrDuplicateColumn).Code; got != "COL001" {
		t.Errorf("code = %q, want COL001", got)
	}
	if got := MapError(errors.New("persist rows: disk full")).Code; got != "STORE002" {
		t.Errorf("code = %q, want STORE002", got)
	}
	if got := MapError(errors.New("mystery")).Code; got != "GEN001" {
		t.Errorf("code = %q, want GEN001", got)
	}
}

package table

// csv.go implements the CSV interchange codec: an RFC 4180 compatible
// reader/writer plus the row reconciliation rules applied on import.
//
// The codec is self-contained rather than built on encoding/csv because
// import must tolerate uneven field counts, skip blank lines, and keep
// per-row error collection exactly aligned with 1-based data row
// numbers. Parse never drops data: rows with missing required fields
// are still imported and the problem is reported beside them.

import (
	"fmt"
	"strings"
	"time"
)

// ParseResult holds the rows recovered from a CSV document and the
// errors collected along the way. Errors never abort an import.
type ParseResult struct {
	Rows   []Row
	Errors []string
}

// Parse decodes CSV text into reconciled rows. The first record is the
// header; every following record is mapped to the header by position.
// Empty lines are skipped. Unknown header columns are preserved
// verbatim as dynamic fields.
//
// Reconciliation per data row, in order: the row id is the raw "id"
// value when non-empty, otherwise a synthesized unique string; "name"
// and "email" default to empty strings; "age" defaults to numeric 0;
// "role" defaults to "Viewer". Every raw field is then merged back on
// top so a key present in the source always keeps its raw value. The
// one exception is an empty raw id, which is not allowed to erase the
// synthesized id (an empty cell in an "id" column would otherwise
// silently break store-wide uniqueness).
func Parse(text string) ParseResult {
	records := readRecords(text)
	if len(records) == 0 {
		return ParseResult{}
	}

	header := records[0]
	stamp := time.Now().UnixMilli()

	var result ParseResult
	for i, rec := range records[1:] {
		rowNum := i + 1 // 1-based among data rows, header excluded

		raw := make(map[string]string, len(header))
		for j, key := range header {
			if j < len(rec) {
				raw[key] = rec[j]
			}
		}

		if raw[FieldName] == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing required field %q", rowNum, FieldName))
		}
		if raw[FieldEmail] == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing required field %q", rowNum, FieldEmail))
		}

		row := Row{
			FieldName:  raw[FieldName],
			FieldEmail: raw[FieldEmail],
			FieldAge:   float64(0),
			FieldRole:  DefaultRole,
		}
		if raw[FieldID] != "" {
			row[FieldID] = raw[FieldID]
		} else {
			row[FieldID] = fmt.Sprintf("%d-%d", stamp, rowNum)
		}

		for k, v := range raw {
			if k == FieldID && v == "" {
				continue
			}
			row[k] = v
		}

		result.Rows = append(result.Rows, row)
	}
	return result
}

// Serialize encodes rows as CSV text, projecting each row onto the
// given keys in order. The first line is a header of the keys. Fields
// containing the delimiter, a quote, or a line break are quoted with
// interior quotes doubled.
func Serialize(rows []Row, keys []string) string {
	var b strings.Builder

	for i, key := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeField(&b, key)
	}
	b.WriteByte('\n')

	for _, row := range rows {
		for i, key := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeField(&b, FieldString(row[key]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// writeField writes one CSV field, quoting when required by RFC 4180.
func writeField(b *strings.Builder, field string) {
	if !strings.ContainsAny(field, ",\"\r\n") {
		b.WriteString(field)
		return
	}
	b.WriteByte('"')
	for i := 0; i < len(field); i++ {
		if field[i] == '"' {
			b.WriteByte('"')
		}
		b.WriteByte(field[i])
	}
	b.WriteByte('"')
}

// readRecords scans CSV text into records of fields. Quoted fields may
// contain delimiters, doubled quotes, and line breaks. CRLF and bare LF
// both terminate a record; records with no content at all (empty lines)
// are dropped.
func readRecords(text string) [][]string {
	var (
		records [][]string
		record  []string
		field   strings.Builder
		quoted  bool
	)

	endField := func() {
		record = append(record, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		// A record from an empty line is a single empty field; skip it.
		if len(record) == 1 && record[0] == "" {
			record = nil
			return
		}
		records = append(records, record)
		record = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if quoted {
			switch c {
			case '"':
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					quoted = false
				}
			default:
				field.WriteByte(c)
			}
			continue
		}
		switch c {
		case '"':
			quoted = true
		case ',':
			endField()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRecord()
		case '\n':
			endRecord()
		default:
			field.WriteByte(c)
		}
	}

	// Final record when the text does not end with a newline.
	if field.Len() > 0 || len(record) > 0 {
		endRecord()
	}
	return records
}

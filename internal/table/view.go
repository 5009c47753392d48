package table

// view.go computes the derived view: filter, then sort, then paginate.
// ComputeView is a pure function of its inputs and never mutates the
// rows it is given.

import (
	"sort"
	"strings"
)

// ComputeView applies the three view stages in strict order.
//
// Filter: when the trimmed, lower-cased search text is non-empty, a row
// survives iff any of its field values, rendered as a lower-cased
// string, contains the text as a substring.
//
// Sort: applied only when SortKey is set. Absent values sort first
// ascending and last descending. Two numbers compare numerically, two
// strings lexicographically, and mixed types through string coercion.
//
// Paginate: the slice [Page*PageSize, (Page+1)*PageSize) of the
// filtered, sorted sequence. TotalCount is the filtered length before
// pagination.
func ComputeView(rows []Row, q ViewQuery) View {
	filtered := filterRows(rows, q.Search)

	if q.SortKey != "" {
		sortRows(filtered, q.SortKey, q.SortDir)
	}

	total := len(filtered)
	start := q.Page * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}

	return View{Items: filtered[start:end], TotalCount: total}
}

func filterRows(rows []Row, search string) []Row {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		out := make([]Row, len(rows))
		copy(out, rows)
		return out
	}

	var out []Row
	for _, row := range rows {
		for _, v := range row {
			if strings.Contains(strings.ToLower(FieldString(v)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func sortRows(rows []Row, key string, dir SortDir) {
	desc := dir == SortDesc
	sort.SliceStable(rows, func(i, j int) bool {
		c := compareValues(rows[i][key], rows[j][key])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// compareValues orders two field values. Absent (nil) sorts before any
// present value; the caller inverts the sign for descending order,
// which moves absent values to the end there.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(FieldString(a), FieldString(b))
}

package emotion

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Table is a column-named tabular dataset. Cells hold nil (missing), string
// or float64 values.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of column or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether column exists.
func (t *Table) Has(column string) bool { return t.Index(column) >= 0 }

// Require returns the index of column or a ColumnNotFoundError.
func (t *Table) Require(column string) (int, error) {
	idx := t.Index(column)
	if idx < 0 {
		return -1, &ColumnNotFoundError{Column: column, Available: append([]string(nil), t.Columns...)}
	}
	return idx, nil
}

// Clone deep-copies the table structure. Cell values are immutable scalars.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cp := make([]any, len(t.Columns))
		copy(cp, row)
		out.Rows[i] = cp
	}
	return out
}

// AppendRow adds a row, padding or trimming it to the column count.
func (t *Table) AppendRow(values ...any) {
	row := make([]any, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

// AddColumn appends a column filled with fill and returns its index. An
// existing column is left untouched.
func (t *Table) AddColumn(name string, fill any) int {
	if idx := t.Index(name); idx >= 0 {
		return idx
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(padRow(t.Rows[i], len(t.Columns)-1), fill)
	}
	return len(t.Columns) - 1
}

// DropColumn removes a column if present.
func (t *Table) DropColumn(name string) {
	idx := t.Index(name)
	if idx < 0 {
		return
	}
	t.Columns = append(t.Columns[:idx:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		row = padRow(row, len(t.Columns)+1)
		t.Rows[i] = append(row[:idx:idx], row[idx+1:]...)
	}
}

// Value returns the cell at row/col or nil when out of range.
func (t *Table) Value(row, col int) any {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][col]
}

// Set writes a cell, growing the row if needed.
func (t *Table) Set(row, col int, v any) {
	t.Rows[row] = padRow(t.Rows[row], len(t.Columns))
	t.Rows[row][col] = v
}

// Column returns the values of column, or nil when it does not exist.
func (t *Table) Column(name string) []any {
	idx := t.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Value(i, idx)
	}
	return out
}

func padRow(row []any, n int) []any {
	for len(row) < n {
		row = append(row, nil)
	}
	return row
}

// IsMissing reports whether v counts as a missing value.
func IsMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// ToFloat converts a cell to float64. Strings are parsed; missing values fail.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// FormatValue renders a cell as text for CSV output and display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case Polarity:
		return string(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

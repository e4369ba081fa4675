package statistics

import (
	"errors"
	"fmt"
	"strings"
)

// TotalLabel names margin rows and columns.
const TotalLabel = "합계"

// Frame is a small result table with a (possibly multi-level) row index.
type Frame struct {
	IndexNames []string
	Columns    []string
	Index      [][]string
	Values     [][]any
}

// NamedFrame is a Frame with the sheet name it is exported under.
type NamedFrame struct {
	Name  string
	Frame *Frame
}

func newFrame(indexNames []string, columns ...string) *Frame {
	return &Frame{
		IndexNames: append([]string(nil), indexNames...),
		Columns:    append([]string(nil), columns...),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Index) }

// AddRow appends a row.
func (f *Frame) AddRow(index []string, values ...any) {
	f.Index = append(f.Index, append([]string(nil), index...))
	row := make([]any, len(f.Columns))
	copy(row, values)
	f.Values = append(f.Values, row)
}

// Lookup returns the value in column for the row whose index equals key.
func (f *Frame) Lookup(column string, key ...string) (any, bool) {
	col := -1
	for i, c := range f.Columns {
		if c == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}
	for r, idx := range f.Index {
		if equalKeys(idx, key) {
			return f.Values[r][col], true
		}
	}
	return nil, false
}

// Float is Lookup for numeric cells.
func (f *Frame) Float(column string, key ...string) (float64, bool) {
	v, ok := f.Lookup(column, key...)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}

// Join places the columns of other next to f. Both frames must share the same
// index in the same order.
func Join(f, other *Frame) (*Frame, error) {
	if f.Len() != other.Len() {
		return nil, fmt.Errorf("join frames: %d rows vs %d", f.Len(), other.Len())
	}
	out := newFrame(f.IndexNames, append(append([]string(nil), f.Columns...), other.Columns...)...)
	for i := range f.Index {
		if !equalKeys(f.Index[i], other.Index[i]) {
			return nil, errors.New("join frames: index mismatch")
		}
		out.AddRow(f.Index[i], append(append([]any(nil), f.Values[i]...), other.Values[i]...)...)
	}
	return out, nil
}

// Header returns the index names followed by the columns.
func (f *Frame) Header() []string {
	return append(append([]string(nil), f.IndexNames...), f.Columns...)
}

// String renders the frame as tab separated text.
func (f *Frame) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(f.Header(), "\t"))
	b.WriteByte('\n')
	for i := range f.Index {
		cells := append([]string(nil), f.Index[i]...)
		for _, v := range f.Values[i] {
			cells = append(cells, formatCell(v))
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", x)
	}
	return fmt.Sprint(v)
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

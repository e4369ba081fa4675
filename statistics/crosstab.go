package statistics

import (
	"errors"
	"sort"

	"github.com/01Chungee10/SA/emotion"
)

// MultiLevelCrosstab counts rows per combination of groupColumns (rows) and
// distinct valueColumn values (columns), with a total row and column. With
// normalize each cell becomes its share of the row total in percent, rounded
// to one decimal, and the total column is exactly 100.
func (e *Engine) MultiLevelCrosstab(t *emotion.Table, groupColumns []string, valueColumn string, normalize bool) (*Frame, error) {
	if len(groupColumns) == 0 {
		return nil, errors.New("crosstab needs at least one group column")
	}
	vi, err := t.Require(valueColumn)
	if err != nil {
		return nil, err
	}
	groups, err := partition(t, groupColumns)
	if err != nil {
		return nil, err
	}

	type row struct {
		key    []string
		counts map[string]int
		total  int
	}
	seen := make(map[string]bool)
	var rows []row
	for _, g := range groups {
		rw := row{key: g.key, counts: make(map[string]int)}
		for _, r := range g.rows {
			v := t.Value(r, vi)
			if emotion.IsMissing(v) {
				continue
			}
			s := emotion.FormatValue(v)
			rw.counts[s]++
			rw.total++
			seen[s] = true
		}
		if rw.total > 0 {
			rows = append(rows, rw)
		}
	}

	columns := e.crosstabColumns(valueColumn, seen)
	out := newFrame(groupColumns, append(append([]string(nil), columns...), TotalLabel)...)
	colTotals := make([]int, len(columns))
	grand := 0
	emit := func(key []string, counts []int, total int) {
		cells := make([]any, len(columns)+1)
		for i, n := range counts {
			if normalize {
				cells[i] = roundTo(float64(n)/float64(total)*100, 1)
			} else {
				cells[i] = float64(n)
			}
		}
		if normalize {
			cells[len(columns)] = 100.0
		} else {
			cells[len(columns)] = float64(total)
		}
		out.AddRow(key, cells...)
	}
	for _, rw := range rows {
		counts := make([]int, len(columns))
		for i, c := range columns {
			counts[i] = rw.counts[c]
			colTotals[i] += rw.counts[c]
		}
		grand += rw.total
		emit(rw.key, counts, rw.total)
	}
	if grand > 0 {
		marginKey := make([]string, len(groupColumns))
		marginKey[0] = TotalLabel
		emit(marginKey, colTotals, grand)
	}
	return out, nil
}

// crosstabColumns orders the value columns. The polarity column always lists
// every polarity in display order; other columns are sorted.
func (e *Engine) crosstabColumns(valueColumn string, seen map[string]bool) []string {
	if valueColumn == emotion.ColumnPolarity {
		cols := make([]string, 0, len(emotion.Polarities)+len(seen))
		known := make(map[string]bool)
		for _, p := range emotion.Polarities {
			cols = append(cols, string(p))
			known[string(p)] = true
		}
		var extra []string
		for v := range seen {
			if !known[v] {
				extra = append(extra, v)
			}
		}
		sort.Slice(extra, func(i, j int) bool { return compareKeys(extra[i], extra[j]) < 0 })
		return append(cols, extra...)
	}
	cols := make([]string, 0, len(seen))
	for v := range seen {
		cols = append(cols, v)
	}
	sort.Slice(cols, func(i, j int) bool { return compareKeys(cols[i], cols[j]) < 0 })
	return cols
}

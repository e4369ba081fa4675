package statistics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/01Chungee10/SA/emotion"
)

// WholeTableKey is the index label used when no group columns are given.
const WholeTableKey = "전체"

// GroupedResult is the outcome of GroupedStatistics. Numeric is false when
// the value column was treated as categorical; Warning then explains why.
type GroupedResult struct {
	GroupColumns []string
	ValueColumn  string
	Numeric      bool
	Warning      string
	Frame        *Frame
}

type group struct {
	key  []string
	rows []int
}

// partition splits the table by the values of columns. Rows with a missing
// key value are dropped and only combinations present in the data appear.
func partition(t *emotion.Table, columns []string) ([]group, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		col, err := t.Require(c)
		if err != nil {
			return nil, err
		}
		idx[i] = col
	}
	if len(columns) == 0 {
		rows := make([]int, t.Len())
		for i := range rows {
			rows[i] = i
		}
		return []group{{key: []string{WholeTableKey}, rows: rows}}, nil
	}
	byKey := make(map[string]*group)
	var keys [][]string
	for r := range t.Rows {
		key := make([]string, len(idx))
		missing := false
		for i, col := range idx {
			v := t.Value(r, col)
			if emotion.IsMissing(v) {
				missing = true
				break
			}
			key[i] = emotion.FormatValue(v)
		}
		if missing {
			continue
		}
		k := strings.Join(key, "\x00")
		g, ok := byKey[k]
		if !ok {
			g = &group{key: key}
			byKey[k] = g
			keys = append(keys, key)
		}
		g.rows = append(g.rows, r)
	}
	sortKeyTuples(keys)
	out := make([]group, len(keys))
	for i, key := range keys {
		out[i] = *byKey[strings.Join(key, "\x00")]
	}
	return out, nil
}

// GroupedStatistics aggregates valueColumn per combination of groupColumns.
// A numeric value column yields count, mean, std, min, max and median rounded
// to two decimals; otherwise only the count is produced and Warning is set.
func (e *Engine) GroupedStatistics(t *emotion.Table, groupColumns []string, valueColumn string) (*GroupedResult, error) {
	vi, err := t.Require(valueColumn)
	if err != nil {
		return nil, err
	}
	groups, err := partition(t, groupColumns)
	if err != nil {
		return nil, err
	}
	indexNames := groupColumns
	if len(indexNames) == 0 {
		indexNames = []string{"그룹"}
	}
	res := &GroupedResult{
		GroupColumns: append([]string(nil), groupColumns...),
		ValueColumn:  valueColumn,
		Numeric:      IsNumericColumn(t.Column(valueColumn)),
	}
	if !res.Numeric {
		res.Warning = fmt.Sprintf("'%s' 컬럼은 숫자형이 아니므로 빈도 분석만 수행합니다", valueColumn)
		e.logf("%s", res.Warning)
		res.Frame = newFrame(indexNames, "개수")
		for _, g := range groups {
			n := 0
			for _, r := range g.rows {
				if !emotion.IsMissing(t.Value(r, vi)) {
					n++
				}
			}
			res.Frame.AddRow(g.key, n)
		}
		return res, nil
	}

	res.Frame = newFrame(indexNames, "개수", "평균", "표준편차", "최소값", "최대값", "중앙값")
	for _, g := range groups {
		values := make([]float64, 0, len(g.rows))
		for _, r := range g.rows {
			if v, ok := emotion.ToFloat(t.Value(r, vi)); ok {
				values = append(values, v)
			}
		}
		res.Frame.AddRow(g.key, aggregate(values)...)
	}
	return res, nil
}

// aggregate returns count, mean, std, min, max and median. Undefined values
// (empty groups, std of a single value) are reported as 0.
func aggregate(values []float64) []any {
	if len(values) == 0 {
		return []any{0, 0.0, 0.0, 0.0, 0.0, 0.0}
	}
	mean, std := stat.MeanStdDev(values, nil)
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return []any{
		len(values),
		zeroIfNaN(roundTo(mean, 2)),
		zeroIfNaN(roundTo(std, 2)),
		roundTo(floats.Min(values), 2),
		roundTo(floats.Max(values), 2),
		roundTo(quantile(sorted, 0.5), 2),
	}
}

func zeroIfNaN(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

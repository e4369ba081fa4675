// Package statistics computes descriptive and grouped statistics over
// analyzed emotion tables and exports them as spreadsheet workbooks.
package statistics

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/01Chungee10/SA/emotion"
)

// ErrNonNumeric is returned when a numeric statistic is requested for a
// non-numeric column.
var ErrNonNumeric = errors.New("column is not numeric")

// SchemaValidationError lists required columns missing from a table.
type SchemaValidationError struct {
	Missing []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("필수 컬럼이 없습니다: %s", strings.Join(e.Missing, ", "))
}

// Default intensity bin edges and labels.
var (
	DefaultBins      = []float64{0, 0.2, 0.4, 0.6, 0.8, 1.0}
	DefaultBinLabels = []string{"0-0.2", "0.2-0.4", "0.4-0.6", "0.6-0.8", "0.8-1.0"}
)

// Overall statistic row labels.
var overallRows = []string{"개수", "평균", "표준편차", "최소값", "25%", "중앙값", "75%", "최대값", "분산", "최빈값"}

// Engine is stateless apart from its label set and logger; every method works
// on the table it is given and never mutates it.
type Engine struct {
	labels emotion.LabelSet
	logger *log.Logger
}

// NewEngine constructs an Engine.
func NewEngine(labels emotion.LabelSet, logger *log.Logger) *Engine {
	return &Engine{labels: labels, logger: logger}
}

// ValidateSchema requires the polarity and intensity columns.
func (e *Engine) ValidateSchema(t *emotion.Table) error {
	var missing []string
	for _, col := range []string{emotion.ColumnPolarity, emotion.ColumnIntensity} {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaValidationError{Missing: missing}
	}
	return nil
}

// OverallStatistics describes valueColumn: count, mean, sample standard
// deviation, min, quartiles, max, sample variance and mode, each rounded to
// two decimals. Undefined values are nil.
func (e *Engine) OverallStatistics(t *emotion.Table, valueColumn string) (*Frame, error) {
	values, err := numericColumn(t, valueColumn)
	if err != nil {
		return nil, err
	}
	out := newFrame([]string{"통계량"}, valueColumn+" 통계량")
	n := len(values)
	cells := make([]any, len(overallRows))
	cells[0] = float64(n)
	if n > 0 {
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		mean, _ := stats.Mean(values)
		std, _ := stats.StandardDeviationSample(values)
		variance, _ := stats.SampleVariance(values)
		minV, _ := stats.Min(values)
		maxV, _ := stats.Max(values)
		median, _ := stats.Median(values)
		for i, v := range []float64{mean, std, minV, quantile(sorted, 0.25), median, quantile(sorted, 0.75), maxV, variance, mode(values)} {
			cells[i+1] = nanToNil(roundTo(v, 2))
		}
	}
	for i, row := range overallRows {
		out.AddRow([]string{row}, cells[i])
	}
	return out, nil
}

// EmotionDistribution counts the top-label column (falling back to the
// polarity column) over rows with an intensity value. Rows are sorted by
// descending frequency and followed by a total row.
func (e *Engine) EmotionDistribution(t *emotion.Table) (counts, percents *Frame, err error) {
	labelCol := emotion.ColumnTopLabel
	if !t.Has(labelCol) {
		labelCol = emotion.ColumnPolarity
	}
	li, err := t.Require(labelCol)
	if err != nil {
		return nil, nil, err
	}
	ii, err := t.Require(emotion.ColumnIntensity)
	if err != nil {
		return nil, nil, err
	}
	freq := make(map[string]int)
	total := 0
	for r := range t.Rows {
		label, value := t.Value(r, li), t.Value(r, ii)
		if emotion.IsMissing(label) || emotion.IsMissing(value) {
			continue
		}
		freq[emotion.FormatValue(label)]++
		total++
	}
	type entry struct {
		label string
		n     int
	}
	entries := make([]entry, 0, len(freq))
	for label, n := range freq {
		entries = append(entries, entry{label, n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].n != entries[j].n {
			return entries[i].n > entries[j].n
		}
		return entries[i].label < entries[j].label
	})

	index := []string{"감정 분류"}
	counts = newFrame(index, "빈도")
	percents = newFrame(index, "비율(%)")
	for _, en := range entries {
		counts.AddRow([]string{en.label}, en.n)
		percents.AddRow([]string{en.label}, roundTo(float64(en.n)/float64(total)*100, 1))
	}
	counts.AddRow([]string{TotalLabel}, total)
	percents.AddRow([]string{TotalLabel}, 100.0)
	return counts, percents, nil
}

// BinResult holds the bin assigned to every row plus count and percentage
// tables. Rows outside every bin (or missing) are assigned "".
type BinResult struct {
	Assigned []string
	Counts   *Frame
	Percents *Frame
}

// IntensityBins assigns each value of column to a right-inclusive bin
// (edges[i], edges[i+1]]. A value equal to the first edge is not binned.
func (e *Engine) IntensityBins(t *emotion.Table, column string, edges []float64, labels []string) (*BinResult, error) {
	if len(edges) == 0 {
		edges, labels = DefaultBins, DefaultBinLabels
	}
	if len(edges) < 2 || len(labels) != len(edges)-1 {
		return nil, fmt.Errorf("bins: %d edges need %d labels, got %d", len(edges), len(edges)-1, len(labels))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("bins must increase monotonically: %v", edges)
		}
	}
	col, err := t.Require(column)
	if err != nil {
		return nil, err
	}
	res := &BinResult{Assigned: make([]string, t.Len())}
	counts := make([]int, len(labels))
	binned := 0
	for r := range t.Rows {
		v, ok := emotion.ToFloat(t.Value(r, col))
		if !ok {
			continue
		}
		for i := 0; i < len(labels); i++ {
			if v > edges[i] && v <= edges[i+1] {
				res.Assigned[r] = labels[i]
				counts[i]++
				binned++
				break
			}
		}
	}
	index := []string{"강도 구간"}
	res.Counts = newFrame(index, "빈도")
	res.Percents = newFrame(index, "비율(%)")
	for i, label := range labels {
		pct := 0.0
		if binned > 0 {
			pct = roundTo(float64(counts[i])/float64(binned)*100, 1)
		}
		res.Counts.AddRow([]string{label}, counts[i])
		res.Percents.AddRow([]string{label}, pct)
	}
	totalPct := 0.0
	if binned > 0 {
		totalPct = 100.0
	}
	res.Counts.AddRow([]string{TotalLabel}, binned)
	res.Percents.AddRow([]string{TotalLabel}, totalPct)
	return res, nil
}

// IsNumericColumn reports whether the first present value is a number or a
// string that parses as one. Later values are not inspected. A column with no
// present value counts as numeric.
func IsNumericColumn(values []any) bool {
	for _, v := range values {
		if emotion.IsMissing(v) {
			continue
		}
		_, ok := emotion.ToFloat(v)
		return ok
	}
	return true
}

func numericColumn(t *emotion.Table, column string) ([]float64, error) {
	if _, err := t.Require(column); err != nil {
		return nil, err
	}
	raw := t.Column(column)
	if !IsNumericColumn(raw) {
		return nil, fmt.Errorf("%s: %w", column, ErrNonNumeric)
	}
	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		if f, ok := emotion.ToFloat(v); ok {
			values = append(values, f)
		}
	}
	return values, nil
}

func (e *Engine) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

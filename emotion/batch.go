package emotion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BatchOptions controls a batch run.
type BatchOptions struct {
	TextColumn  string
	Strategy    Strategy
	ReplaceNone bool
	// Source identifies where the table came from; it is only recorded in the
	// provenance and used to name the persisted file.
	Source   string
	Progress func(Progress)
}

// BatchResult is the outcome of a batch run. Table is the augmented copy and
// Original the untouched input.
type BatchResult struct {
	Table          *Table
	Original       *Table
	Narrative      string
	PolarityCounts map[Polarity]int
	LabelCounts    map[string]int
	Analyzed       int
	Empty          int
	Errors         int
	Provenance     Provenance
}

// TopLabels returns the n most frequent labels, ties by label name.
func (r *BatchResult) TopLabels(n int) []LabelCount {
	return topCounts(r.LabelCounts, n)
}

// LabelCount pairs a label with its frequency.
type LabelCount struct {
	Label string
	Count int
}

// Engine runs the Analyzer over every row of a table.
type Engine struct {
	analyzer *Analyzer
	logger   *log.Logger
	now      func() time.Time
}

// NewEngine constructs a batch Engine.
func NewEngine(analyzer *Analyzer, logger *log.Logger) *Engine {
	return &Engine{analyzer: analyzer, logger: logger, now: time.Now}
}

// Run analyzes table row by row in order. A missing text column fails the
// whole call; a failing row is recorded with the error marker.
func (e *Engine) Run(ctx context.Context, table *Table, opts BatchOptions) (*BatchResult, error) {
	if table == nil {
		return nil, errors.New("table is nil")
	}
	textIdx, err := table.Require(opts.TextColumn)
	if err != nil {
		return nil, err
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategySkipEmpty
	}
	if opts.Strategy != StrategySkipEmpty && opts.Strategy != StrategySentinelFill {
		return nil, fmt.Errorf("unknown batch strategy %q", opts.Strategy)
	}

	start := e.now()
	original := table.Clone()
	out := table.Clone()
	e.clearOutputColumns(out, opts.TextColumn)
	topIdx := out.AddColumn(ColumnTopLabel, nil)
	intensityIdx := out.AddColumn(ColumnIntensity, nil)
	polarityIdx := out.AddColumn(ColumnPolarity, nil)
	labels := e.analyzer.Labels().Display(opts.ReplaceNone)
	labelIdx := make([]int, len(labels))
	for i, label := range labels {
		labelIdx[i] = out.AddColumn(label, nil)
	}

	res := &BatchResult{
		Table:          out,
		Original:       original,
		PolarityCounts: make(map[Polarity]int, len(Polarities)),
		LabelCounts:    make(map[string]int),
		Provenance: Provenance{
			Source:     opts.Source,
			RunID:      uuid.NewString(),
			TextColumn: opts.TextColumn,
			Strategy:   opts.Strategy,
			StartedAt:  start,
		},
	}

	total := out.Len()
	interval := total / 10
	if interval < 1 {
		interval = 1
	}
	var narrative strings.Builder
	fmt.Fprintf(&narrative, "총 %d개 행 분석 시작 (텍스트 컬럼: %s)\n", total, opts.TextColumn)
	e.logf("감정 분석 시작: %d행, 컬럼=%s, 전략=%s", total, opts.TextColumn, opts.Strategy)

	for i := 0; i < total; i++ {
		row, empty, err := e.analyzer.Evaluate(ctx, out.Value(i, textIdx), opts.ReplaceNone)
		switch {
		case err != nil:
			e.logf("행 %d 분석 실패: %v", i+1, err)
			row = e.analyzer.ErrorResult(opts.ReplaceNone)
			res.Errors++
		case empty && opts.Strategy == StrategySkipEmpty:
			res.Empty++
			e.report(opts, &narrative, i, total, interval, start)
			continue
		case empty:
			res.Empty++
			res.count(row)
		default:
			res.Analyzed++
			res.count(row)
		}
		out.Set(i, topIdx, row.TopLabel)
		out.Set(i, intensityIdx, row.TopScore)
		out.Set(i, polarityIdx, string(row.Polarity))
		for j, label := range labels {
			out.Set(i, labelIdx[j], row.Scores[label])
		}
		e.report(opts, &narrative, i, total, interval, start)
	}

	res.Provenance.FinishedAt = e.now()
	elapsed := res.Provenance.FinishedAt.Sub(start)
	fmt.Fprintf(&narrative, "분석 완료: %d개 분석, 빈 행 %d개, 오류 %d개 (%.1f초)\n",
		res.Analyzed, res.Empty, res.Errors, elapsed.Seconds())
	narrative.WriteString(res.summary())
	res.Narrative = narrative.String()
	e.logf("감정 분석 완료: %d행 (%.1f초)", total, elapsed.Seconds())
	return res, nil
}

// clearOutputColumns blanks derived and label columns already present in t,
// leaving the text column alone.
func (e *Engine) clearOutputColumns(t *Table, textColumn string) {
	names := append([]string{ColumnTopLabel, ColumnIntensity, ColumnPolarity}, e.analyzer.Labels().Labels()...)
	names = append(names, AlternateSentinel)
	for _, name := range names {
		idx := t.Index(name)
		if idx < 0 || name == textColumn {
			continue
		}
		for r := range t.Rows {
			t.Set(r, idx, nil)
		}
	}
}

func (e *Engine) report(opts BatchOptions, narrative *strings.Builder, i, total, interval int, start time.Time) {
	done := i + 1
	if done%interval != 0 && done != total {
		return
	}
	elapsed := e.now().Sub(start)
	remaining := time.Duration(float64(elapsed) / float64(done) * float64(total-done))
	p := Progress{
		Percent:   float64(done) / float64(total) * 100,
		Processed: done,
		Total:     total,
		Elapsed:   elapsed,
		Remaining: remaining,
	}
	narrative.WriteString(p.String())
	narrative.WriteByte('\n')
	if opts.Progress != nil {
		opts.Progress(p)
	}
}

func (r *BatchResult) count(row RowResult) {
	r.PolarityCounts[row.Polarity]++
	r.LabelCounts[row.TopLabel]++
}

func (r *BatchResult) summary() string {
	counted := 0
	for _, n := range r.PolarityCounts {
		counted += n
	}
	var b strings.Builder
	b.WriteString("\n감정 분류 통계:\n")
	for _, p := range Polarities {
		n := r.PolarityCounts[p]
		fmt.Fprintf(&b, "  %s: %d개 (%.1f%%)\n", p, n, percent(n, counted))
	}
	b.WriteString("\n주요 감정 Top 5:\n")
	for i, lc := range r.TopLabels(5) {
		fmt.Fprintf(&b, "  %d. %s: %d개 (%.1f%%)\n", i+1, lc.Label, lc.Count, percent(lc.Count, counted))
	}
	return b.String()
}

func topCounts(counts map[string]int, n int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for label, c := range counts {
		out = append(out, LabelCount{Label: label, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func (e *Engine) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}

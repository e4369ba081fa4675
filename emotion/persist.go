package emotion

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	resultFileInfix    = "_감정분석결과_"
	fallbackResultStem = "분석결과"
	timestampLayout    = "20060102150405"
)

// Persister reconciles analyzed tables to the full label schema and writes
// them as CSV files.
type Persister struct {
	labels LabelSet
	dir    string
	logger *log.Logger
	now    func() time.Time
}

// NewPersister writes results into dir.
func NewPersister(labels LabelSet, dir string, logger *log.Logger) *Persister {
	if dir == "" {
		dir = defaultOutputDir
	}
	return &Persister{labels: labels, dir: dir, logger: logger, now: time.Now}
}

// Dir returns the output directory.
func (p *Persister) Dir() string { return p.dir }

// Reconcile returns a copy of t holding every label column. With replaceNone
// the sentinel column is merged into the alternate by element-wise maximum and
// dropped, and sentinel top labels are renamed. Reconcile is idempotent.
func (p *Persister) Reconcile(t *Table, replaceNone bool) *Table {
	out := t.Clone()
	sentinel := p.labels.Sentinel()
	if replaceNone {
		mergeSentinel(out, sentinel, AlternateSentinel)
		if idx := out.Index(ColumnTopLabel); idx >= 0 {
			for i := range out.Rows {
				if s, ok := out.Value(i, idx).(string); ok && s == sentinel {
					out.Set(i, idx, AlternateSentinel)
				}
			}
		}
	}
	for _, label := range p.labels.Display(replaceNone) {
		out.AddColumn(label, 0.0)
	}
	return orderColumns(out, p.labels.Display(replaceNone))
}

// Save reconciles t and writes it as {stem}_감정분석결과_{timestamp}.csv. A
// write failure is logged and returned as a *PersistenceError; the table
// itself is never modified.
func (p *Persister) Save(t *Table, source string, replaceNone bool) (string, error) {
	path := filepath.Join(p.dir, ResultFileName(source, p.now()))
	reconciled := p.Reconcile(t, replaceNone)
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		p.logf("결과 저장 실패: %v", err)
		return "", &PersistenceError{Path: path, Err: fmt.Errorf("create output dir: %w", err)}
	}
	if err := WriteCSV(path, reconciled); err != nil {
		p.logf("결과 저장 실패: %v", err)
		return "", &PersistenceError{Path: path, Err: err}
	}
	p.logf("분석 결과 저장: %s", path)
	return path, nil
}

// ResultFileName derives the result file name from the source path. Sources
// that are not existing files use a fixed stem.
func ResultFileName(source string, ts time.Time) string {
	return fileStem(source) + resultFileInfix + ts.Format(timestampLayout) + ".csv"
}

func fileStem(source string) string {
	if source == "" {
		return fallbackResultStem
	}
	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return fallbackResultStem
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func mergeSentinel(t *Table, sentinel, alternate string) {
	src := t.Index(sentinel)
	if src < 0 {
		return
	}
	dst := t.Index(alternate)
	if dst < 0 {
		t.Columns[src] = alternate
		return
	}
	for i := range t.Rows {
		a, aok := ToFloat(t.Value(i, dst))
		b, bok := ToFloat(t.Value(i, src))
		switch {
		case aok && bok:
			if b > a {
				a = b
			}
			t.Set(i, dst, a)
		case bok:
			t.Set(i, dst, b)
		}
	}
	t.DropColumn(sentinel)
}

// orderColumns puts source columns first, then the derived columns, then the
// labels in set order.
func orderColumns(t *Table, labels []string) *Table {
	tail := make(map[string]bool, len(labels)+3)
	for _, c := range derivedColumns {
		tail[c] = true
	}
	for _, l := range labels {
		tail[l] = true
	}
	order := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !tail[c] {
			order = append(order, c)
		}
	}
	for _, c := range derivedColumns {
		if t.Has(c) {
			order = append(order, c)
		}
	}
	order = append(order, labels...)

	out := NewTable(order...)
	src := make([]int, len(order))
	for i, c := range order {
		src[i] = t.Index(c)
	}
	for r := range t.Rows {
		row := make([]any, len(order))
		for i, idx := range src {
			row[i] = t.Value(r, idx)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

var derivedColumns = []string{ColumnTopLabel, ColumnIntensity, ColumnPolarity}

func (p *Persister) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

package emotion

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Strategy selects how a batch run treats rows with blank text.
type Strategy string

const (
	// StrategySkipEmpty leaves derived fields blank for empty rows.
	StrategySkipEmpty Strategy = "skip"
	// StrategySentinelFill writes the sentinel result for empty rows.
	StrategySentinelFill Strategy = "sentinel"
)

// ScoreVector maps a label to the model's intensity for it.
type ScoreVector map[string]float64

// Clone returns a copy of the vector.
func (v ScoreVector) Clone() ScoreVector {
	out := make(ScoreVector, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// LabelScore is one entry of a sorted score listing.
type LabelScore struct {
	Label string
	Score float64
}

// Sorted returns the scores ordered by descending score, ties by label order in set.
func (v ScoreVector) Sorted(set LabelSet) []LabelScore {
	out := make([]LabelScore, 0, len(v))
	for label, score := range v {
		out = append(out, LabelScore{Label: label, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return rankOf(set, out[i].Label) < rankOf(set, out[j].Label)
	})
	return out
}

func rankOf(set LabelSet, label string) int {
	if i := set.IndexOf(label); i >= 0 {
		return i
	}
	if label == AlternateSentinel {
		return set.IndexOf(set.Sentinel())
	}
	return set.Len()
}

// RowResult is the derived outcome for a single analyzed text.
type RowResult struct {
	TopLabel string
	TopScore float64
	Polarity Polarity
	Scores   ScoreVector
}

// Progress is reported periodically during a batch run.
type Progress struct {
	Percent   float64
	Processed int
	Total     int
	Elapsed   time.Duration
	Remaining time.Duration
}

// String renders the progress line used in narratives and logs.
func (p Progress) String() string {
	return fmt.Sprintf("진행: %.1f%% (%d/%d) - 예상 남은 시간: %.1f초",
		p.Percent, p.Processed, p.Total, p.Remaining.Seconds())
}

// Provenance records where a batch result came from.
type Provenance struct {
	Source     string
	RunID      string
	TextColumn string
	Strategy   Strategy
	StartedAt  time.Time
	FinishedAt time.Time
}

// ErrInference is wrapped by every inference failure.
var ErrInference = errors.New("inference failed")

// ColumnNotFoundError reports a required column that is absent from a table.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

// PersistenceError reports a failed result write.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save result %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

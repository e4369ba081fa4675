package emotion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
)

// Analyzer turns a single text into a RowResult using an InferenceAdapter.
type Analyzer struct {
	labels  LabelSet
	adapter InferenceAdapter
	logger  *log.Logger
}

// NewAnalyzer constructs an Analyzer.
func NewAnalyzer(labels LabelSet, adapter InferenceAdapter, logger *log.Logger) (*Analyzer, error) {
	if adapter == nil {
		return nil, errors.New("inference adapter is required")
	}
	if labels.Len() == 0 {
		return nil, errors.New("label set is required")
	}
	return &Analyzer{labels: labels, adapter: adapter, logger: logger}, nil
}

// Labels returns the label set used by the analyzer.
func (a *Analyzer) Labels() LabelSet { return a.labels }

// Analyze never fails: blank input and inference failures both produce the
// sentinel result. Failures are logged.
func (a *Analyzer) Analyze(ctx context.Context, value any, replaceNone bool) RowResult {
	res, _, err := a.Evaluate(ctx, value, replaceNone)
	if err != nil {
		a.logf("감정 분석 실패, 기본값으로 대체: %v", err)
		return a.SentinelResult(replaceNone)
	}
	return res
}

// Evaluate analyzes value and reports whether it was blank. Inference failures
// are returned wrapped in ErrInference so batch callers can mark the row.
func (a *Analyzer) Evaluate(ctx context.Context, value any, replaceNone bool) (RowResult, bool, error) {
	text := cellText(value)
	if text == "" {
		return a.SentinelResult(replaceNone), true, nil
	}
	scores, err := a.adapter.Infer(ctx, text)
	if err != nil {
		return RowResult{}, false, fmt.Errorf("%w: %v", ErrInference, err)
	}
	res, err := a.derive(scores, replaceNone)
	if err != nil {
		return RowResult{}, false, fmt.Errorf("%w: %v", ErrInference, err)
	}
	return res, false, nil
}

// SentinelResult is the outcome for blank text: the sentinel label with a
// score of 1.0, every other label 0.0, and a top score of 0.0.
func (a *Analyzer) SentinelResult(replaceNone bool) RowResult {
	scores := a.zeroScores(replaceNone)
	sentinel := a.labels.DisplayName(a.labels.Sentinel(), replaceNone)
	scores[sentinel] = 1.0
	return RowResult{
		TopLabel: sentinel,
		TopScore: 0.0,
		Polarity: PolarityNeutral,
		Scores:   scores,
	}
}

// ErrorResult marks a row whose inference failed.
func (a *Analyzer) ErrorResult(replaceNone bool) RowResult {
	return RowResult{
		TopLabel: ErrorLabel,
		TopScore: 0.0,
		Polarity: PolarityNeutral,
		Scores:   a.zeroScores(replaceNone),
	}
}

func (a *Analyzer) zeroScores(replaceNone bool) ScoreVector {
	scores := make(ScoreVector, a.labels.Len())
	for _, label := range a.labels.Display(replaceNone) {
		scores[label] = 0.0
	}
	return scores
}

// derive fills in missing labels with 0.0 and picks the arg-max, keeping the
// first label in set order on ties.
func (a *Analyzer) derive(raw ScoreVector, replaceNone bool) (RowResult, error) {
	if len(raw) == 0 {
		return RowResult{}, errors.New("empty score vector")
	}
	known := 0
	for label, score := range raw {
		if !a.labels.Contains(label) && label != AlternateSentinel {
			continue
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return RowResult{}, fmt.Errorf("invalid score %v for %q", score, label)
		}
		known++
	}
	if known == 0 {
		return RowResult{}, errors.New("score vector has no known labels")
	}

	scores := make(ScoreVector, a.labels.Len())
	best := -1
	bestScore := 0.0
	for i, label := range a.labels.labels {
		score, ok := raw[label]
		if !ok && label == a.labels.Sentinel() {
			score = raw[AlternateSentinel]
		}
		scores[a.labels.DisplayName(label, replaceNone)] = score
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	top := a.labels.labels[best]
	return RowResult{
		TopLabel: a.labels.DisplayName(top, replaceNone),
		TopScore: bestScore,
		Polarity: a.labels.Polarity(top),
		Scores:   scores,
	}, nil
}

func (a *Analyzer) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}

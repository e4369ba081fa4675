package emotion

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeBlankTextReturnsSentinel(t *testing.T) {
	labels := KOTELabels()
	stub := &stubAdapter{labels: labels.Labels()}
	a := newTestAnalyzer(t, labels, stub)

	for _, value := range []any{nil, "", "   \n\t"} {
		res := a.Analyze(context.Background(), value, false)
		assert.Equal(t, SentinelLabel, res.TopLabel)
		assert.Equal(t, 0.0, res.TopScore)
		assert.Equal(t, PolarityNeutral, res.Polarity)
		assert.Len(t, res.Scores, 44)
		assert.Equal(t, 1.0, res.Scores[SentinelLabel])
		assert.Equal(t, 0.0, res.Scores["기쁨"])
	}
	assert.Empty(t, stub.Calls(), "blank input must not reach the model")
}

func TestAnalyzeBlankTextWithReplaceNone(t *testing.T) {
	labels := KOTELabels()
	a := newTestAnalyzer(t, labels, &stubAdapter{labels: labels.Labels()})

	res := a.Analyze(context.Background(), "", true)
	assert.Equal(t, AlternateSentinel, res.TopLabel)
	assert.Equal(t, 1.0, res.Scores[AlternateSentinel])
	_, hasSentinel := res.Scores[SentinelLabel]
	assert.False(t, hasSentinel)
}

func TestAnalyzePicksHighestScore(t *testing.T) {
	labels := KOTELabels()
	a := newTestAnalyzer(t, labels, &stubAdapter{labels: labels.Labels()})

	res := a.Analyze(context.Background(), "오늘은 기쁨 그 자체", false)
	assert.Equal(t, "기쁨", res.TopLabel)
	assert.InDelta(t, 0.9, res.TopScore, 1e-9)
	assert.Equal(t, PolarityPositive, res.Polarity)
	assert.Len(t, res.Scores, 44)
}

func TestAnalyzeTieKeepsFirstLabelInOrder(t *testing.T) {
	labels := KOTELabels()
	adapter := InferenceFunc(func(context.Context, string) (ScoreVector, error) {
		return ScoreVector{"환영/호의": 0.7, "불평/불만": 0.7, "기쁨": 0.2}, nil
	})
	a := newTestAnalyzer(t, labels, adapter)

	res := a.Analyze(context.Background(), "무언가", false)
	assert.Equal(t, "불평/불만", res.TopLabel)
	assert.Equal(t, PolarityNegative, res.Polarity)
}

func TestAnalyzeFillsMissingLabels(t *testing.T) {
	labels := KOTELabels()
	adapter := InferenceFunc(func(context.Context, string) (ScoreVector, error) {
		return ScoreVector{"슬픔": 0.6}, nil
	})
	a := newTestAnalyzer(t, labels, adapter)

	res := a.Analyze(context.Background(), "비가 온다", false)
	assert.Equal(t, "슬픔", res.TopLabel)
	assert.Len(t, res.Scores, 44)
	assert.Equal(t, 0.0, res.Scores["기쁨"])
}

func TestAnalyzeAcceptsAlternateSentinelKey(t *testing.T) {
	labels := KOTELabels()
	adapter := InferenceFunc(func(context.Context, string) (ScoreVector, error) {
		return ScoreVector{AlternateSentinel: 0.8, "기쁨": 0.1}, nil
	})
	a := newTestAnalyzer(t, labels, adapter)

	res := a.Analyze(context.Background(), "그냥 그렇다", false)
	assert.Equal(t, SentinelLabel, res.TopLabel)
	assert.InDelta(t, 0.8, res.TopScore, 1e-9)

	res = a.Analyze(context.Background(), "그냥 그렇다", true)
	assert.Equal(t, AlternateSentinel, res.TopLabel)
}

func TestAnalyzeFailureFallsBackToSentinel(t *testing.T) {
	labels := KOTELabels()
	a := newTestAnalyzer(t, labels, &stubAdapter{labels: labels.Labels()})

	res := a.Analyze(context.Background(), "please fail", false)
	assert.Equal(t, SentinelLabel, res.TopLabel)
	assert.Equal(t, 0.0, res.TopScore)

	_, empty, err := a.Evaluate(context.Background(), "please fail", false)
	require.Error(t, err)
	assert.False(t, empty)
	assert.True(t, errors.Is(err, ErrInference))
}

func TestEvaluateRejectsMalformedVectors(t *testing.T) {
	labels := KOTELabels()
	cases := map[string]ScoreVector{
		"empty":   {},
		"nan":     {"기쁨": math.NaN()},
		"inf":     {"기쁨": math.Inf(1)},
		"unknown": {"모르는감정": 0.4},
	}
	for name, vec := range cases {
		t.Run(name, func(t *testing.T) {
			adapter := InferenceFunc(func(context.Context, string) (ScoreVector, error) { return vec, nil })
			a := newTestAnalyzer(t, labels, adapter)
			_, _, err := a.Evaluate(context.Background(), "텍스트", false)
			assert.ErrorIs(t, err, ErrInference)
		})
	}
}

func TestNewAnalyzerRequiresAdapter(t *testing.T) {
	_, err := NewAnalyzer(KOTELabels(), nil, nil)
	assert.Error(t, err)
	_, err = NewAnalyzer(LabelSet{}, InferenceFunc(nil), nil)
	assert.Error(t, err)
}

func TestErrorResult(t *testing.T) {
	labels := KOTELabels()
	a := newTestAnalyzer(t, labels, &stubAdapter{labels: labels.Labels()})
	res := a.ErrorResult(false)
	assert.Equal(t, ErrorLabel, res.TopLabel)
	assert.Equal(t, PolarityNeutral, res.Polarity)
	assert.Len(t, res.Scores, 44)
}

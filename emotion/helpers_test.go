package emotion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// stubAdapter scores texts by keyword: a text containing a label gets 0.9 for
// it, "fail" makes inference fail.
type stubAdapter struct {
	mu     sync.Mutex
	labels []string
	calls  []string
}

func (s *stubAdapter) Infer(_ context.Context, text string) (ScoreVector, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	s.mu.Unlock()
	if strings.Contains(text, "fail") {
		return nil, errors.New("model exploded")
	}
	scores := make(ScoreVector, len(s.labels))
	for _, label := range s.labels {
		scores[label] = 0.05
		if strings.Contains(text, label) {
			scores[label] = 0.9
		}
	}
	return scores, nil
}

func (s *stubAdapter) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func smallLabels(t *testing.T) LabelSet {
	t.Helper()
	set, err := NewLabelSet(
		[]string{"기쁨", "슬픔", "없음"},
		map[string]Polarity{"기쁨": PolarityPositive, "슬픔": PolarityNegative, "없음": PolarityNeutral},
		SentinelLabel,
	)
	require.NoError(t, err)
	return set
}

func newTestAnalyzer(t *testing.T, labels LabelSet, adapter InferenceAdapter) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(labels, adapter, nil)
	require.NoError(t, err)
	return a
}

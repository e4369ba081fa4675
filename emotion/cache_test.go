package emotion

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closingAdapter struct {
	stubAdapter
	closed bool
}

func (c *closingAdapter) Close() error {
	c.closed = true
	return nil
}

func TestCachedAdapterMemoizes(t *testing.T) {
	labels := smallLabels(t)
	stub := &stubAdapter{labels: labels.Labels()}
	cache, err := NewCachedAdapter(stub, labels, "model-a", "")
	require.NoError(t, err)

	first, err := cache.Infer(context.Background(), "기쁨이다")
	require.NoError(t, err)
	second, err := cache.Infer(context.Background(), "기쁨이다")
	require.NoError(t, err)

	assert.Len(t, stub.Calls(), 1)
	assert.InDelta(t, 0.9, second["기쁨"], 1e-6)
	assert.InDelta(t, first["슬픔"], second["슬픔"], 1e-6)
}

func TestCachedAdapterPersistsToDisk(t *testing.T) {
	labels := smallLabels(t)
	dir := filepath.Join(t.TempDir(), "cache")
	stub := &stubAdapter{labels: labels.Labels()}
	cache, err := NewCachedAdapter(stub, labels, "model-a", dir)
	require.NoError(t, err)
	_, err = cache.Infer(context.Background(), "슬픔이다")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".bin", filepath.Ext(entries[0].Name()))

	fresh := &stubAdapter{labels: labels.Labels()}
	reopened, err := NewCachedAdapter(fresh, labels, "model-a", dir)
	require.NoError(t, err)
	scores, err := reopened.Infer(context.Background(), "슬픔이다")
	require.NoError(t, err)
	assert.Empty(t, fresh.Calls())
	assert.InDelta(t, 0.9, scores["슬픔"], 1e-6)

	other, err := NewCachedAdapter(fresh, labels, "model-b", dir)
	require.NoError(t, err)
	_, err = other.Infer(context.Background(), "슬픔이다")
	require.NoError(t, err)
	assert.Len(t, fresh.Calls(), 1, "cache keys include the model id")
}

func TestCachedAdapterDoesNotCacheFailures(t *testing.T) {
	labels := smallLabels(t)
	stub := &stubAdapter{labels: labels.Labels()}
	cache, err := NewCachedAdapter(stub, labels, "m", "")
	require.NoError(t, err)

	_, err = cache.Infer(context.Background(), "fail")
	require.Error(t, err)
	_, err = cache.Infer(context.Background(), "fail")
	require.Error(t, err)
	assert.Len(t, stub.Calls(), 2)
}

func TestCachedAdapterSkipsMalformedVectors(t *testing.T) {
	labels := smallLabels(t)
	tests := []struct {
		name    string
		scores  ScoreVector
		wantErr bool
	}{
		{"unknown labels only", ScoreVector{"unknown": 0.7}, true},
		{"non-finite score", ScoreVector{"기쁨": math.NaN(), "슬픔": 0.1, "없음": 0.1}, true},
		{"missing label", ScoreVector{"기쁨": 0.8, "슬픔": 0.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			next := InferenceFunc(func(context.Context, string) (ScoreVector, error) {
				calls++
				return tt.scores.Clone(), nil
			})
			dir := filepath.Join(t.TempDir(), "cache")
			cache, err := NewCachedAdapter(next, labels, "m", dir)
			require.NoError(t, err)
			analyzer := newTestAnalyzer(t, labels, cache)

			var results []RowResult
			for i := 0; i < 2; i++ {
				res, _, err := analyzer.Evaluate(context.Background(), "같은 문장", false)
				if tt.wantErr {
					require.Error(t, err, "call %d", i+1)
					continue
				}
				require.NoError(t, err, "call %d", i+1)
				results = append(results, res)
			}
			if !tt.wantErr {
				assert.Equal(t, results[0], results[1])
				assert.Equal(t, "기쁨", results[1].TopLabel)
			}
			assert.Equal(t, 2, calls)
			entries, err := os.ReadDir(dir)
			if err == nil {
				assert.Empty(t, entries)
			}
		})
	}
}

func TestCachedAdapterAcceptsAlternateSentinel(t *testing.T) {
	labels := smallLabels(t)
	calls := 0
	next := InferenceFunc(func(context.Context, string) (ScoreVector, error) {
		calls++
		return ScoreVector{"기쁨": 0.2, "슬픔": 0.1, AlternateSentinel: 0.6}, nil
	})
	cache, err := NewCachedAdapter(next, labels, "m", "")
	require.NoError(t, err)

	_, err = cache.Infer(context.Background(), "덤덤하다")
	require.NoError(t, err)
	scores, err := cache.Infer(context.Background(), "덤덤하다")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.InDelta(t, 0.6, scores[SentinelLabel], 1e-6)
}

func TestCachedAdapterCloseReleasesNext(t *testing.T) {
	labels := smallLabels(t)
	next := &closingAdapter{stubAdapter: stubAdapter{labels: labels.Labels()}}
	cache, err := NewCachedAdapter(next, labels, "m", "")
	require.NoError(t, err)
	require.NoError(t, cache.Close())
	assert.True(t, next.closed)
}

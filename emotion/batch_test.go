package emotion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewTable() *Table {
	t := NewTable("번호", "리뷰")
	t.AppendRow(1.0, "정말 기쁨 가득한 하루")
	t.AppendRow(2.0, nil)
	t.AppendRow(3.0, "슬픔이 밀려온다")
	t.AppendRow(4.0, "fail here")
	t.AppendRow(5.0, "   ")
	return t
}

func newTestEngine(t *testing.T) (*Engine, *stubAdapter) {
	t.Helper()
	labels := smallLabels(t)
	stub := &stubAdapter{labels: labels.Labels()}
	return NewEngine(newTestAnalyzer(t, labels, stub), nil), stub
}

func TestRunSkipEmptyLeavesBlankRowsEmpty(t *testing.T) {
	engine, _ := newTestEngine(t)
	input := reviewTable()

	res, err := engine.Run(context.Background(), input, BatchOptions{TextColumn: "리뷰", Strategy: StrategySkipEmpty})
	require.NoError(t, err)

	out := res.Table
	require.Equal(t, 5, out.Len())
	assert.Equal(t, []string{"번호", "리뷰", ColumnTopLabel, ColumnIntensity, ColumnPolarity, "기쁨", "슬픔", "없음"}, out.Columns)
	for i := 0; i < out.Len(); i++ {
		assert.Equal(t, float64(i+1), out.Value(i, 0), "row order must be preserved")
	}

	top := out.Index(ColumnTopLabel)
	assert.Equal(t, "기쁨", out.Value(0, top))
	assert.Nil(t, out.Value(1, top))
	assert.Nil(t, out.Value(1, out.Index("기쁨")))
	assert.Equal(t, "슬픔", out.Value(2, top))
	assert.Equal(t, ErrorLabel, out.Value(3, top))
	assert.Equal(t, 0.0, out.Value(3, out.Index(ColumnIntensity)))
	assert.Equal(t, string(PolarityNeutral), out.Value(3, out.Index(ColumnPolarity)))
	assert.Nil(t, out.Value(4, top))

	assert.Equal(t, 2, res.Analyzed)
	assert.Equal(t, 2, res.Empty)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 1, res.PolarityCounts[PolarityPositive])
	assert.Equal(t, 1, res.PolarityCounts[PolarityNegative])
	assert.Equal(t, 0, res.PolarityCounts[PolarityNeutral])
	assert.Equal(t, map[string]int{"기쁨": 1, "슬픔": 1}, res.LabelCounts)

	assert.Equal(t, []string{"번호", "리뷰"}, input.Columns, "input must not be modified")
	assert.Equal(t, []string{"번호", "리뷰"}, res.Original.Columns)
}

func TestRunClearsValuesFromPreviousRun(t *testing.T) {
	engine, _ := newTestEngine(t)
	input := NewTable("리뷰", ColumnTopLabel, ColumnIntensity, ColumnPolarity, "기쁨", "슬픔", "없음", AlternateSentinel)
	input.AppendRow("슬픔이 밀려온다", "기쁨", 0.8, "긍정", 0.8, 0.1, 0.1, 0.1)
	input.AppendRow(nil, "기쁨", 0.8, "긍정", 0.8, 0.1, 0.1, 0.1)

	res, err := engine.Run(context.Background(), input, BatchOptions{TextColumn: "리뷰", Strategy: StrategySkipEmpty})
	require.NoError(t, err)

	out := res.Table
	assert.Equal(t, input.Columns, out.Columns, "existing columns are reused in place")
	assert.Equal(t, "슬픔", out.Value(0, out.Index(ColumnTopLabel)))
	assert.Equal(t, 0.05, out.Value(0, out.Index("기쁨")))
	assert.Nil(t, out.Value(0, out.Index(AlternateSentinel)))
	for _, col := range []string{ColumnTopLabel, ColumnIntensity, ColumnPolarity, "기쁨", "슬픔", "없음", AlternateSentinel} {
		assert.Nil(t, out.Value(1, out.Index(col)), col)
	}
	assert.Equal(t, "기쁨", res.Original.Value(1, res.Original.Index(ColumnTopLabel)), "original is untouched")
	assert.Equal(t, 1, res.Empty)
}

func TestRunSentinelFillScoresBlankRows(t *testing.T) {
	engine, stub := newTestEngine(t)

	res, err := engine.Run(context.Background(), reviewTable(), BatchOptions{TextColumn: "리뷰", Strategy: StrategySentinelFill})
	require.NoError(t, err)

	out := res.Table
	top := out.Index(ColumnTopLabel)
	for _, row := range []int{1, 4} {
		assert.Equal(t, SentinelLabel, out.Value(row, top))
		assert.Equal(t, 0.0, out.Value(row, out.Index(ColumnIntensity)))
		assert.Equal(t, 1.0, out.Value(row, out.Index(SentinelLabel)))
		assert.Equal(t, 0.0, out.Value(row, out.Index("기쁨")))
	}
	assert.Equal(t, 2, res.Empty)
	assert.Equal(t, 2, res.PolarityCounts[PolarityNeutral])
	assert.Equal(t, 2, res.LabelCounts[SentinelLabel])
	assert.Len(t, stub.Calls(), 3, "blank rows never reach the model")
}

func TestRunReplaceNoneRenamesSentinelColumn(t *testing.T) {
	engine, _ := newTestEngine(t)

	res, err := engine.Run(context.Background(), reviewTable(), BatchOptions{
		TextColumn:  "리뷰",
		Strategy:    StrategySentinelFill,
		ReplaceNone: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Table.Has(AlternateSentinel))
	assert.False(t, res.Table.Has(SentinelLabel))
	assert.Equal(t, AlternateSentinel, res.Table.Value(1, res.Table.Index(ColumnTopLabel)))
}

func TestRunMissingColumn(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Run(context.Background(), reviewTable(), BatchOptions{TextColumn: "본문"})
	var notFound *ColumnNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "본문", notFound.Column)
	assert.Equal(t, []string{"번호", "리뷰"}, notFound.Available)
}

func TestRunRejectsUnknownStrategy(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.Run(context.Background(), reviewTable(), BatchOptions{TextColumn: "리뷰", Strategy: "drop"})
	assert.ErrorContains(t, err, "unknown batch strategy")
}

func TestRunReportsProgressEveryTenth(t *testing.T) {
	engine, _ := newTestEngine(t)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	engine.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	table := NewTable("리뷰")
	for i := 0; i < 25; i++ {
		table.AppendRow(fmt.Sprintf("기쁨 %d", i))
	}
	var seen []Progress
	res, err := engine.Run(context.Background(), table, BatchOptions{
		TextColumn: "리뷰",
		Progress:   func(p Progress) { seen = append(seen, p) },
	})
	require.NoError(t, err)

	require.Len(t, seen, 13)
	assert.Equal(t, 2, seen[0].Processed)
	assert.Equal(t, 24, seen[11].Processed)
	last := seen[len(seen)-1]
	assert.Equal(t, 25, last.Processed)
	assert.Equal(t, 100.0, last.Percent)
	assert.Equal(t, time.Duration(0), last.Remaining)
	assert.Greater(t, seen[0].Remaining, time.Duration(0))
	assert.Contains(t, res.Narrative, "진행: 100.0% (25/25)")
}

func TestRunNarrativeSummary(t *testing.T) {
	engine, _ := newTestEngine(t)

	res, err := engine.Run(context.Background(), reviewTable(), BatchOptions{TextColumn: "리뷰", Source: "reviews.csv"})
	require.NoError(t, err)
	assert.Contains(t, res.Narrative, "총 5개 행 분석 시작 (텍스트 컬럼: 리뷰)")
	assert.Contains(t, res.Narrative, "분석 완료: 2개 분석, 빈 행 2개, 오류 1개")
	assert.Contains(t, res.Narrative, "긍정: 1개 (50.0%)")
	assert.Contains(t, res.Narrative, "주요 감정 Top 5:")
	assert.Equal(t, "reviews.csv", res.Provenance.Source)
	assert.NotEmpty(t, res.Provenance.RunID)
	assert.Equal(t, StrategySkipEmpty, res.Provenance.Strategy)
}

func TestTopLabelsOrdersByCountThenName(t *testing.T) {
	r := &BatchResult{LabelCounts: map[string]int{"슬픔": 2, "기쁨": 2, "없음": 5}}
	assert.Equal(t, []LabelCount{{"없음", 5}, {"기쁨", 2}}, r.TopLabels(2))
}

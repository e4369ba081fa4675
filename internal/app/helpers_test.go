package app

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01Chungee10/SA/emotion"
	"github.com/01Chungee10/SA/statistics"
)

func TestBuildColumnChoices(t *testing.T) {
	table := emotion.NewTable("번호", "리뷰")
	table.AppendRow(1.0, nil)
	table.AppendRow(2.0, strings.Repeat("가", 30))

	choices := buildColumnChoices(table)
	require.Len(t, choices, 2)
	assert.Equal(t, "번호", choices[0].Name)
	assert.Equal(t, "[1] 번호 (예: 1)", choices[0].Label)
	assert.Equal(t, "[2] 리뷰 (예: "+strings.Repeat("가", 20)+"…)", choices[1].Label)
	assert.Equal(t, 1, defaultChoice(table, choices))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"성별", "연령대"}, splitList(" 성별, ,연령대\n"))
	assert.Nil(t, splitList(""))
}

func TestLogCaptureKeepsLastLines(t *testing.T) {
	var published string
	capture := newLogCapture(func(s string) error { published = s; return nil }, 3)
	for i := 1; i <= 5; i++ {
		_, err := fmt.Fprintf(capture, "line %d\r\n", i)
		require.NoError(t, err)
	}
	assert.Equal(t, "line 3\nline 4\nline 5", published)
	assert.Equal(t, published, capture.Text())
}

func TestMakeColumnsRendersResultTable(t *testing.T) {
	table := emotion.NewTable("리뷰", emotion.ColumnTopLabel, emotion.ColumnIntensity, emotion.ColumnPolarity)
	table.AppendRow("좋다", "기쁨", 0.91234, "긍정")
	table.AppendRow(nil, nil, nil, nil)

	cols := makeColumns(table, "리뷰")
	require.Len(t, cols, 4)
	assert.Equal(t, "0.912", cols[2].Render(0))
	assert.Equal(t, "", cols[1].Render(1))

	assert.Len(t, makeColumns(emotion.NewTable(emotion.ColumnTopLabel), "리뷰"), 1)
	assert.Nil(t, makeColumns(nil, "리뷰"))
}

func TestStrategyLabels(t *testing.T) {
	for _, s := range []emotion.Strategy{emotion.StrategySkipEmpty, emotion.StrategySentinelFill} {
		assert.Equal(t, s, strategyFromLabel(strategyLabel(s)))
	}
}

func TestHeatmapText(t *testing.T) {
	h := &statistics.Heatmap{
		Order: []string{statistics.OverallKey},
		Groups: map[string]statistics.HeatmapGroup{
			statistics.OverallKey: {
				TotalCount: 2,
				PolarityPercentages: map[emotion.Polarity]float64{
					emotion.PolarityPositive: 50, emotion.PolarityNegative: 50,
				},
			},
		},
		Errors: map[string]string{"성별: 여": "boom"},
	}
	text := heatmapText(h)
	assert.Contains(t, text, "overall (2건): 긍정 50.0% 부정 50.0% 중립 0.0%")
	assert.Contains(t, text, "성별: 여: 계산 실패 (boom)")
	assert.Empty(t, heatmapText(nil))
}

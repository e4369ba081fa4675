package statistics

import (
	"testing"

	"github.com/01Chungee10/SA/emotion"
)

// surveyTable is a small analyzed table with two group columns. The last row
// has no gender.
func surveyTable(t *testing.T) *emotion.Table {
	t.Helper()
	table := emotion.NewTable("성별", "연령대", emotion.ColumnTopLabel, emotion.ColumnIntensity, emotion.ColumnPolarity)
	table.AppendRow("여", 20.0, "기쁨", 0.9, "긍정")
	table.AppendRow("여", 30.0, "슬픔", 0.5, "부정")
	table.AppendRow("남", 20.0, "짜증", 0.3, "부정")
	table.AppendRow("남", 20.0, "기쁨", 0.7, "긍정")
	table.AppendRow("여", 20.0, "없음", 0.0, "중립")
	table.AppendRow(nil, 30.0, "슬픔", 0.5, "부정")
	return table
}

func newTestEngine() *Engine {
	return NewEngine(emotion.KOTELabels(), nil)
}

func lookupFloat(t *testing.T, f *Frame, column string, key ...string) float64 {
	t.Helper()
	v, ok := f.Float(column, key...)
	if !ok {
		t.Fatalf("no numeric %s for %v in %s", column, key, f.String())
	}
	return v
}

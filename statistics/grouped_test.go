package statistics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01Chungee10/SA/emotion"
)

func TestGroupedStatisticsNumeric(t *testing.T) {
	res, err := newTestEngine().GroupedStatistics(surveyTable(t), []string{"성별"}, emotion.ColumnIntensity)
	require.NoError(t, err)
	require.True(t, res.Numeric)
	assert.Empty(t, res.Warning)

	f := res.Frame
	assert.Equal(t, []string{"성별"}, f.IndexNames)
	assert.Equal(t, []string{"개수", "평균", "표준편차", "최소값", "최대값", "중앙값"}, f.Columns)
	assert.Equal(t, [][]string{{"남"}, {"여"}}, f.Index, "rows with a missing key are dropped")

	assert.Equal(t, 2.0, lookupFloat(t, f, "개수", "남"))
	assert.InDelta(t, 0.5, lookupFloat(t, f, "평균", "남"), 1e-9)
	assert.InDelta(t, 0.28, lookupFloat(t, f, "표준편차", "남"), 1e-9)
	assert.InDelta(t, 0.47, lookupFloat(t, f, "평균", "여"), 1e-9)
	assert.InDelta(t, 0.45, lookupFloat(t, f, "표준편차", "여"), 1e-9)
	assert.InDelta(t, 0.0, lookupFloat(t, f, "최소값", "여"), 1e-9)
	assert.InDelta(t, 0.5, lookupFloat(t, f, "중앙값", "여"), 1e-9)
}

func TestGroupedStatisticsMultiLevel(t *testing.T) {
	res, err := newTestEngine().GroupedStatistics(surveyTable(t), []string{"성별", "연령대"}, emotion.ColumnIntensity)
	require.NoError(t, err)

	f := res.Frame
	assert.Equal(t, [][]string{{"남", "20"}, {"여", "20"}, {"여", "30"}}, f.Index)
	assert.Equal(t, 1.0, lookupFloat(t, f, "개수", "여", "30"))
	assert.Equal(t, 0.0, lookupFloat(t, f, "표준편차", "여", "30"), "std of one value is reported as 0")
	assert.InDelta(t, 0.45, lookupFloat(t, f, "평균", "여", "20"), 1e-9)
}

func TestGroupedStatisticsCategoricalValue(t *testing.T) {
	res, err := newTestEngine().GroupedStatistics(surveyTable(t), []string{"성별"}, emotion.ColumnTopLabel)
	require.NoError(t, err)
	assert.False(t, res.Numeric)
	assert.Contains(t, res.Warning, emotion.ColumnTopLabel)
	assert.Equal(t, []string{"개수"}, res.Frame.Columns)
	assert.Equal(t, 3.0, lookupFloat(t, res.Frame, "개수", "여"))
}

func TestGroupedStatisticsJudgesTypeByFirstValue(t *testing.T) {
	table := emotion.NewTable("그룹", "값")
	table.AppendRow("a", "1")
	table.AppendRow("a", "없음")
	table.AppendRow("a", "3")

	res, err := newTestEngine().GroupedStatistics(table, []string{"그룹"}, "값")
	require.NoError(t, err)
	assert.True(t, res.Numeric)
	assert.Equal(t, 2.0, lookupFloat(t, res.Frame, "개수", "a"))
	assert.InDelta(t, 2.0, lookupFloat(t, res.Frame, "평균", "a"), 1e-9)
}

func TestGroupedStatisticsEmptyValueColumn(t *testing.T) {
	table := emotion.NewTable("그룹", "값")
	table.AppendRow("a", nil)
	table.AppendRow("b", "")

	res, err := newTestEngine().GroupedStatistics(table, []string{"그룹"}, "값")
	require.NoError(t, err)
	assert.True(t, res.Numeric)
	assert.Empty(t, res.Warning)
	assert.Equal(t, []string{"개수", "평균", "표준편차", "최소값", "최대값", "중앙값"}, res.Frame.Columns)
	assert.Equal(t, 0.0, lookupFloat(t, res.Frame, "개수", "a"))
	assert.Equal(t, 0.0, lookupFloat(t, res.Frame, "평균", "b"))
}

func TestGroupedStatisticsWithoutGroups(t *testing.T) {
	res, err := newTestEngine().GroupedStatistics(surveyTable(t), nil, emotion.ColumnIntensity)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{WholeTableKey}}, res.Frame.Index)
	assert.Equal(t, 6.0, lookupFloat(t, res.Frame, "개수", WholeTableKey))
}

func TestGroupedStatisticsMissingColumn(t *testing.T) {
	_, err := newTestEngine().GroupedStatistics(surveyTable(t), []string{"지역"}, emotion.ColumnIntensity)
	var notFound *emotion.ColumnNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "지역", notFound.Column)
}

func TestPartitionSortsNumericKeysNumerically(t *testing.T) {
	table := emotion.NewTable("연령")
	for _, v := range []float64{100, 9, 20} {
		table.AppendRow(v)
	}
	groups, err := partition(table, []string{"연령"})
	require.NoError(t, err)
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.key[0])
	}
	assert.Equal(t, []string{"9", "20", "100"}, keys)
}

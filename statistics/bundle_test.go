package statistics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01Chungee10/SA/emotion"
)

func tableNames(b *Bundle) []string {
	names := make([]string, len(b.Tables))
	for i, nf := range b.Tables {
		names[i] = nf.Name
	}
	return names
}

func TestComputeWithGroups(t *testing.T) {
	b, err := newTestEngine().Compute(surveyTable(t), Request{Source: "survey.csv", GroupColumns: []string{"성별", "연령대"}})
	require.NoError(t, err)

	assert.Equal(t, []string{SheetOverall, SheetDistribution, SheetIntensity, "성별_연령대_통계", SheetCrosstab, SheetCrosstabPct}, tableNames(b))
	assert.Empty(t, b.Warnings)
	assert.Equal(t, emotion.ColumnIntensity, b.Metadata.TargetColumn)
	assert.Equal(t, "survey.csv", b.Metadata.Source)
	assert.NotEmpty(t, b.Metadata.RunID)
	require.NotNil(t, b.Grouped)
	require.NotNil(t, b.Heatmap)

	dist, ok := b.Table(SheetDistribution)
	require.True(t, ok)
	assert.Equal(t, []string{"빈도", "비율(%)"}, dist.Columns)
	_, ok = b.Table("없는시트")
	assert.False(t, ok)
}

func TestComputeWithoutGroups(t *testing.T) {
	b, err := newTestEngine().Compute(surveyTable(t), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{SheetOverall, SheetDistribution, SheetIntensity}, tableNames(b))
	assert.Nil(t, b.Grouped)
	assert.Equal(t, []string{OverallKey}, b.Heatmap.Order)
}

func TestComputeIsolatesFailures(t *testing.T) {
	b, err := newTestEngine().Compute(surveyTable(t), Request{
		TargetColumn: emotion.ColumnTopLabel,
		GroupColumns: []string{"성별"},
	})
	require.NoError(t, err)

	names := tableNames(b)
	assert.NotContains(t, names, SheetOverall)
	assert.Contains(t, names, SheetDistribution)
	assert.Contains(t, names, "성별_통계")
	require.Len(t, b.Warnings, 2)
	assert.Contains(t, b.Warnings[0], "전체 통계")
	assert.Contains(t, b.Warnings[1], "빈도 분석만")
}

func TestComputeRejectsInvalidSchema(t *testing.T) {
	table := emotion.NewTable("리뷰", emotion.ColumnPolarity)
	_, err := newTestEngine().Compute(table, Request{})
	var schemaErr *SchemaValidationError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{emotion.ColumnIntensity}, schemaErr.Missing)
}

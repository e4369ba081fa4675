package app

import (
	"fmt"

	"github.com/01Chungee10/SA/emotion"
)

type tableColumn struct {
	Title  string
	Width  float32
	Render func(row int) string
}

// makeColumns shows the text column followed by the derived columns of t.
// Columns absent from t are left out.
func makeColumns(t *emotion.Table, textColumn string) []tableColumn {
	if t == nil {
		return nil
	}
	var cols []tableColumn
	add := func(name string, width float32, format func(any) string) {
		idx := t.Index(name)
		if idx < 0 {
			return
		}
		cols = append(cols, tableColumn{
			Title: name,
			Width: width,
			Render: func(row int) string {
				v := t.Value(row, idx)
				if emotion.IsMissing(v) {
					return ""
				}
				return format(v)
			},
		})
	}
	add(textColumn, 360, func(v any) string { return truncateSampleValue(emotion.FormatValue(v), 120) })
	add(emotion.ColumnTopLabel, 120, emotion.FormatValue)
	add(emotion.ColumnIntensity, 100, formatScore)
	add(emotion.ColumnPolarity, 90, emotion.FormatValue)
	return cols
}

func formatScore(v any) string {
	if f, ok := emotion.ToFloat(v); ok {
		return fmt.Sprintf("%.3f", f)
	}
	return emotion.FormatValue(v)
}

// guessTextColumn picks the column to show for a loaded result file.
func guessTextColumn(t *emotion.Table, configured string) string {
	if configured != "" && t.Has(configured) {
		return configured
	}
	return emotion.DetectTextColumn(t)
}

package app

import (
	"fmt"
	"strings"

	"github.com/01Chungee10/SA/emotion"
)

type columnChoice struct {
	Name  string
	Label string
}

// buildColumnChoices lists every column of t with a sample value so the user
// can pick the text column.
func buildColumnChoices(t *emotion.Table) []columnChoice {
	choices := make([]columnChoice, 0, len(t.Columns))
	for col, name := range t.Columns {
		label := fmt.Sprintf("[%d] %s", col+1, name)
		if sample := columnSample(t, col); sample != "" {
			label = fmt.Sprintf("%s (예: %s)", label, sample)
		}
		choices = append(choices, columnChoice{Name: name, Label: label})
	}
	return choices
}

// defaultChoice returns the index of the auto-detected text column, or 0.
func defaultChoice(t *emotion.Table, choices []columnChoice) int {
	detected := emotion.DetectTextColumn(t)
	for i, c := range choices {
		if c.Name == detected {
			return i
		}
	}
	return 0
}

func columnSample(t *emotion.Table, col int) string {
	for r := 0; r < t.Len(); r++ {
		v := t.Value(r, col)
		if emotion.IsMissing(v) {
			continue
		}
		if s := strings.TrimSpace(emotion.FormatValue(v)); s != "" {
			return truncateSampleValue(s, 20)
		}
	}
	return ""
}

func truncateSampleValue(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

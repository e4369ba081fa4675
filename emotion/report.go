package emotion

import (
	"fmt"
	"sort"
	"strings"
)

// TextReport renders a single text analysis as a readable table.
func TextReport(text string, res RowResult, labels LabelSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "입력 텍스트: %s\n\n", text)
	fmt.Fprintf(&b, "주요 감정: %s (%s, 강도 %.4f)\n\n", res.TopLabel, res.Polarity, res.TopScore)
	fmt.Fprintf(&b, "%-20s | %-10s | %s\n", "감정", "확률/강도", "분류")
	b.WriteString(strings.Repeat("-", 44))
	b.WriteByte('\n')
	for _, ls := range res.Scores.Sorted(labels) {
		fmt.Fprintf(&b, "%-20s | %-10.4f | %s\n", ls.Label, ls.Score, labels.Polarity(sourceLabel(labels, ls.Label)))
	}
	return b.String()
}

func sourceLabel(labels LabelSet, display string) string {
	if display == AlternateSentinel {
		return labels.Sentinel()
	}
	return display
}

// SummarizeResults describes a result table: polarity shares, label shares
// and the mean score of every label column present.
func SummarizeResults(t *Table, labels LabelSet) (string, error) {
	polIdx, err := t.Require(ColumnPolarity)
	if err != nil {
		return "", err
	}
	topIdx, err := t.Require(ColumnTopLabel)
	if err != nil {
		return "", err
	}
	polarity := make(map[string]int)
	top := make(map[string]int)
	total := 0
	for i := range t.Rows {
		p, ok := t.Value(i, polIdx).(string)
		if !ok || p == "" {
			continue
		}
		total++
		polarity[p]++
		if l, ok := t.Value(i, topIdx).(string); ok {
			top[l]++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "분석 결과 요약 (%d건)\n\n감정 분류:\n", total)
	for _, p := range Polarities {
		n := polarity[string(p)]
		fmt.Fprintf(&b, "  %s: %d건 (%.1f%%)\n", p, n, percent(n, total))
	}
	b.WriteString("\n주요 감정:\n")
	for _, lc := range topCounts(top, 0) {
		fmt.Fprintf(&b, "  %s: %d건 (%.1f%%)\n", lc.Label, lc.Count, percent(lc.Count, total))
	}

	type mean struct {
		label string
		value float64
	}
	var means []mean
	for _, label := range append(labels.Labels(), AlternateSentinel) {
		col := t.Index(label)
		if col < 0 {
			continue
		}
		sum, n := 0.0, 0
		for i := range t.Rows {
			if v, ok := ToFloat(t.Value(i, col)); ok {
				sum += v
				n++
			}
		}
		if n > 0 {
			means = append(means, mean{label: label, value: sum / float64(n)})
		}
	}
	sort.SliceStable(means, func(i, j int) bool { return means[i].value > means[j].value })
	if len(means) > 0 {
		b.WriteString("\n감정별 평균 점수:\n")
		for _, m := range means {
			fmt.Fprintf(&b, "  %s: %.4f\n", m.label, m.value)
		}
	}
	return b.String(), nil
}

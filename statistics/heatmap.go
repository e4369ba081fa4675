package statistics

import (
	"fmt"
	"strings"

	"github.com/01Chungee10/SA/emotion"
)

// OverallKey is the heatmap entry covering the whole table.
const OverallKey = "overall"

// HeatmapGroup summarizes the emotions of one group of rows.
type HeatmapGroup struct {
	TotalCount          int
	EmotionCounts       map[string]int
	MainEmotionCounts   map[string]int
	PolarityCounts      map[emotion.Polarity]int
	PolarityPercentages map[emotion.Polarity]float64
}

// Heatmap holds one HeatmapGroup per key in Order. Groups whose computation
// failed are listed in Errors instead.
type Heatmap struct {
	Order  []string
	Groups map[string]HeatmapGroup
	Errors map[string]string
}

// EmotionHeatmapData builds the overall entry, one entry per distinct value of
// each group column ("col: value") and, with two or more group columns, one
// per present combination ("c1: v1 / c2: v2"). A failing group never stops
// the others. Missing group columns are skipped with a logged warning.
func (e *Engine) EmotionHeatmapData(t *emotion.Table, groupColumns []string) *Heatmap {
	h := &Heatmap{
		Groups: make(map[string]HeatmapGroup),
		Errors: make(map[string]string),
	}
	all := make([]int, t.Len())
	for i := range all {
		all[i] = i
	}
	e.addHeatmapGroup(h, OverallKey, t, all)

	var present []string
	for _, col := range groupColumns {
		if !t.Has(col) {
			e.logf("히트맵: 그룹 컬럼 %q 이(가) 없어 건너뜁니다", col)
			continue
		}
		present = append(present, col)
		groups, err := partition(t, []string{col})
		if err != nil {
			h.Errors[col] = err.Error()
			continue
		}
		for _, g := range groups {
			e.addHeatmapGroup(h, fmt.Sprintf("%s: %s", col, g.key[0]), t, g.rows)
		}
	}
	if len(present) >= 2 {
		groups, err := partition(t, present)
		if err != nil {
			h.Errors[strings.Join(present, " / ")] = err.Error()
			return h
		}
		for _, g := range groups {
			parts := make([]string, len(present))
			for i, col := range present {
				parts[i] = fmt.Sprintf("%s: %s", col, g.key[i])
			}
			e.addHeatmapGroup(h, strings.Join(parts, " / "), t, g.rows)
		}
	}
	return h
}

func (e *Engine) addHeatmapGroup(h *Heatmap, key string, t *emotion.Table, rows []int) {
	g, err := e.heatmapGroup(t, rows)
	if err != nil {
		e.logf("히트맵 그룹 %s 계산 실패: %v", key, err)
		h.Errors[key] = err.Error()
		return
	}
	h.Order = append(h.Order, key)
	h.Groups[key] = g
}

func (e *Engine) heatmapGroup(t *emotion.Table, rows []int) (g HeatmapGroup, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("heatmap group: %v", r)
		}
	}()
	g = HeatmapGroup{
		TotalCount:          len(rows),
		EmotionCounts:       make(map[string]int),
		MainEmotionCounts:   make(map[string]int),
		PolarityCounts:      make(map[emotion.Polarity]int, len(emotion.Polarities)),
		PolarityPercentages: make(map[emotion.Polarity]float64, len(emotion.Polarities)),
	}
	for _, p := range emotion.Polarities {
		g.PolarityCounts[p] = 0
		g.PolarityPercentages[p] = 0
	}
	if len(rows) == 0 {
		return g, nil
	}
	pi, err := t.Require(emotion.ColumnPolarity)
	if err != nil {
		return g, err
	}
	ti := t.Index(emotion.ColumnTopLabel)
	for _, r := range rows {
		if v := t.Value(r, pi); !emotion.IsMissing(v) {
			s := emotion.FormatValue(v)
			g.EmotionCounts[s]++
			g.PolarityCounts[e.polarityOf(s)]++
		}
		if ti >= 0 {
			if v := t.Value(r, ti); !emotion.IsMissing(v) {
				g.MainEmotionCounts[emotion.FormatValue(v)]++
			}
		}
	}
	for _, p := range emotion.Polarities {
		g.PolarityPercentages[p] = roundTo(float64(g.PolarityCounts[p])/float64(g.TotalCount)*100, 1)
	}
	return g, nil
}

// polarityOf accepts either a polarity name or a label.
func (e *Engine) polarityOf(value string) emotion.Polarity {
	for _, p := range emotion.Polarities {
		if value == string(p) {
			return p
		}
	}
	return e.labels.Polarity(value)
}

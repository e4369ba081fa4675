package statistics

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/01Chungee10/SA/emotion"
)

// Sheet names used by Compute.
const (
	SheetOverall      = "전체_통계_요약"
	SheetDistribution = "감정_분류_통계"
	SheetIntensity    = "감정_강도_분포"
	SheetCrosstab     = "다단계_빈도표"
	SheetCrosstabPct  = "다단계_빈도표_비율"
	SheetMetadata     = "메타데이터"
)

// Request selects what Compute analyzes.
type Request struct {
	Source       string
	TargetColumn string
	GroupColumns []string
	Bins         []float64
	BinLabels    []string
}

// Metadata describes a bundle.
type Metadata struct {
	CreatedAt    time.Time
	Source       string
	TargetColumn string
	GroupColumns []string
	RunID        string
}

// Bundle is a set of independently computed tables plus the heatmap data.
type Bundle struct {
	Tables   []NamedFrame
	Grouped  *GroupedResult
	Heatmap  *Heatmap
	Metadata Metadata
	Warnings []string
}

// Table returns the frame stored under name.
func (b *Bundle) Table(name string) (*Frame, bool) {
	for _, nf := range b.Tables {
		if nf.Name == name {
			return nf.Frame, true
		}
	}
	return nil, false
}

// GroupedSheetName names the grouped statistics sheet after its columns.
func GroupedSheetName(groupColumns []string) string {
	return strings.Join(groupColumns, "_") + "_통계"
}

// Compute validates t and then computes every statistic. A failing statistic
// is logged and recorded in Warnings; the others are still produced.
func (e *Engine) Compute(t *emotion.Table, req Request) (*Bundle, error) {
	if err := e.ValidateSchema(t); err != nil {
		return nil, err
	}
	if req.TargetColumn == "" {
		req.TargetColumn = emotion.ColumnIntensity
	}
	b := &Bundle{
		Metadata: Metadata{
			CreatedAt:    time.Now(),
			Source:       req.Source,
			TargetColumn: req.TargetColumn,
			GroupColumns: append([]string(nil), req.GroupColumns...),
			RunID:        uuid.NewString(),
		},
	}
	warn := func(what string, err error) {
		msg := fmt.Sprintf("%s 실패: %v", what, err)
		e.logf("%s", msg)
		b.Warnings = append(b.Warnings, msg)
	}
	add := func(name string, f *Frame) {
		b.Tables = append(b.Tables, NamedFrame{Name: name, Frame: f})
	}

	if f, err := e.OverallStatistics(t, req.TargetColumn); err != nil {
		warn("전체 통계", err)
	} else {
		add(SheetOverall, f)
	}
	if counts, pcts, err := e.EmotionDistribution(t); err != nil {
		warn("감정 분포", err)
	} else if f, err := Join(counts, pcts); err != nil {
		warn("감정 분포", err)
	} else {
		add(SheetDistribution, f)
	}
	if bins, err := e.IntensityBins(t, emotion.ColumnIntensity, req.Bins, req.BinLabels); err != nil {
		warn("감정 강도 분포", err)
	} else if f, err := Join(bins.Counts, bins.Percents); err != nil {
		warn("감정 강도 분포", err)
	} else {
		add(SheetIntensity, f)
	}

	if len(req.GroupColumns) > 0 {
		if g, err := e.GroupedStatistics(t, req.GroupColumns, req.TargetColumn); err != nil {
			warn("그룹별 통계", err)
		} else {
			b.Grouped = g
			if g.Warning != "" {
				b.Warnings = append(b.Warnings, g.Warning)
			}
			add(GroupedSheetName(req.GroupColumns), g.Frame)
		}
		if f, err := e.MultiLevelCrosstab(t, req.GroupColumns, emotion.ColumnPolarity, false); err != nil {
			warn("다단계 빈도표", err)
		} else {
			add(SheetCrosstab, f)
		}
		if f, err := e.MultiLevelCrosstab(t, req.GroupColumns, emotion.ColumnPolarity, true); err != nil {
			warn("다단계 빈도표 비율", err)
		} else {
			add(SheetCrosstabPct, f)
		}
	}
	b.Heatmap = e.EmotionHeatmapData(t, req.GroupColumns)
	return b, nil
}

package statistics

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName      = 31
	truncatedSheetLen = 28
	reportFileInfix   = "_통계분석_"
	fallbackReport    = "분석결과"
)

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")",
)

// SheetName makes name usable as a worksheet name: characters the format
// forbids are replaced and names over 31 characters are cut to 28 plus "...".
func SheetName(name string) string {
	name = sheetNameReplacer.Replace(strings.Trim(name, "'"))
	if name == "" {
		name = "Sheet"
	}
	runes := []rune(name)
	if len(runes) > maxSheetName {
		return string(runes[:truncatedSheetLen]) + "..."
	}
	return name
}

// uniqueSheetName adds a numeric suffix when name is already in used. Sheet
// names compare case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		runes := []rune(name)
		if limit := maxSheetName - len(suffix); len(runes) > limit {
			runes = runes[:limit]
		}
		candidate = string(runes) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// ReportFileName returns {base}_통계분석_{timestamp}.xlsx for source.
func ReportFileName(source string, ts time.Time) string {
	base := fallbackReport
	if source != "" {
		b := filepath.Base(source)
		if stem := strings.TrimSuffix(b, filepath.Ext(b)); stem != "" && stem != "." && stem != string(filepath.Separator) {
			base = stem
		}
	}
	return base + reportFileInfix + ts.Format("20060102150405") + ".xlsx"
}

// ReportWriter exports bundles as workbooks.
type ReportWriter struct {
	logger *log.Logger
}

// NewReportWriter constructs a ReportWriter.
func NewReportWriter(logger *log.Logger) *ReportWriter {
	return &ReportWriter{logger: logger}
}

// Export writes one sheet per table and a metadata sheet to path. Errors are
// logged and returned to the caller.
func (w *ReportWriter) Export(b *Bundle, path string) (string, error) {
	if err := w.export(b, path); err != nil {
		w.logf("통계 내보내기 실패: %v", err)
		return "", err
	}
	w.logf("통계 결과 저장: %s", path)
	return path, nil
}

func (w *ReportWriter) export(b *Bundle, path string) error {
	if b == nil {
		return fmt.Errorf("export statistics: bundle is nil")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f := excelize.NewFile()
	defer f.Close()
	first := true
	used := make(map[string]bool)
	sheet := func(name string) (string, error) {
		name = uniqueSheetName(SheetName(name), used)
		if first {
			first = false
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return "", fmt.Errorf("rename sheet %s: %w", name, err)
			}
			return name, nil
		}
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("create sheet %s: %w", name, err)
		}
		return name, nil
	}

	for _, nf := range b.Tables {
		name, err := sheet(nf.Name)
		if err != nil {
			return err
		}
		if err := writeFrame(f, name, nf.Frame); err != nil {
			return err
		}
	}
	name, err := sheet(SheetMetadata)
	if err != nil {
		return err
	}
	if err := writeMetadata(f, name, b.Metadata); err != nil {
		return err
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeFrame(f *excelize.File, sheet string, frame *Frame) error {
	if err := setRow(f, sheet, 1, toAny(frame.Header())); err != nil {
		return err
	}
	for i := range frame.Index {
		row := append(toAny(frame.Index[i]), frame.Values[i]...)
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeMetadata(f *excelize.File, sheet string, meta Metadata) error {
	groups := "없음"
	if len(meta.GroupColumns) > 0 {
		groups = strings.Join(meta.GroupColumns, ", ")
	}
	rows := [][]any{
		{"항목", "값"},
		{"분석 날짜", meta.CreatedAt.Format("2006-01-02 15:04:05")},
		{"분석 대상 컬럼", meta.TargetColumn},
		{"그룹 컬럼", groups},
		{"원본 파일", meta.Source},
		{"실행 ID", meta.RunID},
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func (w *ReportWriter) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}

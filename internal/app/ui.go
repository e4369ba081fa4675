package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/01Chungee10/SA/emotion"
	"github.com/01Chungee10/SA/statistics"
)

const (
	logDebounceInterval = 150 * time.Millisecond
	maxLogLines         = 200
)

var inputExtensions = []string{".csv", ".tsv", ".xlsx", ".xlsm", ".txt"}

type uiState struct {
	service    *emotion.Service
	cfg        emotion.Config
	configPath string
	logger     *log.Logger

	w            fyne.Window
	input        *widget.Entry
	report       *widget.Entry
	log          *widget.Entry
	status       *widget.Label
	progress     *widget.ProgressBar
	summary      *widget.Label
	resTbl       *widget.Table
	statusBind   binding.String
	logBind      binding.String
	reportBind   binding.String
	progressBind binding.Float
	logLines     []string
	logMu        sync.Mutex
	logUpdateCh  chan struct{}

	// table and source describe the result currently shown; guarded by the
	// main thread.
	table      *emotion.Table
	source     string
	textColumn string
	columns    []tableColumn

	analyzeBtn *widget.Button
	fileBtn    *widget.Button
	resultBtn  *widget.Button
	statsBtn   *widget.Button
}

func buildUI(a fyne.App, svc *emotion.Service, configPath string, logger *log.Logger, logBind binding.String) *uiState {
	u := &uiState{service: svc, configPath: configPath, logger: logger, logBind: logBind}
	u.cfg = svc.Config()
	u.w = a.NewWindow("KOTE 감정 분석기")

	u.statusBind = binding.NewString()
	_ = u.statusBind.Set("준비 완료")
	u.progressBind = binding.NewFloat()
	u.reportBind = binding.NewString()
	if u.logBind == nil {
		u.logBind = binding.NewString()
	}
	u.startLogUpdater()

	u.input = widget.NewMultiLineEntry()
	u.input.SetPlaceHolder("분석할 문장을 입력하세요")
	u.input.Wrapping = fyne.TextWrapWord

	u.report = widget.NewEntryWithData(u.reportBind)
	u.report.MultiLine = true
	u.report.TextStyle = fyne.TextStyle{Monospace: true}
	u.report.SetPlaceHolder("분석 결과")

	u.log = widget.NewEntryWithData(u.logBind)
	u.log.MultiLine = true
	u.log.Wrapping = fyne.TextWrapWord
	u.log.SetPlaceHolder("처리 로그")
	u.log.Disable()

	u.status = widget.NewLabelWithData(u.statusBind)
	u.progress = widget.NewProgressBarWithData(u.progressBind)
	u.progress.Hide()
	u.summary = widget.NewLabel("")

	u.analyzeBtn = widget.NewButtonWithIcon("문장 분석", theme.ConfirmIcon(), func() { u.onAnalyzeText() })
	u.fileBtn = widget.NewButtonWithIcon("파일 분석", theme.FolderOpenIcon(), func() { u.onAnalyzeFile() })
	u.resultBtn = widget.NewButtonWithIcon("결과 불러오기", theme.DocumentIcon(), func() { u.onLoadResult() })
	u.statsBtn = widget.NewButtonWithIcon("통계 분석", theme.DocumentSaveIcon(), func() { u.onStatistics() })
	settingsBtn := widget.NewButtonWithIcon("설정", theme.SettingsIcon(), func() { u.openSettings() })

	u.resTbl = widget.NewTable(
		func() (int, int) {
			cols := len(u.columns)
			if cols == 0 {
				return 0, 0
			}
			return u.table.Len() + 1, cols
		},
		func() fyne.CanvasObject {
			lbl := widget.NewLabel("")
			lbl.Truncation = fyne.TextTruncateEllipsis
			return lbl
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			lbl := obj.(*widget.Label)
			if id.Col >= len(u.columns) {
				lbl.SetText("")
				return
			}
			if id.Row == 0 {
				lbl.TextStyle = fyne.TextStyle{Bold: true}
				lbl.Alignment = fyne.TextAlignCenter
				lbl.SetText(u.columns[id.Col].Title)
				return
			}
			lbl.TextStyle = fyne.TextStyle{}
			lbl.Alignment = fyne.TextAlignLeading
			lbl.SetText(u.columns[id.Col].Render(id.Row - 1))
		},
	)

	left := container.NewVBox(
		widget.NewLabelWithStyle("입력 문장", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewStack(u.input),
		container.NewGridWithColumns(3, u.analyzeBtn, u.fileBtn, settingsBtn),
		container.NewGridWithColumns(2, u.resultBtn, u.statsBtn),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("진행 상황", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.progress,
		u.status,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("설정 요약", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		u.summary,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("로그", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewStack(u.log),
	)
	right := container.NewVSplit(u.report, u.resTbl)
	right.Offset = 0.4
	split := container.NewHSplit(left, right)
	split.Offset = 0.35

	u.w.SetContent(split)
	u.w.Resize(fyne.NewSize(1180, 760))
	u.updateConfigSummary()
	return u
}

func (u *uiState) setBusy(b bool) {
	fyne.Do(func() {
		for _, btn := range []*widget.Button{u.analyzeBtn, u.fileBtn, u.resultBtn, u.statsBtn} {
			if b {
				btn.Disable()
			} else {
				btn.Enable()
			}
		}
	})
}

func (u *uiState) appendLog(msg string) {
	u.logMu.Lock()
	u.logLines = append(u.logLines, msg)
	if len(u.logLines) > maxLogLines {
		u.logLines = u.logLines[len(u.logLines)-maxLogLines:]
	}
	u.logMu.Unlock()
	if u.logUpdateCh == nil {
		u.flushLog()
		return
	}
	select {
	case u.logUpdateCh <- struct{}{}:
	default:
	}
}

func (u *uiState) startLogUpdater() {
	if u.logUpdateCh != nil {
		return
	}
	u.logUpdateCh = make(chan struct{}, 1)
	go u.logUpdateLoop()
}

func (u *uiState) logUpdateLoop() {
	timer := time.NewTimer(logDebounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-u.logUpdateCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(logDebounceInterval)
		case <-timer.C:
			u.flushLog()
		}
	}
}

// flushLog writes UI messages through the logger so they land next to the
// service log lines captured in logBind.
func (u *uiState) flushLog() {
	u.logMu.Lock()
	lines := u.logLines
	u.logLines = nil
	u.logMu.Unlock()
	for _, line := range lines {
		if u.logger != nil {
			u.logger.Print(line)
		}
	}
}

func (u *uiState) setStatus(text string) {
	_ = u.statusBind.Set(text)
}

func (u *uiState) startProgress() {
	_ = u.progressBind.Set(0)
	fyne.Do(func() {
		u.progress.Min = 0
		u.progress.Max = 100
		u.progress.Show()
	})
}

func (u *uiState) hideProgress() {
	fyne.Do(func() { u.progress.Hide() })
}

func (u *uiState) updateConfigSummary() {
	cfg := u.cfg
	none := emotion.SentinelLabel
	if cfg.ReplaceNone {
		none = emotion.AlternateSentinel
	}
	groups := "없음"
	if len(cfg.Statistics.GroupColumns) > 0 {
		groups = strings.Join(cfg.Statistics.GroupColumns, ", ")
	}
	u.summary.SetText(fmt.Sprintf("빈 행 처리:%s / 기본 감정:%s / 출력:%s / 그룹:%s",
		strategyLabel(cfg.Strategy), none, cfg.OutputDir, groups))
}

func (u *uiState) showResult(t *emotion.Table, source, textColumn string) {
	fyne.Do(func() {
		u.table = t
		u.source = source
		u.textColumn = textColumn
		u.columns = makeColumns(t, textColumn)
		for i, col := range u.columns {
			u.resTbl.SetColumnWidth(i, col.Width)
		}
		u.resTbl.Refresh()
	})
}

func (u *uiState) showError(err error) {
	fyne.Do(func() { dialog.ShowError(err, u.w) })
}

func (u *uiState) onAnalyzeText() {
	text := strings.TrimSpace(u.input.Text)
	if text == "" {
		dialog.ShowInformation("안내", "입력 문장이 비어 있습니다", u.w)
		return
	}
	u.setBusy(true)
	u.setStatus("분석 중...")
	go func() {
		defer u.setBusy(false)
		res, report := u.service.AnalyzeText(context.Background(), text)
		_ = u.reportBind.Set(report)
		u.setStatus(fmt.Sprintf("완료: %s (%s)", res.TopLabel, res.Polarity))
		u.appendLog(fmt.Sprintf("문장 분석: %s %.3f", res.TopLabel, res.TopScore))
	}()
}

func (u *uiState) onAnalyzeFile() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		table, err := emotion.ReadTable(path)
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		if table.Len() == 0 {
			dialog.ShowInformation("안내", "분석할 행이 없습니다", u.w)
			return
		}
		u.appendLog(fmt.Sprintf("파일 읽기: %s (%d행)", filepath.Base(path), table.Len()))
		if len(table.Columns) == 1 {
			u.runBatch(table, path, table.Columns[0])
			return
		}
		u.chooseColumn(table, path)
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter(inputExtensions))
	fd.Show()
}

func (u *uiState) chooseColumn(table *emotion.Table, path string) {
	choices := buildColumnChoices(table)
	options := make([]string, len(choices))
	for i, c := range choices {
		options[i] = c.Label
	}
	def := defaultChoice(table, choices)
	selected := choices[def].Name
	sel := widget.NewSelect(options, func(value string) {
		for i, opt := range options {
			if opt == value {
				selected = choices[i].Name
				return
			}
		}
	})
	sel.SetSelected(options[def])
	content := container.NewVBox(widget.NewLabel("분석할 텍스트 컬럼을 선택하세요"), sel)
	dialog.NewCustomConfirm("컬럼 선택", "분석", "취소", content, func(ok bool) {
		if ok {
			u.runBatch(table, path, selected)
		}
	}, u.w).Show()
}

func (u *uiState) runBatch(table *emotion.Table, path, column string) {
	u.setBusy(true)
	u.startProgress()
	u.setStatus("분석 중...")
	go func() {
		defer u.setBusy(false)
		defer u.hideProgress()
		res, err := u.service.AnalyzeTable(context.Background(), table, path, column, func(p emotion.Progress) {
			_ = u.progressBind.Set(p.Percent)
			u.setStatus(p.String())
		})
		if err != nil {
			u.setStatus("오류")
			u.appendLog(fmt.Sprintf("파일 분석 실패: %v", err))
			u.showError(err)
			return
		}
		_ = u.reportBind.Set(res.Batch.Narrative)
		u.showResult(res.Batch.Table, path, column)
		if res.SaveErr != nil {
			u.appendLog(fmt.Sprintf("결과 저장 실패: %v", res.SaveErr))
			u.showError(res.SaveErr)
		}
		u.setStatus(fmt.Sprintf("완료 %d행 (오류 %d)", res.Batch.Table.Len(), res.Batch.Errors))
	}()
}

func (u *uiState) onLoadResult() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		table, err := u.service.LoadResultFile(path)
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		summary, err := emotion.SummarizeResults(table, u.service.Labels())
		if err != nil {
			dialog.ShowError(err, u.w)
			return
		}
		_ = u.reportBind.Set(summary)
		u.showResult(table, path, guessTextColumn(table, u.cfg.TextColumn))
		u.appendLog(fmt.Sprintf("결과 파일 불러오기: %s (%d행)", filepath.Base(path), table.Len()))
	}, u.w)
	fd.SetFilter(storage.NewExtensionFileFilter(inputExtensions))
	fd.Show()
}

func (u *uiState) onStatistics() {
	table, source := u.table, u.source
	if table == nil || table.Len() == 0 {
		dialog.ShowInformation("안내", "먼저 파일을 분석하거나 결과 파일을 불러오세요", u.w)
		return
	}
	cfg := u.cfg
	var numeric []string
	for _, col := range table.Columns {
		if statistics.IsNumericColumn(table.Column(col)) {
			numeric = append(numeric, col)
		}
	}
	target := widget.NewSelect(numeric, nil)
	if table.Has(cfg.Statistics.TargetColumn) {
		target.SetSelected(cfg.Statistics.TargetColumn)
	} else if len(numeric) > 0 {
		target.SetSelected(numeric[0])
	}
	groups := widget.NewEntry()
	groups.SetPlaceHolder("쉼표로 구분 (예: 성별,연령대)")
	groups.SetText(strings.Join(cfg.Statistics.GroupColumns, ","))

	form := &widget.Form{Items: []*widget.FormItem{
		{Text: "분석 대상 컬럼", Widget: target},
		{Text: "그룹 컬럼", Widget: groups},
	}}
	dialog.NewCustomConfirm("통계 분석", "실행", "취소", form, func(ok bool) {
		if !ok {
			return
		}
		req := statistics.Request{
			Source:       source,
			TargetColumn: target.Selected,
			GroupColumns: splitList(groups.Text),
			Bins:         cfg.Statistics.Bins,
			BinLabels:    cfg.Statistics.BinLabels,
		}
		u.cfg.Statistics.GroupColumns = req.GroupColumns
		u.saveConfig()
		u.runStatistics(table, req)
	}, u.w).Show()
}

func (u *uiState) runStatistics(table *emotion.Table, req statistics.Request) {
	u.setBusy(true)
	u.setStatus("통계 분석 중...")
	outDir := u.cfg.OutputDir
	go func() {
		defer u.setBusy(false)
		start := time.Now()
		bundle, err := statistics.NewEngine(u.service.Labels(), u.logger).Compute(table, req)
		if err != nil {
			u.setStatus("오류")
			u.showError(err)
			return
		}
		for _, w := range bundle.Warnings {
			u.appendLog("경고: " + w)
		}
		path := filepath.Join(outDir, statistics.ReportFileName(req.Source, start))
		if _, err := statistics.NewReportWriter(u.logger).Export(bundle, path); err != nil {
			u.setStatus("오류")
			u.showError(err)
			return
		}
		u.service.WorkLog().Record(emotion.WorkEntry{
			Kind:     emotion.WorkStatistics,
			Started:  start,
			Duration: time.Since(start),
			Count:    table.Len(),
			File:     filepath.Base(req.Source),
			Info:     "run=" + bundle.Metadata.RunID,
		})
		_ = u.reportBind.Set(heatmapText(bundle.Heatmap))
		u.setStatus("통계 저장: " + filepath.Base(path))
		fyne.Do(func() {
			dialog.ShowInformation("통계 분석", fmt.Sprintf("통계 결과를 저장했습니다\n%s", path), u.w)
		})
	}()
}

func (u *uiState) openSettings() {
	cfg := u.cfg
	strategySel := widget.NewSelect([]string{strategyLabel(emotion.StrategySkipEmpty), strategyLabel(emotion.StrategySentinelFill)}, nil)
	strategySel.SetSelected(strategyLabel(cfg.Strategy))
	replaceCheck := widget.NewCheck("'없음' 을 '무감정' 으로 표시", nil)
	replaceCheck.SetChecked(cfg.ReplaceNone)
	outputEntry := widget.NewEntry()
	outputEntry.SetText(cfg.OutputDir)
	columnEntry := widget.NewEntry()
	columnEntry.SetPlaceHolder("자동 감지")
	columnEntry.SetText(cfg.TextColumn)

	form := &widget.Form{Items: []*widget.FormItem{
		{Text: "빈 행 처리", Widget: strategySel},
		{Text: "기본 감정", Widget: replaceCheck},
		{Text: "출력 폴더", Widget: outputEntry},
		{Text: "텍스트 컬럼", Widget: columnEntry},
	}}
	dialog.NewCustomConfirm("설정", "확인", "취소", form, func(ok bool) {
		if !ok {
			return
		}
		newCfg := cfg.Clone()
		newCfg.Strategy = strategyFromLabel(strategySel.Selected)
		newCfg.ReplaceNone = replaceCheck.Checked
		newCfg.OutputDir = strings.TrimSpace(outputEntry.Text)
		newCfg.TextColumn = strings.TrimSpace(columnEntry.Text)
		newCfg.ApplyDefaults()
		u.service.UpdateConfig(newCfg)
		u.cfg = u.service.Config()
		u.saveConfig()
		u.updateConfigSummary()
		u.appendLog("설정을 변경했습니다")
	}, u.w).Show()
}

func (u *uiState) saveConfig() {
	if err := emotion.SaveConfig(u.configPath, u.cfg); err != nil {
		u.appendLog(fmt.Sprintf("설정 저장 실패: %v", err))
	}
}

func strategyLabel(s emotion.Strategy) string {
	if s == emotion.StrategySentinelFill {
		return "빈 행도 '없음' 으로 채우기"
	}
	return "빈 행 건너뛰기"
}

func strategyFromLabel(label string) emotion.Strategy {
	if label == strategyLabel(emotion.StrategySentinelFill) {
		return emotion.StrategySentinelFill
	}
	return emotion.StrategySkipEmpty
}

// heatmapText renders the polarity share of each heatmap group.
func heatmapText(h *statistics.Heatmap) string {
	if h == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("감정 극성 분포\n")
	for _, key := range h.Order {
		g := h.Groups[key]
		fmt.Fprintf(&b, "%s (%d건):", key, g.TotalCount)
		for _, p := range emotion.Polarities {
			fmt.Fprintf(&b, " %s %.1f%%", p, g.PolarityPercentages[p])
		}
		b.WriteString("\n")
	}
	failed := make([]string, 0, len(h.Errors))
	for key := range h.Errors {
		failed = append(failed, key)
	}
	sort.Strings(failed)
	for _, key := range failed {
		fmt.Fprintf(&b, "%s: 계산 실패 (%s)\n", key, h.Errors[key])
	}
	return b.String()
}

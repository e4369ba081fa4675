package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/01Chungee10/SA/emotion"
	"github.com/01Chungee10/SA/statistics"
)

type cliOptions struct {
	configPath  string
	inputPath   string
	resultPath  string
	text        string
	textColumn  string
	strategy    string
	outputDir   string
	replaceNone bool
	stats       bool
	statsOutput string
	groups      string
	target      string
	stdout      bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("emotion-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("emotion-cli: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json or config.yaml (default: ./config.json)")
	flag.StringVar(&opts.inputPath, "input", "", "CSV/TSV/XLSX/text file containing texts to analyze")
	flag.StringVar(&opts.resultPath, "result", "", "Previously saved result file to run statistics on (no model needed)")
	flag.StringVar(&opts.text, "text", "", "Analyze a single text and print the score table")
	flag.StringVar(&opts.textColumn, "text-column", "", "Column name or #index holding the text (default: auto-detect)")
	flag.StringVar(&opts.strategy, "strategy", "", "Empty row handling: skip or sentinel")
	flag.StringVar(&opts.outputDir, "output-dir", "", "Directory for result files and the work log")
	flag.BoolVar(&opts.replaceNone, "replace-none", false, "Rename the 없음 label to 무감정")
	flag.BoolVar(&opts.stats, "stats", false, "Export a statistics workbook after the analysis")
	flag.StringVar(&opts.statsOutput, "stats-output", "", "Workbook path (default uses --output-dir/{name}_통계분석_*.xlsx)")
	flag.StringVar(&opts.groups, "group", "", "Comma separated group columns for grouped statistics")
	flag.StringVar(&opts.target, "target", "", "Value column for statistics (default: 감정_강도)")
	flag.BoolVar(&opts.stdout, "stdout", false, "Print the analysis narrative to STDOUT")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s (--input FILE | --text TEXT | --result FILE) [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.inputPath = strings.TrimSpace(opts.inputPath)
	opts.resultPath = strings.TrimSpace(opts.resultPath)
	opts.text = strings.TrimSpace(opts.text)
	if opts.inputPath == "" && opts.resultPath == "" && opts.text == "" {
		flag.Usage()
		return opts, errors.New("one of --input, --text or --result is required")
	}
	if opts.resultPath != "" {
		opts.stats = true
	}
	return opts, nil
}

func loadConfig(opts cliOptions) (emotion.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return emotion.Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := emotion.LoadConfig(opts.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if opts.strategy != "" {
		cfg.Strategy = emotion.Strategy(opts.strategy)
	}
	if opts.replaceNone {
		cfg.ReplaceNone = true
	}
	if opts.textColumn != "" {
		cfg.TextColumn = opts.textColumn
	}
	if opts.groups != "" {
		cfg.Statistics.GroupColumns = splitList(opts.groups)
	}
	if opts.target != "" {
		cfg.Statistics.TargetColumn = opts.target
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func run(opts cliOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if opts.resultPath != "" && opts.inputPath == "" && opts.text == "" {
		table, err := emotion.LoadResultTable(opts.resultPath)
		if err != nil {
			return err
		}
		worklog := emotion.NewWorkLog(cfg.OutputDir, logger)
		return exportStatistics(table, opts.resultPath, cfg, opts, worklog, logger)
	}

	labels := emotion.KOTELabels()
	adapter, err := emotion.NewModelAdapter(cfg.Model, labels)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}
	service, err := emotion.NewService(adapter, cfg, logger)
	if err != nil {
		adapter.Close()
		return fmt.Errorf("init service: %w", err)
	}
	defer service.Close()

	ctx := context.Background()
	if opts.text != "" {
		_, report := service.AnalyzeText(ctx, opts.text)
		fmt.Println(report)
	}
	if opts.inputPath == "" {
		return nil
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("감정 분석"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	result, err := service.AnalyzeFile(ctx, opts.inputPath, cfg.TextColumn, func(p emotion.Progress) {
		bar.ChangeMax(p.Total)
		_ = bar.Set(p.Processed)
	})
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("analyze file: %w", err)
	}
	if result.SaveErr != nil {
		fmt.Fprintf(os.Stderr, "결과 파일을 저장하지 못했습니다: %v\n", result.SaveErr)
	} else {
		fmt.Printf("분석 결과를 %s 에 저장했습니다\n", result.SavedPath)
	}
	if opts.stdout {
		fmt.Println()
		fmt.Println(result.Batch.Narrative)
	}
	if !opts.stats {
		return nil
	}
	return exportStatistics(result.Batch.Table, opts.inputPath, cfg, opts, service.WorkLog(), logger)
}

func exportStatistics(table *emotion.Table, source string, cfg emotion.Config, opts cliOptions, worklog *emotion.WorkLog, logger *log.Logger) error {
	start := time.Now()
	engine := statistics.NewEngine(emotion.KOTELabels(), logger)
	bundle, err := engine.Compute(table, statistics.Request{
		Source:       source,
		TargetColumn: cfg.Statistics.TargetColumn,
		GroupColumns: cfg.Statistics.GroupColumns,
		Bins:         cfg.Statistics.Bins,
		BinLabels:    cfg.Statistics.BinLabels,
	})
	if err != nil {
		return fmt.Errorf("compute statistics: %w", err)
	}
	for _, w := range bundle.Warnings {
		fmt.Fprintf(os.Stderr, "경고: %s\n", w)
	}
	path, err := resolveOutputPath(opts.statsOutput, cfg.OutputDir, statistics.ReportFileName(source, start))
	if err != nil {
		return err
	}
	if _, err := statistics.NewReportWriter(logger).Export(bundle, path); err != nil {
		return fmt.Errorf("export statistics: %w", err)
	}
	worklog.Record(emotion.WorkEntry{
		Kind:     emotion.WorkStatistics,
		Started:  start,
		Duration: time.Since(start),
		Count:    table.Len(),
		File:     filepath.Base(source),
		Info:     "run=" + bundle.Metadata.RunID,
	})
	fmt.Printf("통계 결과를 %s 에 저장했습니다\n", path)
	if opts.stdout {
		printSummary(bundle)
	}
	return nil
}

func resolveOutputPath(path, dir, name string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return filepath.Join(absDir, name), nil
}

func printSummary(bundle *statistics.Bundle) {
	for _, nf := range bundle.Tables {
		fmt.Printf("\n==== %s ====\n", nf.Name)
		fmt.Print(nf.Frame.String())
	}
	if bundle.Heatmap == nil {
		return
	}
	fmt.Println("\n==== 감정 극성 분포 ====")
	for _, key := range bundle.Heatmap.Order {
		g := bundle.Heatmap.Groups[key]
		fmt.Printf("%s (%d건):", key, g.TotalCount)
		for _, p := range emotion.Polarities {
			fmt.Printf(" %s %.1f%%", p, g.PolarityPercentages[p])
		}
		fmt.Println()
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

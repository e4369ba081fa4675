package emotion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"time"
)

// Service wires the analyzer, batch engine, persister and work log around a
// single inference adapter.
type Service struct {
	labels   LabelSet
	adapter  InferenceAdapter
	analyzer *Analyzer
	engine   *Engine

	cfgMu sync.RWMutex
	cfg   Config

	logger *log.Logger
}

// FileAnalysis is the outcome of AnalyzeFile. SaveErr is set when the result
// could not be written; Batch is still valid in that case.
type FileAnalysis struct {
	Batch     *BatchResult
	SavedPath string
	SaveErr   error
}

// NewModelAdapter builds the ONNX adapter described by cfg, wrapped in a
// score cache.
func NewModelAdapter(cfg ModelConfig, labels LabelSet) (*CachedAdapter, error) {
	ortAdapter, err := NewOrtAdapter(cfg, labels)
	if err != nil {
		return nil, err
	}
	cached, err := NewCachedAdapter(ortAdapter, labels, cfg.ModelID, cfg.CacheDir)
	if err != nil {
		ortAdapter.Close()
		return nil, err
	}
	return cached, nil
}

// NewService constructs a service around adapter using the KOTE labels.
func NewService(adapter InferenceAdapter, cfg Config, logger *log.Logger) (*Service, error) {
	return NewServiceWithLabels(adapter, KOTELabels(), cfg, logger)
}

// NewServiceWithLabels constructs a service with a custom label set.
func NewServiceWithLabels(adapter InferenceAdapter, labels LabelSet, cfg Config, logger *log.Logger) (*Service, error) {
	analyzer, err := NewAnalyzer(labels, adapter, logger)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &Service{
		labels:   labels,
		adapter:  adapter,
		analyzer: analyzer,
		engine:   NewEngine(analyzer, logger),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Close releases adapter resources.
func (s *Service) Close() error {
	if closer, ok := s.adapter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Labels returns the label set.
func (s *Service) Labels() LabelSet { return s.labels }

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig replaces the configuration.
func (s *Service) UpdateConfig(cfg Config) {
	cfg.ApplyDefaults()
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
}

// WorkLog returns the work log for the configured output directory, or nil
// when logging is disabled.
func (s *Service) WorkLog() *WorkLog {
	cfg := s.Config()
	if !cfg.WorkLogEnabled() {
		return nil
	}
	return NewWorkLog(cfg.OutputDir, s.logger)
}

// AnalyzeText analyzes a single text and returns the result with its report.
func (s *Service) AnalyzeText(ctx context.Context, text string) (RowResult, string) {
	cfg := s.Config()
	start := time.Now()
	res := s.analyzer.Analyze(ctx, text, cfg.ReplaceNone)
	s.WorkLog().Record(WorkEntry{
		Kind:     WorkTextAnalysis,
		Started:  start,
		Duration: time.Since(start),
		Count:    1,
		Info:     fmt.Sprintf("%s (%s)", res.TopLabel, res.Polarity),
	})
	return res, TextReport(NormalizeText(text), res, s.labels)
}

// AnalyzeFile loads path, analyzes textColumn (auto-detected when empty) and
// saves the result next to the configured output directory.
func (s *Service) AnalyzeFile(ctx context.Context, path, textColumn string, progress func(Progress)) (*FileAnalysis, error) {
	start := time.Now()
	table, err := ReadTable(path)
	if err != nil {
		s.recordFailure(path, start, err)
		return nil, fmt.Errorf("load input: %w", err)
	}
	if textColumn == "" {
		textColumn = s.Config().TextColumn
	}
	column, err := ResolveColumn(table, textColumn)
	if err != nil {
		s.recordFailure(path, start, err)
		return nil, err
	}
	return s.AnalyzeTable(ctx, table, path, column, progress)
}

// AnalyzeTable runs the batch engine over table and persists the result.
func (s *Service) AnalyzeTable(ctx context.Context, table *Table, source, textColumn string, progress func(Progress)) (*FileAnalysis, error) {
	cfg := s.Config()
	start := time.Now()
	batch, err := s.engine.Run(ctx, table, BatchOptions{
		TextColumn:  textColumn,
		Strategy:    cfg.Strategy,
		ReplaceNone: cfg.ReplaceNone,
		Source:      source,
		Progress:    progress,
	})
	if err != nil {
		s.recordFailure(source, start, err)
		return nil, err
	}
	out := &FileAnalysis{Batch: batch}
	persister := NewPersister(s.labels, cfg.OutputDir, s.logger)
	out.SavedPath, out.SaveErr = persister.Save(batch.Table, source, cfg.ReplaceNone)
	info := fmt.Sprintf("run=%s column=%s strategy=%s errors=%d", batch.Provenance.RunID, textColumn, cfg.Strategy, batch.Errors)
	if out.SaveErr != nil {
		info += " save_failed"
	}
	s.WorkLog().Record(WorkEntry{
		Kind:     WorkFileAnalysis,
		Started:  start,
		Duration: time.Since(start),
		Count:    batch.Table.Len(),
		File:     filepath.Base(source),
		Info:     info,
	})
	s.logf("파일 분석 완료: %d행, 저장 경로=%q", batch.Table.Len(), out.SavedPath)
	return out, nil
}

// LoadResultFile reads a previously saved result and checks that it carries
// the derived columns.
func (s *Service) LoadResultFile(path string) (*Table, error) {
	start := time.Now()
	table, err := LoadResultTable(path)
	if err != nil {
		return nil, err
	}
	s.WorkLog().Record(WorkEntry{
		Kind:     WorkFileLoad,
		Started:  start,
		Duration: time.Since(start),
		Count:    table.Len(),
		File:     filepath.Base(path),
	})
	return table, nil
}

// LoadResultTable reads a result file without a model, failing with
// *ColumnNotFoundError when a derived column is absent.
func LoadResultTable(path string) (*Table, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	for _, col := range derivedColumns {
		if _, err := table.Require(col); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (s *Service) recordFailure(source string, start time.Time, err error) {
	var notFound *ColumnNotFoundError
	info := err.Error()
	if errors.As(err, &notFound) {
		info = "column not found: " + notFound.Column
	}
	s.WorkLog().Record(WorkEntry{
		Kind:     WorkFileAnalysisNG,
		Started:  start,
		Duration: time.Since(start),
		File:     filepath.Base(source),
		Info:     info,
	})
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

package emotion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// WorkLogFile is the name of the operation log inside the output directory.
const WorkLogFile = "감정분석_작업기록.csv"

// Work log operation kinds.
const (
	WorkFileAnalysis   = "파일_감정분석"
	WorkTextAnalysis   = "텍스트_감정분석"
	WorkFileLoad       = "파일_로드"
	WorkFileAnalysisNG = "파일_감정분석_오류"
	WorkStatistics     = "통계분석"
)

var workLogHeader = []string{"작업분류", "작업시작시간", "소요시간(초)", "분석건수", "파일명", "기타정보"}

// WorkEntry is one row of the work log.
type WorkEntry struct {
	Kind     string
	Started  time.Time
	Duration time.Duration
	Count    int
	File     string
	Info     string
}

// WorkLog appends operation records to a CSV file.
type WorkLog struct {
	path   string
	logger *log.Logger
	mu     sync.Mutex
}

// NewWorkLog writes to dir/감정분석_작업기록.csv.
func NewWorkLog(dir string, logger *log.Logger) *WorkLog {
	if dir == "" {
		dir = defaultOutputDir
	}
	return &WorkLog{path: filepath.Join(dir, WorkLogFile), logger: logger}
}

// Path returns the log file location.
func (w *WorkLog) Path() string { return w.path }

// Record appends entry. Failures are logged and otherwise ignored so that
// logging never fails the operation it describes.
func (w *WorkLog) Record(entry WorkEntry) {
	if w == nil {
		return
	}
	if err := w.append(entry); err != nil && w.logger != nil {
		w.logger.Printf("작업 기록 저장 실패: %v", err)
	}
}

func (w *WorkLog) append(entry WorkEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	_, statErr := os.Stat(w.path)
	fresh := errors.Is(statErr, os.ErrNotExist)
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open work log: %w", err)
	}
	defer f.Close()
	writer := csv.NewWriter(f)
	if fresh {
		if _, err := io.WriteString(f, utf8BOM); err != nil {
			return fmt.Errorf("write bom: %w", err)
		}
		if err := writer.Write(workLogHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	record := []string{
		entry.Kind,
		entry.Started.Format("2006-01-02 15:04:05"),
		strconv.FormatFloat(entry.Duration.Seconds(), 'f', 2, 64),
		strconv.Itoa(entry.Count),
		entry.File,
		entry.Info,
	}
	if err := writer.Write(record); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	writer.Flush()
	return writer.Error()
}


package emotion

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readWorkLog(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte(utf8BOM)))
	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWorkLogAppendsWithSingleHeader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	wl := NewWorkLog(dir, nil)
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)

	wl.Record(WorkEntry{Kind: WorkFileAnalysis, Started: start, Duration: 1500 * time.Millisecond, Count: 10, File: "a.csv", Info: "run=1"})
	wl.Record(WorkEntry{Kind: WorkTextAnalysis, Started: start, Count: 1})

	assert.Equal(t, filepath.Join(dir, WorkLogFile), wl.Path())
	records := readWorkLog(t, wl.Path())
	require.Len(t, records, 3)
	assert.Equal(t, workLogHeader, records[0])
	assert.Equal(t, []string{WorkFileAnalysis, "2024-03-01 09:30:00", "1.50", "10", "a.csv", "run=1"}, records[1])
	assert.Equal(t, WorkTextAnalysis, records[2][0])
}

func TestWorkLogNilIsNoop(t *testing.T) {
	var wl *WorkLog
	assert.NotPanics(t, func() { wl.Record(WorkEntry{Kind: WorkFileLoad}) })
}

func TestWorkLogFailureIsSwallowed(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	wl := NewWorkLog(filepath.Join(blocker, "out"), nil)
	assert.NotPanics(t, func() { wl.Record(WorkEntry{Kind: WorkFileLoad}) })
}

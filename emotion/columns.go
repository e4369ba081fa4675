package emotion

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

var (
	textCandidatesMu sync.RWMutex
	textCandidates   = defaultTextCandidates()
)

func defaultTextCandidates() []string {
	return []string{"text", "텍스트", "내용", "본문", "리뷰", "댓글", "문장", "content", "review", "comment", "message"}
}

// DefaultTextCandidates returns the built-in header names tried when
// auto-detecting the text column.
func DefaultTextCandidates() []string {
	return cloneStrings(defaultTextCandidates())
}

// SetTextCandidates replaces the auto-detection candidates. A nil slice
// restores the defaults.
func SetTextCandidates(candidates []string) {
	textCandidatesMu.Lock()
	defer textCandidatesMu.Unlock()
	if candidates == nil {
		textCandidates = defaultTextCandidates()
		return
	}
	textCandidates = cloneStrings(candidates)
}

// DetectTextColumn returns the first column matching a candidate name, or the
// first string column when nothing matches. It returns "" for an empty table.
func DetectTextColumn(t *Table) string {
	textCandidatesMu.RLock()
	candidates := cloneStrings(textCandidates)
	textCandidatesMu.RUnlock()
	for _, cand := range candidates {
		for _, col := range t.Columns {
			if strings.EqualFold(col, cand) {
				return col
			}
		}
	}
	for i, col := range t.Columns {
		for r := range t.Rows {
			if _, ok := t.Value(r, i).(string); ok {
				return col
			}
		}
	}
	if len(t.Columns) > 0 {
		return t.Columns[0]
	}
	return ""
}

// ResolveColumn maps an explicit selection (a header name, case-insensitive,
// or a 1-based "#n" index) to the column name. An empty selection falls back
// to DetectTextColumn.
func ResolveColumn(t *Table, explicit string) (string, error) {
	trimmed := strings.TrimSpace(explicit)
	if trimmed == "" {
		if col := DetectTextColumn(t); col != "" {
			return col, nil
		}
		return "", &ColumnNotFoundError{Column: "(auto)", Available: cloneStrings(t.Columns)}
	}
	for _, col := range t.Columns {
		if col == trimmed {
			return col, nil
		}
	}
	for _, col := range t.Columns {
		if strings.EqualFold(col, trimmed) {
			return col, nil
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		idx, err := parseColumnIndex(trimmed)
		if err != nil {
			return "", err
		}
		if idx >= len(t.Columns) {
			return "", fmt.Errorf("column index %s is out of range", trimmed)
		}
		return t.Columns[idx], nil
	}
	return "", &ColumnNotFoundError{Column: trimmed, Available: cloneStrings(t.Columns)}
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

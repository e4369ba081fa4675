package app

import (
	"strings"
	"sync"
)

// logCapture keeps the last limit log lines and publishes them through set,
// typically a binding.String setter.
type logCapture struct {
	mu    sync.Mutex
	lines []string
	limit int
	set   func(string) error
}

func newLogCapture(set func(string) error, limit int) *logCapture {
	return &logCapture{set: set, limit: limit}
}

func (l *logCapture) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	text := strings.ReplaceAll(string(p), "\r\n", "\n")
	for _, part := range strings.Split(text, "\n") {
		if part == "" {
			continue
		}
		l.lines = append(l.lines, part)
	}
	if len(l.lines) > l.limit {
		l.lines = l.lines[len(l.lines)-l.limit:]
	}
	if l.set != nil {
		_ = l.set(strings.Join(l.lines, "\n"))
	}
	return len(p), nil
}

func (l *logCapture) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.lines, "\n")
}

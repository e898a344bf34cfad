// Package logger carries run output in the fixed line format the
// dashboards parse: "<timestamp> [LEVEL] <message>", timestamp as
// "2006-01-02 15:04:05,mmm". Stages receive a Logger so tests can
// capture what a run said.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Standard writes contract-format lines to one or more writers. Writes
// are serialized so concurrent sources never interleave within a line.
type Standard struct {
	mu  sync.Mutex
	out []io.Writer
	now func() time.Time
}

func New(outs ...io.Writer) *Standard {
	if len(outs) == 0 {
		outs = []io.Writer{os.Stderr}
	}
	return &Standard{out: outs, now: time.Now}
}

func (l *Standard) Infof(format string, args ...any)  { l.emit("INFO", format, args) }
func (l *Standard) Warnf(format string, args ...any)  { l.emit("WARNING", format, args) }
func (l *Standard) Errorf(format string, args ...any) { l.emit("ERROR", format, args) }

func (l *Standard) emit(level, format string, args []any) {
	line := FormatLine(l.now(), level, fmt.Sprintf(format, args...))
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.out {
		io.WriteString(w, line)
	}
}

// FormatLine renders one log line, newline included. The millisecond
// separator is a comma, not a dot.
func FormatLine(t time.Time, level, msg string) string {
	return fmt.Sprintf("%s,%03d [%s] %s\n", t.Format("2006-01-02 15:04:05"), t.Nanosecond()/1e6, level, msg)
}

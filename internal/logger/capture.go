package logger

import (
	"fmt"
	"strings"
	"sync"
)

// Capture records messages instead of writing them. Test helper.
type Capture struct {
	mu    sync.Mutex
	lines []string
}

func NewCapture() *Capture { return &Capture{} }

func (c *Capture) Infof(format string, args ...any)  { c.record("INFO", format, args) }
func (c *Capture) Warnf(format string, args ...any)  { c.record("WARNING", format, args) }
func (c *Capture) Errorf(format string, args ...any) { c.record("ERROR", format, args) }

func (c *Capture) record(level, format string, args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf("[%s] ", level)+fmt.Sprintf(format, args...))
}

// Lines returns everything logged so far, one "[LEVEL] message" per entry.
func (c *Capture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// Contains reports whether any recorded line contains substr.
func (c *Capture) Contains(substr string) bool {
	for _, ln := range c.Lines() {
		if strings.Contains(ln, substr) {
			return true
		}
	}
	return false
}

// Count returns how many recorded lines contain substr.
func (c *Capture) Count(substr string) int {
	n := 0
	for _, ln := range c.Lines() {
		if strings.Contains(ln, substr) {
			n++
		}
	}
	return n
}

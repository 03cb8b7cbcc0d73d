package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// TestLogger keeps every entry in memory so tests can assert on what was logged.
type TestLogger struct {
	Logger
	hook *test.Hook
}

// NewTestLogger returns a debug-level logger that writes nowhere.
func NewTestLogger() *TestLogger {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return &TestLogger{
		Logger: &LogrusLogger{entry: logrus.NewEntry(l)},
		hook:   hook,
	}
}

// Messages returns the logged messages in order.
func (t *TestLogger) Messages() []string {
	entries := t.hook.AllEntries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

// Logged reports whether an entry at level contains substr.
func (t *TestLogger) Logged(level logrus.Level, substr string) bool {
	for _, e := range t.hook.AllEntries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// Reset drops the recorded entries.
func (t *TestLogger) Reset() {
	t.hook.Reset()
}

package logger

import "context"

// NopLogger discards everything. Used by tests and as a nil-safe fallback.
type NopLogger struct{}

// NewNopLogger returns a Logger that does nothing.
func NewNopLogger() Logger {
	return NopLogger{}
}

func (NopLogger) Debug(args ...interface{})                 {}
func (NopLogger) Info(args ...interface{})                  {}
func (NopLogger) Warn(args ...interface{})                  {}
func (NopLogger) Error(args ...interface{})                 {}
func (NopLogger) Fatal(args ...interface{})                 {}
func (NopLogger) Debugf(format string, args ...interface{}) {}
func (NopLogger) Infof(format string, args ...interface{})  {}
func (NopLogger) Warnf(format string, args ...interface{})  {}
func (NopLogger) Errorf(format string, args ...interface{}) {}
func (NopLogger) Fatalf(format string, args ...interface{}) {}

func (n NopLogger) WithFields(fields map[string]interface{}) Logger { return n }
func (n NopLogger) WithContext(ctx context.Context) Logger          { return n }
func (n NopLogger) WithComponent(component string) Logger           { return n }

package logging

import "github.com/vvka-141/genmeta/pkg/genmeta"

var (
	_ genmeta.Logger = (*NullLogger)(nil)
	_ genmeta.Logger = (*ConsoleLogger)(nil)
	_ genmeta.Logger = (*PrefixLogger)(nil)
)

// NullLogger discards all log messages. Library callers that do not want
// diagnostics, and most tests, use it.
type NullLogger struct{}

// NewNullLogger creates a new NullLogger.
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Verbose(format string, args ...interface{}) {}
func (l *NullLogger) Info(format string, args ...interface{})    {}
func (l *NullLogger) Error(format string, args ...interface{})   {}

package logging

import "github.com/vvka-141/genmeta/pkg/genmeta"

// PrefixLogger tags every message with a fixed prefix, typically the image
// being processed when many are handled in one run.
type PrefixLogger struct {
	next   genmeta.Logger
	prefix string
}

// WithPrefix wraps next. Panics if next is nil.
func WithPrefix(next genmeta.Logger, prefix string) *PrefixLogger {
	if next == nil {
		panic("next cannot be nil")
	}
	return &PrefixLogger{next: next, prefix: "[" + prefix + "] "}
}

func (l *PrefixLogger) Verbose(format string, args ...interface{}) {
	l.next.Verbose(l.prefix+format, args...)
}

func (l *PrefixLogger) Info(format string, args ...interface{}) {
	l.next.Info(l.prefix+format, args...)
}

func (l *PrefixLogger) Error(format string, args ...interface{}) {
	l.next.Error(l.prefix+format, args...)
}

package mailcheck

import (
	"log/slog"
	"testing"
)

// Reporter receives test failures: missing configuration, timeouts and
// empty content. It is the only failure channel besides returned errors.
type Reporter interface {
	Fail(msg string)
}

type ReporterFunc func(msg string)

func (f ReporterFunc) Fail(msg string) { f(msg) }

// TB reports through tb.Fatal, which ends the calling test immediately.
func TB(tb testing.TB) Reporter {
	return ReporterFunc(func(msg string) {
		tb.Helper()
		tb.Fatal(msg)
	})
}

// LogReporter logs failures at error level. Callers still get the error.
func LogReporter(logger *slog.Logger) Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return ReporterFunc(func(msg string) {
		logger.Error("mail check failed", "reason", msg)
	})
}

func report(r Reporter, msg string) {
	if r != nil {
		r.Fail(msg)
	}
}

// Package logging provides chmweb's phase-prefixed progress logger, in
// the teacher's style of short glyph-annotated lines (builder/parser's
// "   ⚠️  ..." progress prints) rather than a heavyweight structured
// logging framework — this pipeline has five linear phases and the
// reader benefits more from a terse human-readable trace than from
// key=value fields.
package logging

import (
	"fmt"
	"log"
	"os"

	"chmweb/core/chmerr"
)

// Phase names one of the five pipeline stages for log-line prefixing.
type Phase string

const (
	PhaseUnpack   Phase = "unpack"
	PhaseIndex    Phase = "index"
	PhaseDiscover Phase = "discover"
	PhaseRewrite  Phase = "rewrite"
	PhaseEmit     Phase = "emit"
)

// Logger writes phase-prefixed progress lines and doubles as a
// chmerr.WarningSink.
type Logger struct {
	std *log.Logger
}

// New returns a Logger writing to stderr.
func New() *Logger {
	return &Logger{std: log.New(os.Stderr, "", log.LstdFlags)}
}

// Info logs a progress line for phase.
func (l *Logger) Info(phase Phase, format string, args ...interface{}) {
	l.std.Printf("[%s] %s", phase, fmt.Sprintf(format, args...))
}

// Warn implements chmerr.WarningSink: warnings are printed with a "[warn]"
// prefix but never stop the pipeline.
func (l *Logger) Warn(w *chmerr.Warning) {
	l.std.Printf("[warn] %s", w.Error())
}

// Fatal logs and exits the process with status 1, matching spec.md §7:
// only structural corruption / worker death reach here.
func (l *Logger) Fatal(err *chmerr.FatalError) {
	l.std.Printf("[fatal] %v", err)
	os.Exit(1)
}

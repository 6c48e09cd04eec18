// Package diagnostics reports on the driver's own activity -- failed
// compiles, malformed dep files, and import-legality violations -- using
// the same colored, phase-spinner-driven console style as the rest of the
// ambient stack.
package diagnostics

import "sync"

// Enumeration of the driver's log levels, from least to most verbose. The
// level governs only which logged messages are displayed; the build header,
// project list, phase spinner, and closing summary print at every level.
const (
	LogLevelSilent  = iota // no logged messages displayed
	LogLevelError          // logged errors only
	LogLevelWarning        // logged errors and warnings
	LogLevelVerbose        // logged errors and warnings (default)
)

// Message is anything the logger can record and, eventually, display.
type Message interface {
	isError() bool
	display()
}

// Logger accumulates errors and warnings across a single compile run. It's
// safe for concurrent use, since the supervisor reports results from
// multiple in-flight compiles at once.
type Logger struct {
	errorCount int
	LogLevel   int

	warnings []Message

	buildPath string

	m sync.Mutex
}

func newLogger(buildPath string, loglevel int) *Logger {
	return &Logger{buildPath: buildPath, LogLevel: loglevel}
}

// handleMsg records m and displays it immediately when the log level allows
// (errors above silent, warnings at warning level and above), so problems
// surface as soon as they happen; the closing summary only reports counts.
func (l *Logger) handleMsg(m Message) {
	l.m.Lock()
	defer l.m.Unlock()

	if m.isError() {
		l.errorCount++
		if l.LogLevel > LogLevelSilent {
			EndPhase(false)
			m.display()
		}
	} else {
		l.warnings = append(l.warnings, m)
		if l.LogLevel >= LogLevelWarning {
			m.display()
		}
	}
}

// ErrorCount returns the number of errors logged so far.
func (l *Logger) ErrorCount() int {
	l.m.Lock()
	defer l.m.Unlock()
	return l.errorCount
}

// WarningCount returns the number of warnings logged so far.
func (l *Logger) WarningCount() int {
	l.m.Lock()
	defer l.m.Unlock()
	return len(l.warnings)
}

package diagnostics

import (
	"fmt"
	"os"

	"forge/model"
)

// logger is the global logger shared by every goroutine reporting
// diagnostics during a single driver invocation.
var logger *Logger

// Initialize sets up the global logger for a driver invocation. buildPath
// is used to shorten displayed source paths.
func Initialize(buildPath string, levelName string) {
	var level int
	switch levelName {
	case "silent":
		level = LogLevelSilent
	case "error":
		level = LogLevelError
	case "warning":
		level = LogLevelWarning
	default:
		level = LogLevelVerbose
	}

	logger = newLogger(buildPath, level)
}

// ShouldProceed reports whether no errors have been logged yet. The
// supervisor consults this under fail-fast policy to decide whether to stop
// spawning new compiles (§4.9).
func ShouldProceed() bool {
	return logger.ErrorCount() == 0
}

// LogCompileFailure logs a compiler process that exited with a non-zero
// status for the given source.
func LogCompileFailure(sourcePath string, exitErr error) {
	logger.handleMsg(&compileFailureMessage{SourcePath: sourcePath, Err: exitErr})
}

// LogDepFileError logs a dep file that could not be parsed after an
// otherwise-successful compile.
func LogDepFileError(depPath string, err error) {
	logger.handleMsg(&depFileErrorMessage{DepPath: depPath, Err: err})
}

// LogImportViolation logs a dependency discovered in a dep file that the
// legality checker classified as disallowed or interface-hidden (§4.10).
func LogImportViolation(sourcePath, dependencyPath string, class model.ImportClassification) {
	logger.handleMsg(&importViolationMessage{
		SourcePath:     sourcePath,
		DependencyPath: dependencyPath,
		Class:          class,
	})
}

// LogConfigError logs an error in the project description itself (e.g. an
// unresolvable import, a malformed forge-project.toml).
func LogConfigError(kind, message string) {
	logger.handleMsg(&configErrorMessage{Kind: kind, Message: message})
}

// LogWarning logs a non-fatal warning.
func LogWarning(kind, message string) {
	logger.handleMsg(&warningMessage{Kind: kind, Message: message})
}

// LogFatal reports a failure fatal to the whole run -- a disk-full switches
// file write, a missing compiler driver, a failed spawn, a config file that
// cannot be generated -- and terminates the process.
func LogFatal(message string) {
	fmt.Print("\n\n")
	ErrorStyleBG.Print("Fatal Error ")
	ErrorColorFG.Println(message)
	os.Exit(1)
}

// Summary prints the closing summary line and returns the run's overall
// success: true if no errors were logged.
func Summary() bool {
	success := logger.ErrorCount() == 0
	DisplayBuildFinished(success, logger.ErrorCount(), logger.WarningCount())
	return success
}

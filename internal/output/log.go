// Package output holds the process-wide logger used for progress and
// diagnostics. Everything goes to stderr unless redirected.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel})

// SetupLogging switches between normal and verbose logging. Verbose adds
// debug records with timestamps and call sites. The destination set by
// SetOutput is kept.
func SetupLogging(verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	logger.SetReportTimestamp(verbose)
	logger.SetReportCaller(verbose)
}

// SetOutput redirects log records to w.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Debug, Info, Warn and Error log msg with alternating key/value pairs.
func Debug(msg string, keyvals ...any) {
	logger.Helper()
	logger.Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	logger.Helper()
	logger.Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	logger.Helper()
	logger.Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	logger.Helper()
	logger.Error(msg, keyvals...)
}

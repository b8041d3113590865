// Package mlog is a thin leveled-logging wrapper around charmbracelet/log,
// shared by the engine and the cmd/mjsim driver.
package mlog

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var logger *log.Logger

func init() {
	logger = log.New(os.Stderr)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.TimeOnly)
	logger.SetLevel(log.InfoLevel)
}

// Init (re)configures the package logger with a prefix and level.
func Init(prefix string, level log.Level) {
	logger.SetPrefix(prefix)
	logger.SetLevel(level)
}

func Fatal(format string, args ...any) {
	if len(args) == 0 {
		logger.Fatal(format)
	} else {
		logger.Fatal(format, args...)
	}
}

func Info(format string, args ...any) {
	if len(args) == 0 {
		logger.Info(format)
	} else {
		logger.Info(format, args...)
	}
}

func Warn(format string, args ...any) {
	if len(args) == 0 {
		logger.Warn(format)
	} else {
		logger.Warn(format, args...)
	}
}

func Error(format string, args ...any) {
	if len(args) == 0 {
		logger.Error(format)
	} else {
		logger.Error(format, args...)
	}
}

func Debug(format string, args ...any) {
	if len(args) == 0 {
		logger.Debug(format)
	} else {
		logger.Debug(format, args...)
	}
}

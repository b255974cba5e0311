package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// cmdLogger is the verbose logging interface for command-level output.
// Satisfied by slogLogger.
type cmdLogger interface {
	Info(msg string, v ...interface{})
}

// logLevel gates command and component logging. PersistentPreRunE lowers it
// to debug when --verbose is set.
var logLevel = func() *slog.LevelVar {
	l := new(slog.LevelVar)
	l.Set(slog.LevelWarn)
	return l
}()

// logger is handed to internal components. It writes to stderr so stdout
// stays clean for tokens and JSON.
var logger = newLogger(os.Stderr)

// log is the package-level logger used by commands for verbose output.
// Tests can swap this with a spy.
var log cmdLogger = slogLogger{l: logger}

type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Info(msg string, v ...interface{}) {
	s.l.Info(fmt.Sprintf(msg, v...))
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func setVerbose(on bool) {
	if on {
		logLevel.Set(slog.LevelDebug)
		return
	}
	logLevel.Set(slog.LevelWarn)
}

// screenLogger returns the logger used while the interactive screen owns the
// terminal. Output goes to path, or nowhere when path is empty.
func screenLogger(path string) (*slog.Logger, func() error, error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return newLogger(f), f.Close, nil
}

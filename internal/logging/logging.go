// Package logging provides a small structured-logging facade over slog.
// The TUI owns stdout/stderr, so the default handler writes to a state
// file instead of the terminal.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger is the logging surface used throughout the application.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type slogLogger struct{ l *slog.Logger }

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// NewText creates a text-handler logger writing to w with the given level.
func NewText(w io.Writer, level slog.Leveler) Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &slogLogger{l: slog.New(h)}
}

// OpenFile creates a logger appending to the state-dir log file,
// falling back to a no-op logger if the file cannot be opened.
func OpenFile(level slog.Leveler) (Logger, func()) {
	dir := stateDirectory()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Nop(), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "gitfold.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return Nop(), func() {}
	}
	return NewText(f, level), func() { _ = f.Close() }
}

func stateDirectory() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "gitfold")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "gitfold")
}

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

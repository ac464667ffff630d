package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how New builds the process logger.
type Options struct {
	Level slog.Level
	// LogFile, when set, adds a rotated JSON log next to the stderr output.
	LogFile string
}

// New returns a logger writing text records to stderr and, when opts.LogFile
// is set, JSON records to a lumberjack-rotated file. The returned closer
// must be closed on exit.
func New(opts Options) (*slog.Logger, io.Closer) {
	hopts := &slog.HandlerOptions{Level: opts.Level}
	stderr := slog.NewTextHandler(os.Stderr, hopts)
	if opts.LogFile == "" {
		return slog.New(stderr), nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   opts.LogFile,
		MaxSize:    1, // MB
		MaxBackups: 3,
		Compress:   true,
	}
	h := fanout{stderr, slog.NewJSONHandler(file, hopts)}
	return slog.New(h), file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LogPollAttempt emits a debug-level record for one poll of the page.
// If l is nil, slog.Default() is used.
func LogPollAttempt(l *slog.Logger, selector string, attempt, count int) {
	if l == nil {
		l = slog.Default()
	}
	l.Debug("poll_attempt",
		slog.String("selector", selector),
		slog.Int("attempt", attempt),
		slog.Int("count", count),
	)
}

// LogMatchesFound emits an info-level record once the target elements appear.
func LogMatchesFound(l *slog.Logger, selector string, attempt, count int) {
	if l == nil {
		l = slog.Default()
	}
	l.Info("matches_found",
		slog.String("selector", selector),
		slog.Int("attempt", attempt),
		slog.Int("count", count),
	)
}

// LogNoMatches emits an error-level record when extraction finds nothing.
func LogNoMatches(l *slog.Logger, selector string) {
	if l == nil {
		l = slog.Default()
	}
	l.Error("no_matches",
		slog.String("selector", selector),
		slog.String("reason", "no elements found for selector"),
	)
}

// LogSaved emits an info-level record for a written output file.
func LogSaved(l *slog.Logger, path string, entries int) {
	if l == nil {
		l = slog.Default()
	}
	l.Info("saved_file",
		slog.String("path", path),
		slog.Int("entries", entries),
	)
}

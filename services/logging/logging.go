// Package logging builds the process logger: log/slog with JSON or text
// output, a level filter, default service/version attributes and optional
// size-rotated files.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects format, level and destination.
type Config struct {
	Level  string     `yaml:"level"`  // debug, info, warn, error
	Format string     `yaml:"format"` // json, text
	Output string     `yaml:"output"` // stdout, stderr, file
	File   FileConfig `yaml:"file"`
}

// FileConfig is used when Output is "file".
type FileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Logger wraps slog.Logger. Safe for concurrent use.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New creates a Logger writing according to cfg.
func New(cfg Config, version string) *Logger {
	out, closer := writer(cfg)
	return newWithWriter(cfg, version, out, closer)
}

func newWithWriter(cfg Config, version string, out io.Writer, closer io.Closer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		h = slog.NewTextHandler(out, opts)
	default:
		h = slog.NewJSONHandler(out, opts)
	}
	h = h.WithAttrs([]slog.Attr{
		slog.String("service", "devrest"),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(h), closer: closer}
}

func writer(cfg Config) (io.Writer, io.Closer) {
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		return os.Stderr, nil
	case "file":
		if cfg.File.Path == "" {
			return os.Stderr, nil
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		}
		return lj, lj
	default:
		return os.Stdout, nil
	}
}

// parseLevel maps a level name to slog.Level; unknown names are info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a Logger with extra default attributes.
//
//	halLog := log.With("component", "hal")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Close flushes and closes a rotated log file, if any.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Default is used before configuration is loaded.
func Default() *Logger {
	return New(Config{Level: "info", Format: "json", Output: "stderr"}, "dev")
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

package citymesh

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pipeline-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKey adds the object key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithTile adds the tile name field to the logger.
func (l *Logger) WithTile(tile string) *Logger {
	return &Logger{
		Logger: l.Logger.With("tile", tile),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogIndexBuild logs the spatial index build.
func (l *Logger) LogIndexBuild(ctx context.Context, buildings, skipped int, epsg int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"buildings", buildings,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index built",
			"buildings", buildings,
			"skipped", skipped,
			"epsg", epsg,
		)
	}
}

// LogMatch logs a match operation.
func (l *Logger) LogMatch(ctx context.Context, key string, candidates int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "match failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "match completed",
			"key", key,
			"candidates", candidates,
		)
	}
}

// LogMerge logs a merge operation.
func (l *Logger) LogMerge(ctx context.Context, key string, buildings int, flags []string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "merge failed",
			"key", key,
			"error", err,
		)
	} else if len(flags) > 0 {
		l.WarnContext(ctx, "merge completed with geometry flags",
			"key", key,
			"buildings", buildings,
			"flags", flags,
		)
	} else {
		l.DebugContext(ctx, "merge completed",
			"key", key,
			"buildings", buildings,
		)
	}
}

// LogMesh logs a mesh build operation.
func (l *Logger) LogMesh(ctx context.Context, key string, vertices, faces int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "mesh build failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "mesh built",
			"key", key,
			"vertices", vertices,
			"faces", faces,
		)
	}
}

// LogExport logs an export operation.
func (l *Logger) LogExport(ctx context.Context, key string, artifacts int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"key", key,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "export completed",
			"key", key,
			"artifacts", artifacts,
		)
	}
}

// LogRun logs a pipeline run result.
func (l *Logger) LogRun(ctx context.Context, s *Summary) {
	if len(s.Failures) > 0 {
		l.WarnContext(ctx, "run completed with failures",
			"objects", s.Objects,
			"matched", s.Matched,
			"merged", s.Merged,
			"meshed", s.Meshed,
			"failed", len(s.Failures),
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"objects", s.Objects,
			"matched", s.Matched,
			"merged", s.Merged,
			"meshed", s.Meshed,
		)
	}
}

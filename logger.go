package gemmbitserial

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with gemmbitserial-specific context.
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

// LogBlocking logs the blocking factors chosen for a multiplication job.
func (l *Logger) LogBlocking(lhsRows, depth, rhsRows, lhsBlock, rhsBlock, cacheBits int) {
	l.Debug("block sizes selected",
		"lhs_rows", lhsRows,
		"depth", depth,
		"rhs_rows", rhsRows,
		"lhs_block", lhsBlock,
		"rhs_block", rhsBlock,
		"cache_bits", cacheBits,
	)
}

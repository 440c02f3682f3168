// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// Level is a logging level. Values match slog levels where both exist.
type Level int

const (
	LevelTrace Level = -8
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// ErrLevel is returned by ParseLevel for an unknown level name.
var ErrLevel = errors.New("stress: invalid log level")

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(s) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, ErrLevel
}

func (level Level) String() string {
	switch level {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is a level-filtered slog logger. A nil *Logger discards.
type Logger struct {
	slog  *slog.Logger
	level Level
}

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level Level) *Logger {
	return &Logger{
		slog: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       slog.Level(LevelTrace),
			ReplaceAttr: replaceAttr,
		})),
		level: level,
	}
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelError + 1
	}
	return l.level
}

func (l *Logger) log(msg string, level Level, v ...any) {
	if l == nil || l.level > level {
		return
	}
	l.slog.Log(context.Background(), slog.Level(level), msg, v...)
}

// Trace level message.
func (l *Logger) Trace(msg string, v ...any) { l.log(msg, LevelTrace, v...) }

// Debug level message.
func (l *Logger) Debug(msg string, v ...any) { l.log(msg, LevelDebug, v...) }

// Info level message.
func (l *Logger) Info(msg string, v ...any) { l.log(msg, LevelInfo, v...) }

// Warn level message.
func (l *Logger) Warn(msg string, v ...any) { l.log(msg, LevelWarn, v...) }

// Error level message.
func (l *Logger) Error(msg string, v ...any) { l.log(msg, LevelError, v...) }

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		a.Value = slog.StringValue(Level(level).String())
	}
	return a
}

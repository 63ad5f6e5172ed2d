package logger

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Printer writes printf-style messages at a fixed level.
type Printer struct {
	level zapcore.Level
}

var (
	Info  = Printer{level: zapcore.InfoLevel}
	Error = Printer{level: zapcore.ErrorLevel}
	Debug = Printer{level: zapcore.DebugLevel}
	Warn  = Printer{level: zapcore.WarnLevel}
)

var current atomic.Pointer[zap.Logger]

func init() {
	l, err := build(zap.NewAtomicLevelAt(zapcore.InfoLevel), "console")
	if err != nil {
		panic(err)
	}
	current.Store(l)
}

// Init replaces the process logger. level is a zap level name such as
// "debug" or "warn"; format is "console" or "json".
func Init(level, format string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	if format != "console" && format != "json" {
		return fmt.Errorf("unknown log format %q", format)
	}
	l, err := build(lvl, format)
	if err != nil {
		return err
	}
	if old := current.Swap(l); old != nil {
		_ = old.Sync()
	}
	return nil
}

// L returns the structured logger for call sites that want fields.
func L() *zap.Logger {
	return current.Load()
}

// Replace installs l and returns a func restoring the previous logger.
// Tests use it with zaptest/observer.
func Replace(l *zap.Logger) func() {
	old := current.Swap(l)
	return func() { current.Store(old) }
}

func Sync() {
	_ = current.Load().Sync()
}

func (p Printer) Printf(format string, args ...any) {
	s := current.Load().WithOptions(zap.AddCallerSkip(1)).Sugar()
	switch p.level {
	case zapcore.DebugLevel:
		s.Debugf(format, args...)
	case zapcore.WarnLevel:
		s.Warnf(format, args...)
	case zapcore.ErrorLevel:
		s.Errorf(format, args...)
	default:
		s.Infof(format, args...)
	}
}

func build(lvl zap.AtomicLevel, format string) (*zap.Logger, error) {
	cfg := &zap.Config{
		Level:    lvl,
		Encoding: format,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	l, err := cfg.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

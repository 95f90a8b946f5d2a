// Package logger builds the diagnostic logger: a colored console stream and
// an append-only log file sharing the "timestamp - LEVEL - message" layout.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const TimeLayout = "2006-01-02 15:04:05,000"

// Options - where and how much to log
type Options struct {
	FilePath string    // appended across runs; empty disables the file sink
	Console  io.Writer // nil disables the console sink
	Level    zapcore.Level
	Color    bool
}

var levelColors = map[zapcore.Level]*color.Color{
	zapcore.DebugLevel:  color.New(color.FgCyan),
	zapcore.InfoLevel:   color.New(color.FgGreen),
	zapcore.WarnLevel:   color.New(color.FgYellow),
	zapcore.ErrorLevel:  color.New(color.FgRed),
	zapcore.DPanicLevel: color.New(color.FgRed, color.Bold),
	zapcore.PanicLevel:  color.New(color.FgRed, color.Bold),
	zapcore.FatalLevel:  color.New(color.FgRed, color.Bold),
}

// LevelName maps zap levels onto the names used in error_fixer.log.
func LevelName(l zapcore.Level) string {
	switch l {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	case zapcore.ErrorLevel:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}

func plainLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(l))
}

func coloredLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	name := LevelName(l)
	if c, ok := levelColors[l]; ok {
		name = c.Sprint(name)
	}
	enc.AppendString(name)
}

// NewEncoder returns the line encoder shared by both sinks.
func NewEncoder(colored bool) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(TimeLayout),
		EncodeLevel:      plainLevel,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
	if colored {
		cfg.EncodeLevel = coloredLevel
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// New - creates the logger; the returned func flushes and closes the file sink
func New(opts Options) (*zap.Logger, func() error, error) {
	var cores []zapcore.Core
	closeFn := func() error { return nil }

	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(NewEncoder(opts.Color), zapcore.AddSync(opts.Console), opts.Level))
	}

	if opts.FilePath != "" {
		if dir := filepath.Dir(opts.FilePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(NewEncoder(false), zapcore.AddSync(f), opts.Level))
		closeFn = func() error {
			_ = f.Sync()
			return f.Close()
		}
	}

	if len(cores) == 0 {
		return zap.NewNop(), closeFn, nil
	}

	return zap.New(zapcore.NewTee(cores...)), closeFn, nil
}

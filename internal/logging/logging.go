// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the logger level, format and destination.
type Options struct {
	Level      string // DEBUG, INFO, WARN, ERROR
	Format     string // json, text
	OutputPath string // stdout or a file path
}

// Logger is a zap logger together with the file it may own.
type Logger struct {
	*zap.Logger
	closer io.Closer
}

// New builds a logger from opts.
func New(opts Options) (*Logger, error) {
	ws, closer, err := buildWriteSyncer(opts.OutputPath)
	if err != nil {
		return nil, err
	}

	level := zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	core := zapcore.NewCore(buildEncoder(opts.Format), ws, level)

	return &Logger{
		Logger: zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)),
		closer: closer,
	}, nil
}

// Sync flushes buffered entries and closes the log file, if any.
func (l *Logger) Sync() {
	_ = l.Logger.Sync()
	if l.closer != nil {
		_ = l.closer.Close()
	}
}

func buildEncoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if strings.EqualFold(format, "json") {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func buildWriteSyncer(path string) (zapcore.WriteSyncer, io.Closer, error) {
	if path == "" || strings.EqualFold(path, "stdout") {
		return zapcore.AddSync(os.Stdout), nil, nil
	}
	if strings.EqualFold(path, "stderr") {
		return zapcore.AddSync(os.Stderr), nil, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return zapcore.AddSync(file), file, nil
}

// ParseLevel maps a level name to a zap level. Unknown names mean INFO.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

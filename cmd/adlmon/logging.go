//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// newFileWriter returns a rotating log file writer.
func newFileWriter(cfg LogConfig) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}

// newCore tees console output with an optional JSON file.
// The file always gets JSON; the console gets colored text in development mode.
func newCore(cfg LogConfig, console zapcore.WriteSyncer, file zapcore.WriteSyncer) (zapcore.Core, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var consoleEncoder zapcore.Encoder
	if cfg.Development {
		ec := encoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(ec)
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig())
	}
	cores := []zapcore.Core{zapcore.NewCore(consoleEncoder, console, level)}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), file, level))
	}
	return zapcore.NewTee(cores...), nil
}

// newLogger builds the process logger. Console output goes to stderr so
// command output on stdout stays clean.
func newLogger(cfg LogConfig) (*zap.Logger, error) {
	return newLoggerTo(cfg, os.Stderr)
}

func newLoggerTo(cfg LogConfig, console io.Writer) (*zap.Logger, error) {
	var file zapcore.WriteSyncer
	if cfg.File != "" {
		file = newFileWriter(cfg)
	}
	core, err := newCore(cfg, zapcore.AddSync(console), file)
	if err != nil {
		return nil, err
	}
	return zap.New(core, zap.AddCaller()).Named("adlmon"), nil
}

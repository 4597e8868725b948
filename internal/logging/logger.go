// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a JSON logger writing to stdout, unknown levels fall back to error
func NewLogger(l string) *Logger {
	var lvl zapcore.Level

	switch strings.ToLower(l) {
	case "debug":
		lvl = zap.DebugLevel
	case "info":
		lvl = zap.InfoLevel
	case "warning", "warn":
		lvl = zap.WarnLevel
	default:
		lvl = zap.ErrorLevel
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.EncoderConfig.TimeKey = "@timestamp"
	c.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	base, err := c.Build()
	if err != nil {
		panic(err)
	}

	// security events are always written, regardless of the configured level
	sc := zap.NewProductionConfig()
	sc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	sc.EncoderConfig.TimeKey = "@timestamp"
	sc.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	sec, err := sc.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{
		SugaredLogger: base.Sugar(),
		security:      &SecurityLogger{l: sec.With(zap.String("type", "security"))},
	}
}

// NewNoopLogger discards everything, security events included
func NewNoopLogger() *Logger {
	nop := zap.NewNop()

	return &Logger{
		SugaredLogger: nop.Sugar(),
		security:      &SecurityLogger{l: nop},
	}
}

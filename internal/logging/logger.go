// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

// Logger is the application logger, a sugared zap logger paired with a security event logger
type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// Sync flushes both the application and the security loggers
func (l *Logger) Sync() error {
	err := l.SugaredLogger.Sync()
	if serr := l.security.l.Sync(); err == nil {
		err = serr
	}
	return err
}

func level(l string) zapcore.Level {
	switch strings.ToLower(l) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.ErrorLevel
	}
}

// NewLogger creates a JSON logger writing to stdout at the requested level
func NewLogger(l string) *Logger {
	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(level(l))
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.OutputPaths = []string{"stdout"}
	c.ErrorOutputPaths = []string{"stderr"}

	if c.Level.Level() == zap.DebugLevel {
		c.Development = true
	}

	lgr, err := c.Build(zap.AddCallerSkip(0))
	if err != nil {
		panic(err)
	}

	logger := new(Logger)
	logger.SugaredLogger = lgr.Sugar()
	logger.security = newSecurityLogger(lgr)

	return logger
}

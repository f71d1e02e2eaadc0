// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

// NewNoopLogger returns a Logger discarding every entry, security events included
func NewNoopLogger() *Logger {
	nop := zap.NewNop()

	logger := new(Logger)
	logger.SugaredLogger = nop.Sugar()
	logger.security = &SecurityLogger{l: nop}

	return logger
}

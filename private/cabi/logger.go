// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package cabi

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the package's logger.
// This must be called before any exported function is used.
func SetLogger(l *zap.Logger) {
	logger = l
}

// recovered stops a panic from unwinding into the foreign caller. It must be
// deferred directly by the entry point.
func recovered(op string) {
	if r := recover(); r != nil {
		mon.Counter("panics").Inc(1)
		Logger().Error("recovered panic",
			zap.String("op", op),
			zap.String("panic", fmt.Sprint(r)),
			zap.Stack("stack"))
	}
}

// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package logenv configures loggers of shared libraries from the
// environment of the host process.
package logenv

import (
	"os"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Variable is the environment variable holding the log level.
const Variable = "RAPTORQ_LOG_LEVEL"

// Error is the error class for logger configuration.
var Error = errs.Class("logenv")

// Logger returns a production logger at the level named by Variable. It
// returns nil without an error when Variable is unset.
func Logger() (*zap.Logger, error) {
	return New(os.Getenv(Variable))
}

// New returns a production logger at level, one of debug, info, warn or
// error. An empty level returns nil.
func New(level string) (*zap.Logger, error) {
	if level == "" {
		return nil, nil
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, Error.Wrap(err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	log, err := config.Build()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return log.Named("raptorq"), nil
}

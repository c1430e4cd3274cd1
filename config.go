// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package raptorq

import (
	"storj.io/eventkit"
	"storj.io/raptorq/private/fec"
)

// Config defines how a payload is split into source blocks and symbols.
// Encoder and decoder of one transfer must use the same Config.
// Empty struct implies default values.
type Config struct {
	// Alignment is the symbol alignment in bytes. The symbol size is the
	// maximum transmission unit rounded down to a multiple of Alignment.
	Alignment uint8

	// MaxSourceSymbols is the largest number of source symbols in a single
	// source block. Every block can carry up to 256 symbols in total, so
	// a block of K source symbols has room for 256-K repair symbols.
	MaxSourceSymbols int
}

// DefaultConfig provides default values for the codec.
var DefaultConfig = Config{
	Alignment:        8,
	MaxSourceSymbols: 128,
}

// Setup updates the config values to their finals.
// Uses defaults when out of range or unassigned.
func (c *Config) Setup() {
	if c.Alignment == 0 {
		c.Alignment = DefaultConfig.Alignment
	}
	if c.MaxSourceSymbols < 1 || c.MaxSourceSymbols > fec.MaxTotal {
		c.MaxSourceSymbols = DefaultConfig.MaxSourceSymbols
	}
}

// reportSetup records a non-default configuration.
func (c Config) reportSetup() {
	if c == DefaultConfig {
		return
	}
	evs.Event("codec-config-setup",
		eventkit.Int64("alignment", int64(c.Alignment)),
		eventkit.Int64("max_source_symbols", int64(c.MaxSourceSymbols)),
	)
}

// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package wasmhost

import (
	"storj.io/common/memory"
)

// Config defines how the host module is exposed to guests.
// Empty struct implies default values.
type Config struct {
	// ModuleName is the import module name guests link against.
	ModuleName string

	// MaxCopySize bounds a single copy between guest memory and the host.
	MaxCopySize memory.Size
}

// DefaultConfig provides default values for the host module.
var DefaultConfig = Config{
	ModuleName:  "raptorq",
	MaxCopySize: 64 * memory.MiB,
}

// Setup updates the config values to their finals.
// Uses defaults when out of range or unassigned.
func (c *Config) Setup() {
	if c.ModuleName == "" {
		c.ModuleName = DefaultConfig.ModuleName
	}
	if c.MaxCopySize <= 0 {
		c.MaxCopySize = DefaultConfig.MaxCopySize
	}
}

// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package testcodec contains helpers shared by codec and boundary tests.
package testcodec

import (
	"github.com/zeebo/mwc"
)

const (
	// ScenarioSize is the payload size of the reference loss scenario.
	ScenarioSize = 10000
	// ScenarioMTU is the maximum transmission unit of the reference loss
	// scenario.
	ScenarioMTU = 1280
	// ScenarioRepair is the number of repair packets requested in the
	// reference loss scenario.
	ScenarioRepair = 2
	// ScenarioSystematic is the number of source packets the reference
	// scenario produces with the default configuration.
	ScenarioSystematic = 8
)

// Payload returns n bytes of deterministic pseudo-random content.
func Payload(seed uint64, n int) []byte {
	data := make([]byte, n)
	_, _ = mwc.New(seed, seed^0x9e3779b97f4a7c15).Read(data)
	return data
}

// Drop returns packets without the one at index.
func Drop[T any](packets []T, index int) []T {
	out := make([]T, 0, len(packets))
	out = append(out, packets[:index]...)
	return append(out, packets[index+1:]...)
}

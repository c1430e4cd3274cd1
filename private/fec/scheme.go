// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fec

import "storj.io/infectious"

// MaxTotal is the largest number of distinct shares a Reed-Solomon code over
// GF(2^8) can produce.
const MaxTotal = 256

// Share is one erasure share of a block, numbered by its symbol id.
type Share = infectious.Share

// ErasureScheme represents the general format of a systematic erasure scheme
// that operates on one source block at a time.
type ErasureScheme interface {
	// EncodeSingle will take 'in' with the whole source block and fill 'out'
	// with the erasure share for symbol 'num'. Shares below RequiredCount are
	// copies of the source symbols.
	EncodeSingle(in, out []byte, num int) error

	// Decode will take the available shares of one block, 'in', and write the
	// reconstructed block into 'out', returning it.
	Decode(out []byte, in []Share) ([]byte, error)

	// ErasureShareSize is the size of the erasure shares that come from
	// EncodeSingle and are passed to Decode.
	ErasureShareSize() int

	// StripeSize is the size of a whole source block.
	StripeSize() int

	// TotalCount is the number of distinct shares the scheme can produce.
	TotalCount() int

	// RequiredCount is the number of distinct shares Decode needs.
	RequiredCount() int
}

// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fec

import (
	"storj.io/common/sync2/race2"
	"storj.io/infectious"
)

type rsScheme struct {
	fc               *infectious.FEC
	erasureShareSize int
}

// NewScheme returns a Reed-Solomon-based ErasureScheme for blocks of
// required source symbols of shareSize bytes each. The scheme can produce up
// to MaxTotal shares, so at most MaxTotal-required repair shares per block.
//
// Decode does no error detection: it assumes the shares it is given are
// intact, which holds because corrupted packets are rejected before they
// reach the scheme.
func NewScheme(required, shareSize int) (ErasureScheme, error) {
	if required < 1 || required > MaxTotal {
		return nil, Error.New("required symbols %d out of range [1, %d]", required, MaxTotal)
	}
	if shareSize < 1 {
		return nil, Error.New("share size must be positive")
	}

	fc, err := infectious.NewFEC(required, MaxTotal)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &rsScheme{fc: fc, erasureShareSize: shareSize}, nil
}

func (s *rsScheme) EncodeSingle(input, output []byte, num int) (err error) {
	race2.ReadSlice(input)
	race2.WriteSlice(output)
	return Error.Wrap(s.fc.EncodeSingle(input, output, num))
}

func (s *rsScheme) Decode(out []byte, in []Share) ([]byte, error) {
	for _, share := range in {
		race2.ReadSlice(share.Data)
	}

	race2.WriteSlice(out)
	expectedCap := s.StripeSize()
	if cap(out) < expectedCap {
		out = make([]byte, expectedCap)
	} else {
		out = out[:expectedCap]
	}
	err := s.fc.Rebuild(in, func(share infectious.Share) {
		copy(out[share.Number*s.ErasureShareSize():], share.Data)
	})
	if err != nil {
		mon.Counter("rebuild_failures").Inc(1)
		return nil, Error.Wrap(err)
	}

	return out, nil
}

func (s *rsScheme) ErasureShareSize() int {
	return s.erasureShareSize
}

func (s *rsScheme) StripeSize() int {
	return s.erasureShareSize * s.fc.Required()
}

func (s *rsScheme) TotalCount() int {
	return s.fc.Total()
}

func (s *rsScheme) RequiredCount() int {
	return s.fc.Required()
}

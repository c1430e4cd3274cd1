// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

/*
Package raptorq is a forward error correction codec for sending a payload as
independent packets and reconstructing it from any sufficiently large subset
of them.

A payload is split into source blocks of fixed-size symbols. Every block is
encoded with a systematic Reed-Solomon code: the first packets of a block
carry the source symbols unchanged and any number of repair packets (up to
256 symbols per block) can be added. A Decoder accepts packets in any order
and reconstructs a block as soon as it holds as many distinct packets of the
block as the block has source symbols.

	encoder, err := raptorq.EncoderWithDefaults(payload, 1280)
	packets, err := encoder.Packets(ctx, 2)

	decoder := raptorq.DecoderWithDefaults(uint64(len(payload)), 1280)
	for _, packet := range received {
		result, err := decoder.DecodeBytes(ctx, packet)
		if result.Status == raptorq.StatusComplete {
			// result.Data is the payload
		}
	}

The packet wire format is private to this package. Boundary layers for C and
managed-runtime callers live under private/ and cmd/.
*/
package raptorq

// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package raptorq

import (
	"context"

	"storj.io/raptorq/private/fec"
)

// Encoder produces the packets of one transfer.
//
// An Encoder is never modified after construction, so Packets may be called
// concurrently.
type Encoder struct {
	oti    ObjectTransmissionInformation
	blocks []sourceBlock
}

type sourceBlock struct {
	number uint32
	// stripe holds the block's source symbols, zero padded to a whole
	// number of symbols.
	stripe []byte
	scheme fec.ErasureScheme
}

// EncoderWithDefaults creates an encoder for data using DefaultConfig.
func EncoderWithDefaults(data []byte, mtu uint16) (*Encoder, error) {
	return NewEncoder(data, mtu, DefaultConfig)
}

// NewEncoder creates an encoder for data. The encoder keeps its own copy of
// data, so the caller may reuse the buffer once NewEncoder returns.
func NewEncoder(data []byte, mtu uint16, config Config) (*Encoder, error) {
	config.Setup()
	config.reportSetup()

	oti := NewOTI(uint64(len(data)), mtu, config)
	if oti.SourceBlocks > uint64(^uint32(0))+1 {
		return nil, Error.New("payload needs %d source blocks", oti.SourceBlocks)
	}

	schemes := map[int]fec.ErasureScheme{}
	encoder := &Encoder{
		oti:    oti,
		blocks: make([]sourceBlock, 0, oti.SourceBlocks),
	}

	for sbn := uint64(0); sbn < oti.SourceBlocks; sbn++ {
		symbols := oti.BlockSymbols(sbn)

		scheme, ok := schemes[symbols]
		if !ok {
			var err error
			scheme, err = fec.NewScheme(symbols, int(oti.SymbolSize))
			if err != nil {
				return nil, Error.Wrap(err)
			}
			schemes[symbols] = scheme
		}

		stripe := make([]byte, scheme.StripeSize())
		offset := oti.blockOffset(sbn)
		copy(stripe, data[offset:])

		encoder.blocks = append(encoder.blocks, sourceBlock{
			number: uint32(sbn),
			stripe: stripe,
			scheme: scheme,
		})
	}

	return encoder, nil
}

// OTI returns the transmission information a decoder needs.
func (encoder *Encoder) OTI() ObjectTransmissionInformation { return encoder.oti }

// SystematicCount returns the number of source packets across all blocks.
func (encoder *Encoder) SystematicCount() int {
	return int(encoder.oti.SourceSymbols())
}

// Packets returns, for every source block in order, the block's source
// packets followed by repairPerBlock repair packets. The repair count is
// limited to what the block can carry (256 symbols in total).
//
// Packets is a pure function of the encoder and repairPerBlock.
func (encoder *Encoder) Packets(ctx context.Context, repairPerBlock uint32) (_ []EncodingPacket, err error) {
	defer mon.Task()(&ctx)(&err)

	var packets []EncodingPacket
	for _, block := range encoder.blocks {
		required := block.scheme.RequiredCount()
		total := required + clampRepair(repairPerBlock, block.scheme)

		for esi := 0; esi < total; esi++ {
			data := make([]byte, block.scheme.ErasureShareSize())
			if err := block.scheme.EncodeSingle(block.stripe, data, esi); err != nil {
				return nil, Error.Wrap(err)
			}
			packets = append(packets, EncodingPacket{
				PayloadID: PayloadID{
					SourceBlockNumber: block.number,
					EncodingSymbolID:  uint32(esi),
				},
				Data: data,
			})
		}
	}

	mon.Counter("packets_encoded").Inc(int64(len(packets)))
	return packets, nil
}

func clampRepair(repair uint32, scheme fec.ErasureScheme) int {
	available := scheme.TotalCount() - scheme.RequiredCount()
	if uint64(repair) > uint64(available) {
		return available
	}
	return int(repair)
}

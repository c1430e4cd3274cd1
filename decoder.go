// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package raptorq

import (
	"context"

	"storj.io/eventkit"
	"storj.io/raptorq/private/fec"
)

// DecodeStatus reports what a Decode call achieved.
type DecodeStatus int

const (
	// StatusPending means more packets are needed.
	StatusPending DecodeStatus = iota
	// StatusComplete means the payload has been reconstructed.
	StatusComplete
	// StatusMalformed means the packet did not belong to the transfer and
	// was ignored.
	StatusMalformed
)

// String implements fmt.Stringer.
func (status DecodeStatus) String() string {
	switch status {
	case StatusPending:
		return "pending"
	case StatusComplete:
		return "complete"
	case StatusMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// DecodeResult is the outcome of feeding one packet to a Decoder.
type DecodeResult struct {
	Status DecodeStatus
	// Data is the reconstructed payload when Status is StatusComplete.
	// It is shared between calls and must not be modified.
	Data []byte
}

// Decoder reconstructs a payload from packets.
//
// Decoder is not safe for concurrent use: packets accumulate in the decoder,
// and callers must serialize Decode calls on one Decoder.
type Decoder struct {
	oti     ObjectTransmissionInformation
	schemes map[int]fec.ErasureScheme
	blocks  map[uint64]*blockDecoder
	pending uint64
	payload []byte
}

type blockDecoder struct {
	scheme fec.ErasureScheme
	seen   [fec.MaxTotal]bool
	shares []fec.Share
	data   []byte
}

// DecoderWithDefaults creates a decoder for a transfer of transferLength
// bytes sent with the given mtu and DefaultConfig.
func DecoderWithDefaults(transferLength uint64, mtu uint16) *Decoder {
	return NewDecoder(OTIWithDefaults(transferLength, mtu))
}

// NewDecoder creates a decoder for the described transfer. Block state is
// allocated as packets of the block arrive.
func NewDecoder(oti ObjectTransmissionInformation) *Decoder {
	decoder := &Decoder{
		oti:     oti,
		schemes: map[int]fec.ErasureScheme{},
		blocks:  map[uint64]*blockDecoder{},
		pending: oti.SourceBlocks,
	}
	if oti.TransferLength == 0 {
		decoder.payload = []byte{}
	}
	return decoder
}

// OTI returns the transmission information the decoder was created with.
func (decoder *Decoder) OTI() ObjectTransmissionInformation { return decoder.oti }

// DecodeBytes deserializes packet and decodes it. Bytes that do not
// deserialize are reported as StatusMalformed.
func (decoder *Decoder) DecodeBytes(ctx context.Context, packet []byte) (DecodeResult, error) {
	if decoder.payload != nil {
		return DecodeResult{Status: StatusComplete, Data: decoder.payload}, nil
	}

	parsed, err := DeserializePacket(packet)
	if err != nil {
		mon.Counter("packets_malformed").Inc(1)
		return DecodeResult{Status: StatusMalformed}, nil
	}
	return decoder.Decode(ctx, parsed)
}

// Decode adds packet to the decoder. Duplicate packets are ignored. Once the
// payload has been reconstructed every call returns it again.
func (decoder *Decoder) Decode(ctx context.Context, packet EncodingPacket) (_ DecodeResult, err error) {
	defer mon.Task()(&ctx)(&err)

	if decoder.payload != nil {
		return DecodeResult{Status: StatusComplete, Data: decoder.payload}, nil
	}

	sbn := uint64(packet.SourceBlockNumber)
	if sbn >= decoder.oti.SourceBlocks ||
		packet.EncodingSymbolID >= fec.MaxTotal ||
		len(packet.Data) != int(decoder.oti.SymbolSize) {
		mon.Counter("packets_malformed").Inc(1)
		return DecodeResult{Status: StatusMalformed}, nil
	}

	block, err := decoder.block(sbn)
	if err != nil {
		return DecodeResult{}, err
	}

	esi := int(packet.EncodingSymbolID)
	if block.data != nil || block.seen[esi] {
		return DecodeResult{Status: StatusPending}, nil
	}
	block.seen[esi] = true
	block.shares = append(block.shares, fec.Share{
		Number: esi,
		Data:   append([]byte(nil), packet.Data...),
	})

	if len(block.shares) < block.scheme.RequiredCount() {
		return DecodeResult{Status: StatusPending}, nil
	}

	block.data, err = block.scheme.Decode(nil, block.shares)
	if err != nil {
		return DecodeResult{}, Error.Wrap(err)
	}
	block.shares = nil
	decoder.pending--

	if decoder.pending > 0 {
		return DecodeResult{Status: StatusPending}, nil
	}

	decoder.assemble()
	return DecodeResult{Status: StatusComplete, Data: decoder.payload}, nil
}

func (decoder *Decoder) block(sbn uint64) (*blockDecoder, error) {
	if block, ok := decoder.blocks[sbn]; ok {
		return block, nil
	}

	symbols := decoder.oti.BlockSymbols(sbn)
	scheme, ok := decoder.schemes[symbols]
	if !ok {
		var err error
		scheme, err = fec.NewScheme(symbols, int(decoder.oti.SymbolSize))
		if err != nil {
			return nil, Error.Wrap(err)
		}
		decoder.schemes[symbols] = scheme
	}

	block := &blockDecoder{scheme: scheme}
	decoder.blocks[sbn] = block
	return block, nil
}

func (decoder *Decoder) assemble() {
	payload := make([]byte, decoder.oti.TransferLength)
	for sbn := uint64(0); sbn < decoder.oti.SourceBlocks; sbn++ {
		copy(payload[decoder.oti.blockOffset(sbn):], decoder.blocks[sbn].data)
	}

	decoder.payload = payload
	decoder.blocks = nil
	decoder.schemes = nil

	evs.Event("decode-complete",
		eventkit.Int64("transfer-length", int64(decoder.oti.TransferLength)),
		eventkit.Int64("source-blocks", int64(decoder.oti.SourceBlocks)),
		eventkit.Int64("symbol-size", int64(decoder.oti.SymbolSize)),
	)
}

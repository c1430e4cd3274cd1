// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package raptorq

import (
	"storj.io/picobuf"
)

const (
	fieldSourceBlockNumber picobuf.FieldNumber = 1
	fieldEncodingSymbolID  picobuf.FieldNumber = 2
	fieldSymbol            picobuf.FieldNumber = 3
)

// PayloadID identifies the symbol carried by a packet.
type PayloadID struct {
	SourceBlockNumber uint32
	EncodingSymbolID  uint32
}

// EncodingPacket is one symbol of an encoded transfer, either a source
// symbol (EncodingSymbolID below the block's source symbol count) or a
// repair symbol.
type EncodingPacket struct {
	PayloadID
	Data []byte
}

// Serialize returns the wire form of the packet.
func (packet EncodingPacket) Serialize() []byte {
	sbn, esi, data := packet.SourceBlockNumber, packet.EncodingSymbolID, packet.Data

	enc := picobuf.NewEncoder()
	enc.Uint32(fieldSourceBlockNumber, &sbn)
	enc.Uint32(fieldEncodingSymbolID, &esi)
	enc.Bytes(fieldSymbol, &data)
	return enc.Buffer()
}

// DeserializePacket parses the wire form of a packet. The returned packet
// does not alias data.
func DeserializePacket(data []byte) (packet EncodingPacket, err error) {
	if len(data) == 0 {
		return EncodingPacket{}, ErrMalformedPacket.New("empty packet")
	}

	decoder := picobuf.NewDecoder(data)
	decoder.Loop(func(d *picobuf.Decoder) {
		d.Uint32(fieldSourceBlockNumber, &packet.SourceBlockNumber)
		d.Uint32(fieldEncodingSymbolID, &packet.EncodingSymbolID)
		d.Bytes(fieldSymbol, &packet.Data)
	})
	if err := decoder.Err(); err != nil {
		return EncodingPacket{}, ErrMalformedPacket.Wrap(err)
	}

	packet.Data = append([]byte(nil), packet.Data...)
	return packet, nil
}

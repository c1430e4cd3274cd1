// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package cabi

// #include "raptorq_types.h"
import "C"

import (
	"unsafe"

	"go.uber.org/zap"

	"storj.io/raptorq"
	"storj.io/raptorq/private/cmem"
)

// Status is the result of raptorq_decoder_decode.
type Status int32

// Status values, shared with raptorq_types.h.
const (
	StatusPending       Status = C.RAPTORQ_DECODE_PENDING
	StatusComplete      Status = C.RAPTORQ_DECODE_COMPLETE
	StatusMalformed     Status = C.RAPTORQ_DECODE_MALFORMED
	StatusInvalidHandle Status = C.RAPTORQ_DECODE_INVALID_HANDLE
	StatusShortBuffer   Status = C.RAPTORQ_DECODE_SHORT_BUFFER
)

type slice = C.struct_raptorq_slice

// EncoderNew implements raptorq_encoder_new. A nil data pointer is an empty
// payload.
func (abi *ABI) EncoderNew(data unsafe.Pointer, dataLen uintptr, mtu uint16) (enc unsafe.Pointer) {
	defer recovered("raptorq_encoder_new")

	if data == nil {
		dataLen = 0
	}
	return abi.newEncoder("raptorq_encoder_new", data, dataLen, mtu)
}

// EncoderFree implements raptorq_encoder_free.
func (abi *ABI) EncoderFree(enc unsafe.Pointer) {
	defer recovered("raptorq_encoder_free")

	abi.releaseEncoder("raptorq_encoder_free", enc)
}

// EncoderPackets implements raptorq_encoder_packets. It stores an array of
// owned packets in *out and returns the array length. The array is released
// with PacketsFree. *out is nil when no packets were produced.
func (abi *ABI) EncoderPackets(enc unsafe.Pointer, repair uint32, out *unsafe.Pointer) (count uintptr) {
	defer recovered("raptorq_encoder_packets")

	if out == nil {
		return 0
	}
	*out = nil

	session, ok := abi.encoder(enc)
	if !ok {
		return 0
	}
	packets, ok := abi.serializedPackets("raptorq_encoder_packets", session, repair)
	if !ok || len(packets) == 0 {
		return 0
	}

	array := abi.alloc.Alloc(unsafe.Sizeof(slice{}) * uintptr(len(packets)))
	if array == nil {
		Logger().Error("allocating packet array failed", zap.Int("count", len(packets)))
		return 0
	}
	slices := unsafe.Slice((*slice)(array), len(packets))

	for i, packet := range packets {
		data := cmem.Bytes(abi.alloc, packet)
		if data == nil {
			abi.packetsFree(array, i)
			Logger().Error("allocating packet failed", zap.Int("index", i))
			return 0
		}
		slices[i] = slice{
			data: (*C.uint8_t)(data),
			len:  C.size_t(len(packet)),
		}
	}

	*out = array
	return uintptr(len(packets))
}

// PacketsFree implements raptorq_packets_free. Every element is reclaimed
// from its pointer and length before the array itself.
func (abi *ABI) PacketsFree(packets unsafe.Pointer, count uintptr) {
	defer recovered("raptorq_packets_free")

	abi.packetsFree(packets, int(count))
}

func (abi *ABI) packetsFree(packets unsafe.Pointer, count int) {
	if packets == nil {
		return
	}
	for _, s := range unsafe.Slice((*slice)(packets), count) {
		abi.alloc.Free(unsafe.Pointer(s.data))
	}
	abi.alloc.Free(packets)
}

// SlicePackets returns a Go copy of count packets of an array produced by
// EncoderPackets. The array is left untouched.
func SlicePackets(packets unsafe.Pointer, count uintptr) [][]byte {
	if packets == nil {
		return nil
	}
	var copies [][]byte
	for _, s := range unsafe.Slice((*slice)(packets), int(count)) {
		copies = append(copies, cmem.Copy(unsafe.Pointer(s.data), int(s.len)))
	}
	return copies
}

// EncoderEncode implements raptorq_encoder_encode. It stages the packets in
// the encoder, replacing any packets still staged, and returns their count.
func (abi *ABI) EncoderEncode(enc unsafe.Pointer, repair uint32) (count uintptr) {
	defer recovered("raptorq_encoder_encode")

	session, ok := abi.encoder(enc)
	if !ok {
		return 0
	}
	packets, ok := abi.serializedPackets("raptorq_encoder_encode", session, repair)
	if !ok {
		return 0
	}
	session.staged = packets
	return uintptr(len(packets))
}

// EncoderNextPacket implements raptorq_encoder_next_packet. It copies the
// next staged packet to output and returns its length. It returns 0 when
// nothing is staged or the packet does not fit, leaving it staged.
func (abi *ABI) EncoderNextPacket(enc, output unsafe.Pointer, outputLen uintptr) (written uintptr) {
	defer recovered("raptorq_encoder_next_packet")

	session, ok := abi.encoder(enc)
	if !ok || len(session.staged) == 0 {
		return 0
	}

	next := session.staged[0]
	if output == nil || uintptr(len(next)) > outputLen {
		return 0
	}

	copy(cmem.View(output, len(next)), next)
	session.staged[0] = nil
	session.staged = session.staged[1:]
	return uintptr(len(next))
}

// DecoderNew implements raptorq_decoder_new.
func (abi *ABI) DecoderNew(transferLength uint64, mtu uint16) (dec unsafe.Pointer) {
	defer recovered("raptorq_decoder_new")

	return abi.newDecoder("raptorq_decoder_new", transferLength, mtu)
}

// DecoderFree implements raptorq_decoder_free.
func (abi *ABI) DecoderFree(dec unsafe.Pointer) {
	defer recovered("raptorq_decoder_free")

	abi.releaseDecoder("raptorq_decoder_free", dec)
}

// DecoderDecode implements raptorq_decoder_decode. It never writes more than
// outputLen bytes to output. When written is not nil it receives the payload
// length on StatusComplete and StatusShortBuffer, and 0 otherwise.
func (abi *ABI) DecoderDecode(dec, packet unsafe.Pointer, packetLen uintptr, output unsafe.Pointer, outputLen uintptr, written *uintptr) (status Status) {
	status = StatusMalformed
	defer recovered("raptorq_decoder_decode")

	setWritten := func(n int) {
		if written != nil {
			*written = uintptr(n)
		}
	}
	setWritten(0)

	session, ok := abi.decoder(dec)
	if !ok {
		return StatusInvalidHandle
	}

	result, ok := abi.decode("raptorq_decoder_decode", session, packet, packetLen)
	if !ok {
		return StatusMalformed
	}

	switch result.Status {
	case raptorq.StatusPending:
		return StatusPending
	case raptorq.StatusComplete:
	default:
		return StatusMalformed
	}

	setWritten(len(result.Data))
	if uintptr(len(result.Data)) > outputLen || (output == nil && len(result.Data) > 0) {
		return StatusShortBuffer
	}
	copy(cmem.View(output, len(result.Data)), result.Data)
	return StatusComplete
}

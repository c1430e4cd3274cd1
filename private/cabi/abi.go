// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package cabi implements the flat C interface of the codec.
//
// Two generations share one set of sessions: the raw pointer generation
// (raptorq_encoder_with_defaults, raptorq_encode, ...) and the ownership
// annotated generation (raptorq_encoder_new, raptorq_encoder_packets, ...).
// Sessions live in handle tables on the Go side; the pointers handed to C
// are small boxes carrying the handle, allocated from the same allocator as
// every other buffer the caller receives.
//
// Functions take and return unsafe.Pointer so the cgo exports in
// cmd/libraptorq can forward their C arguments unchanged.
package cabi

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include "raptorq_types.h"

struct raptorq_encoder {
	uint64_t handle;
	uint32_t magic;
};

struct raptorq_decoder {
	uint64_t handle;
	uint32_t magic;
};
*/
import "C"

import (
	"context"
	"math"
	"unsafe"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"storj.io/raptorq"
	"storj.io/raptorq/private/cmem"
	"storj.io/raptorq/private/handle"
)

var mon = monkit.Package()

const (
	encoderMagic = 0x7271656e // "rqen"
	decoderMagic = 0x72716465 // "rqde"
)

type encoderBox = C.struct_raptorq_encoder
type decoderBox = C.struct_raptorq_decoder

type encoderSession struct {
	encoder *raptorq.Encoder
	// staged holds serialized packets waiting for raptorq_encoder_next_packet.
	staged [][]byte
}

type decoderSession struct {
	decoder *raptorq.Decoder
}

// ABI owns the sessions created through the C interface and the allocator
// used for every buffer handed out.
type ABI struct {
	alloc    cmem.Allocator
	encoders *handle.Table[*encoderSession]
	decoders *handle.Table[*decoderSession]
}

// New returns an ABI allocating from alloc.
func New(alloc cmem.Allocator) *ABI {
	return &ABI{
		alloc:    alloc,
		encoders: handle.NewTable[*encoderSession]("encoders"),
		decoders: handle.NewTable[*decoderSession]("decoders"),
	}
}

// Default is the ABI used by the exported C functions.
var Default = New(cmem.Malloc)

// Sessions returns the number of live encoder and decoder sessions.
func (abi *ABI) Sessions() (encoders, decoders int) {
	return abi.encoders.Len(), abi.decoders.Len()
}

func (abi *ABI) newEncoder(op string, data unsafe.Pointer, dataLen uintptr, mtu uint16) unsafe.Pointer {
	if uint64(dataLen) > math.MaxInt {
		Logger().Error("payload length out of range", zap.String("op", op), zap.Uint64("len", uint64(dataLen)))
		return nil
	}

	encoder, err := raptorq.EncoderWithDefaults(cmem.View(data, int(dataLen)), mtu)
	if err != nil {
		Logger().Error("creating encoder failed", zap.String("op", op), zap.Error(err))
		return nil
	}

	p := abi.alloc.Alloc(unsafe.Sizeof(encoderBox{}))
	if p == nil {
		Logger().Error("allocating encoder failed", zap.String("op", op))
		return nil
	}

	box := (*encoderBox)(p)
	box.handle = C.uint64_t(abi.encoders.Insert(&encoderSession{encoder: encoder}))
	box.magic = encoderMagic
	return p
}

func (abi *ABI) newDecoder(op string, transferLength uint64, mtu uint16) unsafe.Pointer {
	p := abi.alloc.Alloc(unsafe.Sizeof(decoderBox{}))
	if p == nil {
		Logger().Error("allocating decoder failed", zap.String("op", op))
		return nil
	}

	decoder := raptorq.DecoderWithDefaults(transferLength, mtu)

	box := (*decoderBox)(p)
	box.handle = C.uint64_t(abi.decoders.Insert(&decoderSession{decoder: decoder}))
	box.magic = decoderMagic
	return p
}

func (abi *ABI) encoder(p unsafe.Pointer) (*encoderSession, bool) {
	if p == nil {
		return nil, false
	}
	box := (*encoderBox)(p)
	if box.magic != encoderMagic {
		return nil, false
	}
	return abi.encoders.Get(handle.Handle(box.handle))
}

func (abi *ABI) decoder(p unsafe.Pointer) (*decoderSession, bool) {
	if p == nil {
		return nil, false
	}
	box := (*decoderBox)(p)
	if box.magic != decoderMagic {
		return nil, false
	}
	return abi.decoders.Get(handle.Handle(box.handle))
}

func (abi *ABI) releaseEncoder(op string, p unsafe.Pointer) {
	if p == nil {
		return
	}
	box := (*encoderBox)(p)
	if box.magic != encoderMagic {
		Logger().Warn("release of a pointer that is not an encoder", zap.String("op", op))
		return
	}
	abi.encoders.Delete(handle.Handle(box.handle))
	box.magic = 0
	abi.alloc.Free(p)
}

func (abi *ABI) releaseDecoder(op string, p unsafe.Pointer) {
	if p == nil {
		return
	}
	box := (*decoderBox)(p)
	if box.magic != decoderMagic {
		Logger().Warn("release of a pointer that is not a decoder", zap.String("op", op))
		return
	}
	abi.decoders.Delete(handle.Handle(box.handle))
	box.magic = 0
	abi.alloc.Free(p)
}

func (abi *ABI) serializedPackets(op string, session *encoderSession, repair uint32) ([][]byte, bool) {
	ctx := context.Background()

	packets, err := session.encoder.Packets(ctx, repair)
	if err != nil {
		Logger().Error("encoding failed", zap.String("op", op), zap.Error(err))
		return nil, false
	}

	serialized := make([][]byte, len(packets))
	for i, packet := range packets {
		serialized[i] = packet.Serialize()
	}
	return serialized, true
}

func (abi *ABI) decode(op string, session *decoderSession, packet unsafe.Pointer, packetLen uintptr) (raptorq.DecodeResult, bool) {
	ctx := context.Background()

	if (packet == nil && packetLen > 0) || uint64(packetLen) > math.MaxInt {
		return raptorq.DecodeResult{Status: raptorq.StatusMalformed}, true
	}

	result, err := session.decoder.DecodeBytes(ctx, cmem.View(packet, int(packetLen)))
	if err != nil {
		Logger().Error("decoding failed", zap.String("op", op), zap.Error(err))
		return raptorq.DecodeResult{}, false
	}
	return result, true
}

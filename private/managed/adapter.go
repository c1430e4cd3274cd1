// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package managed adapts the codec to runtimes that own their memory, such as
// a JVM behind JNI or a WebAssembly guest.
//
// Sessions are referenced by int64 handles. Input arrays are copied out of
// the caller's (offset, length) window before use and every output is a
// fresh array, so no memory is shared with the managed runtime.
package managed

import (
	"context"
	"fmt"
	"math"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"storj.io/raptorq"
	"storj.io/raptorq/private/handle"
)

var mon = monkit.Package()

// Adapter owns the sessions created by a managed runtime.
type Adapter struct {
	encoders *handle.Table[*raptorq.Encoder]
	decoders *handle.Table[*raptorq.Decoder]
}

// New returns an adapter without sessions.
func New() *Adapter {
	return &Adapter{
		encoders: handle.NewTable[*raptorq.Encoder]("managed_encoders"),
		decoders: handle.NewTable[*raptorq.Decoder]("managed_decoders"),
	}
}

// Default is the adapter used by the JNI exports.
var Default = New()

// Sessions returns the number of live encoder and decoder sessions.
func (adapter *Adapter) Sessions() (encoders, decoders int) {
	return adapter.encoders.Len(), adapter.decoders.Len()
}

// EncoderWithDefaults creates an encoder for data[offset:offset+length] and
// returns its handle, or 0 when the window or mtu is invalid.
func (adapter *Adapter) EncoderWithDefaults(data []byte, offset, length, mtu int32) int64 {
	defer recovered("encoderWithDefaults")

	window, ok := copyWindow(data, offset, length)
	if !ok {
		Logger().Debug("invalid data window",
			zap.Int("len", len(data)), zap.Int32("offset", offset), zap.Int32("length", length))
		return 0
	}
	if mtu < 0 || mtu > math.MaxUint16 {
		Logger().Debug("invalid mtu", zap.Int32("mtu", mtu))
		return 0
	}

	encoder, err := raptorq.EncoderWithDefaults(window, uint16(mtu))
	if err != nil {
		Logger().Error("creating encoder failed", zap.Error(err))
		return 0
	}
	return int64(adapter.encoders.Insert(encoder))
}

// EncoderEncode returns the serialized packets of the encoder, systematic
// packets first. It returns nil for an unknown handle or a negative repair
// count.
func (adapter *Adapter) EncoderEncode(h int64, repair int32) [][]byte {
	defer recovered("encoderEncode")

	encoder, ok := adapter.encoders.Get(toHandle(h))
	if !ok || repair < 0 {
		return nil
	}

	encoded, err := encoder.Packets(context.Background(), uint32(repair))
	if err != nil {
		Logger().Error("encoding failed", zap.Error(err))
		return nil
	}

	packets := make([][]byte, len(encoded))
	for i, packet := range encoded {
		packets[i] = packet.Serialize()
	}
	return packets
}

// EncoderFree releases the encoder. Unknown handles are ignored.
func (adapter *Adapter) EncoderFree(h int64) {
	defer recovered("encoderFree")

	adapter.encoders.Delete(toHandle(h))
}

// DecoderWithDefaults creates a decoder and returns its handle, or 0 when the
// arguments are out of range.
func (adapter *Adapter) DecoderWithDefaults(transferLength int64, mtu int32) int64 {
	defer recovered("decoderWithDefaults")

	if transferLength < 0 || mtu < 0 || mtu > math.MaxUint16 {
		Logger().Debug("invalid decoder arguments",
			zap.Int64("transfer_length", transferLength), zap.Int32("mtu", mtu))
		return 0
	}
	decoder := raptorq.DecoderWithDefaults(uint64(transferLength), uint16(mtu))
	return int64(adapter.decoders.Insert(decoder))
}

// DecoderDecode feeds packet[offset:offset+length] to the decoder. Once the
// payload is complete it is copied to output at outputOffset and
// DecoderDecode returns true. It returns false while more packets are needed,
// for malformed packets, invalid handles and windows, and when the payload
// does not fit in output.
func (adapter *Adapter) DecoderDecode(h int64, packet []byte, offset, length int32, output []byte, outputOffset int32) bool {
	defer recovered("decoderDecode")

	data, ok := adapter.DecoderDecodeCopy(h, packet, offset, length)
	if !ok {
		return false
	}

	if outputOffset < 0 || int64(outputOffset)+int64(len(data)) > int64(len(output)) {
		Logger().Warn("decoded payload does not fit output",
			zap.Int("payload", len(data)), zap.Int("output", len(output)), zap.Int32("offset", outputOffset))
		return false
	}
	copy(output[outputOffset:], data)
	return true
}

// DecoderDecodeCopy is DecoderDecode for callers that copy the payload out
// themselves. The returned slice is a fresh copy.
func (adapter *Adapter) DecoderDecodeCopy(h int64, packet []byte, offset, length int32) ([]byte, bool) {
	defer recovered("decoderDecode")

	decoder, ok := adapter.decoders.Get(toHandle(h))
	if !ok {
		return nil, false
	}

	window, ok := copyWindow(packet, offset, length)
	if !ok {
		return nil, false
	}

	result, err := decoder.DecodeBytes(context.Background(), window)
	if err != nil {
		Logger().Error("decoding failed", zap.Error(err))
		return nil, false
	}
	if result.Status != raptorq.StatusComplete {
		return nil, false
	}
	return append([]byte{}, result.Data...), true
}

// DecoderFree releases the decoder. Unknown handles are ignored.
func (adapter *Adapter) DecoderFree(h int64) {
	defer recovered("decoderFree")

	adapter.decoders.Delete(toHandle(h))
}

func toHandle(h int64) handle.Handle {
	if h <= 0 {
		return 0
	}
	return handle.Handle(h)
}

// copyWindow returns a copy of data[offset:offset+length].
func copyWindow(data []byte, offset, length int32) ([]byte, bool) {
	if offset < 0 || length < 0 || int64(offset)+int64(length) > int64(len(data)) {
		return nil, false
	}
	return append([]byte{}, data[offset:offset+length]...), true
}

// recovered stops a panic from unwinding into the managed runtime. It must
// be deferred directly by the entry point, whose results are then zero.
func recovered(op string) {
	if r := recover(); r != nil {
		mon.Counter("panics").Inc(1)
		Logger().Error("recovered panic",
			zap.String("op", op),
			zap.String("panic", fmt.Sprint(r)),
			zap.Stack("stack"))
	}
}

// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package wasmhost exposes the managed adapter to WebAssembly guests as a
// wazero host module.
//
// Guest arrays are (pointer, size) regions of the guest's linear memory and
// every read is copied before it reaches the codec. Encoded packets stay on
// the host in a packet array table; guests query their lengths and copy them
// into their own memory one at a time.
package wasmhost

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/common/memory"
	"storj.io/raptorq/private/handle"
	"storj.io/raptorq/private/managed"
)

var mon = monkit.Package()

// Error is the error class for host module failures.
var Error = errs.Class("wasmhost")

// Host serves codec sessions to guests.
type Host struct {
	adapter *managed.Adapter
	config  Config
	arrays  *handle.Table[[][]byte]
}

// New returns a host serving sessions of adapter.
func New(adapter *managed.Adapter, config Config) *Host {
	config.Setup()
	return &Host{
		adapter: adapter,
		config:  config,
		arrays:  handle.NewTable[[][]byte]("wasm_packet_arrays"),
	}
}

// Arrays returns the number of packet arrays not yet freed.
func (host *Host) Arrays() int { return host.arrays.Len() }

// Instantiate registers the host module in rt under the configured name.
func (host *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (_ api.Module, err error) {
	defer mon.Task()(&ctx)(&err)

	builder := rt.NewHostModuleBuilder(host.config.ModuleName)
	for _, fn := range host.functions() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(fn.handler, fn.params, fn.results).
			Export(fn.name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	Logger().Debug("host module instantiated",
		zap.String("module", host.config.ModuleName),
		zap.Stringer("max_copy_size", host.config.MaxCopySize))
	return mod, nil
}

// EncoderWithDefaults creates an encoder from the window [offset,
// offset+length) of the guest array at ptr.
func (host *Host) EncoderWithDefaults(mem api.Memory, ptr, size uint32, offset, length, mtu int32) int64 {
	array, ok := host.read(mem, ptr, size)
	if !ok {
		return 0
	}
	return host.adapter.EncoderWithDefaults(array, offset, length, mtu)
}

// EncoderEncode encodes and stores the packets in a new packet array. It
// returns the array handle or 0 for an unknown encoder.
func (host *Host) EncoderEncode(h int64, repair int32) int64 {
	packets := host.adapter.EncoderEncode(h, repair)
	if packets == nil {
		return 0
	}
	return int64(host.arrays.Insert(packets))
}

// EncoderFree releases the encoder.
func (host *Host) EncoderFree(h int64) { host.adapter.EncoderFree(h) }

// DecoderWithDefaults creates a decoder.
func (host *Host) DecoderWithDefaults(transferLength int64, mtu int32) int64 {
	return host.adapter.DecoderWithDefaults(transferLength, mtu)
}

// DecoderDecode feeds the packet in the window [offset, offset+length) of
// the guest array at ptr to the decoder. Once the payload is complete it is
// written at outOffset into the guest array at outPtr and DecoderDecode
// returns true. The output array must lie within guest memory.
func (host *Host) DecoderDecode(mem api.Memory, h int64, ptr, size uint32, offset, length int32, outPtr, outSize uint32, outOffset int32) bool {
	array, ok := host.read(mem, ptr, size)
	if !ok {
		return false
	}
	if !inMemory(mem, outPtr, outSize) {
		Logger().Debug("guest output array out of range", zap.Uint32("ptr", outPtr), zap.Uint32("size", outSize))
		return false
	}

	payload, ok := host.adapter.DecoderDecodeCopy(h, array, offset, length)
	if !ok {
		return false
	}
	if outOffset < 0 || uint64(outOffset)+uint64(len(payload)) > uint64(outSize) {
		Logger().Warn("decoded payload does not fit guest array",
			zap.Int("payload", len(payload)), zap.Uint32("size", outSize), zap.Int32("offset", outOffset))
		return false
	}
	return host.write(mem, uint64(outPtr)+uint64(outOffset), payload)
}

// DecoderFree releases the decoder.
func (host *Host) DecoderFree(h int64) { host.adapter.DecoderFree(h) }

// PacketsCount returns the number of packets in the array, or -1 for an
// unknown array.
func (host *Host) PacketsCount(a int64) int32 {
	packets, ok := host.arrays.Get(toHandle(a))
	if !ok {
		return -1
	}
	return int32(len(packets))
}

// PacketLen returns the length of packet i, or -1 when it does not exist.
func (host *Host) PacketLen(a int64, i int32) int32 {
	packet, ok := host.packet(a, i)
	if !ok {
		return -1
	}
	return int32(len(packet))
}

// PacketCopy writes packet i into the guest array at ptr and returns its
// length. It returns -1 when the packet does not exist or does not fit.
func (host *Host) PacketCopy(mem api.Memory, a int64, i int32, ptr, size uint32) int32 {
	packet, ok := host.packet(a, i)
	if !ok || uint64(len(packet)) > uint64(size) || !inMemory(mem, ptr, size) {
		return -1
	}
	if !host.write(mem, uint64(ptr), packet) {
		return -1
	}
	return int32(len(packet))
}

// PacketsFree releases the packet array.
func (host *Host) PacketsFree(a int64) {
	host.arrays.Delete(toHandle(a))
}

func (host *Host) packet(a int64, i int32) ([]byte, bool) {
	packets, ok := host.arrays.Get(toHandle(a))
	if !ok || i < 0 || int(i) >= len(packets) {
		return nil, false
	}
	return packets[i], true
}

// read returns a view of guest memory. Callers must copy it before use.
func (host *Host) read(mem api.Memory, ptr, size uint32) ([]byte, bool) {
	if mem == nil {
		return nil, false
	}
	if memory.Size(size) > host.config.MaxCopySize {
		Logger().Warn("guest array exceeds copy limit",
			zap.Uint32("size", size), zap.Stringer("limit", host.config.MaxCopySize))
		return nil, false
	}
	data, ok := mem.Read(ptr, size)
	if !ok {
		Logger().Debug("guest array out of range", zap.Uint32("ptr", ptr), zap.Uint32("size", size))
	}
	return data, ok
}

func (host *Host) write(mem api.Memory, ptr uint64, data []byte) bool {
	if mem == nil {
		return false
	}
	if memory.Size(len(data)) > host.config.MaxCopySize {
		Logger().Warn("copy to guest exceeds copy limit",
			zap.Int("size", len(data)), zap.Stringer("limit", host.config.MaxCopySize))
		return false
	}
	if ptr+uint64(len(data)) > uint64(mem.Size()) {
		return false
	}
	return mem.Write(uint32(ptr), data)
}

// inMemory reports whether the guest array [ptr, ptr+size) lies within mem.
func inMemory(mem api.Memory, ptr, size uint32) bool {
	return mem != nil && uint64(ptr)+uint64(size) <= uint64(mem.Size())
}

func toHandle(a int64) handle.Handle {
	if a <= 0 {
		return 0
	}
	return handle.Handle(a)
}

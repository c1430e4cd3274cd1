// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero/api"
)

type hostFunc struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
	handler api.GoModuleFunc
}

const (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// functions lists the exports of the host module. Memory arguments refer to
// the calling module's memory.
func (host *Host) functions() []hostFunc {
	return []hostFunc{
		{
			name:    "encoder_with_defaults",
			params:  []api.ValueType{i32, i32, i32, i32, i32},
			results: []api.ValueType{i64},
			handler: func(_ context.Context, mod api.Module, stack []uint64) {
				stack[0] = api.EncodeI64(host.EncoderWithDefaults(mod.Memory(),
					api.DecodeU32(stack[0]), api.DecodeU32(stack[1]),
					api.DecodeI32(stack[2]), api.DecodeI32(stack[3]), api.DecodeI32(stack[4])))
			},
		},
		{
			name:    "encoder_encode",
			params:  []api.ValueType{i64, i32},
			results: []api.ValueType{i64},
			handler: func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = api.EncodeI64(host.EncoderEncode(int64(stack[0]), api.DecodeI32(stack[1])))
			},
		},
		{
			name:   "encoder_free",
			params: []api.ValueType{i64},
			handler: func(_ context.Context, _ api.Module, stack []uint64) {
				host.EncoderFree(int64(stack[0]))
			},
		},
		{
			name:    "decoder_with_defaults",
			params:  []api.ValueType{i64, i32},
			results: []api.ValueType{i64},
			handler: func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = api.EncodeI64(host.DecoderWithDefaults(int64(stack[0]), api.DecodeI32(stack[1])))
			},
		},
		{
			name:    "decoder_decode",
			params:  []api.ValueType{i64, i32, i32, i32, i32, i32, i32, i32},
			results: []api.ValueType{i32},
			handler: func(_ context.Context, mod api.Module, stack []uint64) {
				ok := host.DecoderDecode(mod.Memory(), int64(stack[0]),
					api.DecodeU32(stack[1]), api.DecodeU32(stack[2]),
					api.DecodeI32(stack[3]), api.DecodeI32(stack[4]),
					api.DecodeU32(stack[5]), api.DecodeU32(stack[6]), api.DecodeI32(stack[7]))
				stack[0] = boolean(ok)
			},
		},
		{
			name:   "decoder_free",
			params: []api.ValueType{i64},
			handler: func(_ context.Context, _ api.Module, stack []uint64) {
				host.DecoderFree(int64(stack[0]))
			},
		},
		{
			name:    "packets_count",
			params:  []api.ValueType{i64},
			results: []api.ValueType{i32},
			handler: func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = api.EncodeI32(host.PacketsCount(int64(stack[0])))
			},
		},
		{
			name:    "packet_len",
			params:  []api.ValueType{i64, i32},
			results: []api.ValueType{i32},
			handler: func(_ context.Context, _ api.Module, stack []uint64) {
				stack[0] = api.EncodeI32(host.PacketLen(int64(stack[0]), api.DecodeI32(stack[1])))
			},
		},
		{
			name:    "packet_copy",
			params:  []api.ValueType{i64, i32, i32, i32},
			results: []api.ValueType{i32},
			handler: func(_ context.Context, mod api.Module, stack []uint64) {
				stack[0] = api.EncodeI32(host.PacketCopy(mod.Memory(), int64(stack[0]),
					api.DecodeI32(stack[1]), api.DecodeU32(stack[2]), api.DecodeU32(stack[3])))
			},
		},
		{
			name:   "packets_free",
			params: []api.ValueType{i64},
			handler: func(_ context.Context, _ api.Module, stack []uint64) {
				host.PacketsFree(int64(stack[0]))
			},
		},
	}
}

func boolean(ok bool) uint64 {
	if ok {
		return 1
	}
	return 0
}

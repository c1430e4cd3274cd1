// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package wasmhost_test

import (
	"github.com/tetratelabs/wazero/api"
)

const (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

type hostImport struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

// hostImports are the host functions as a guest declares them.
var hostImports = []hostImport{
	{"encoder_with_defaults", []api.ValueType{i32, i32, i32, i32, i32}, []api.ValueType{i64}},
	{"encoder_encode", []api.ValueType{i64, i32}, []api.ValueType{i64}},
	{"encoder_free", []api.ValueType{i64}, nil},
	{"decoder_with_defaults", []api.ValueType{i64, i32}, []api.ValueType{i64}},
	{"decoder_decode", []api.ValueType{i64, i32, i32, i32, i32, i32, i32, i32}, []api.ValueType{i32}},
	{"decoder_free", []api.ValueType{i64}, nil},
	{"packets_count", []api.ValueType{i64}, []api.ValueType{i32}},
	{"packet_len", []api.ValueType{i64, i32}, []api.ValueType{i32}},
	{"packet_copy", []api.ValueType{i64, i32, i32, i32}, []api.ValueType{i32}},
	{"packets_free", []api.ValueType{i64}, nil},
}

// Binary module section ids, external kinds and opcodes.
const (
	sectionType     = 0x01
	sectionImport   = 0x02
	sectionFunction = 0x03
	sectionMemory   = 0x05
	sectionExport   = 0x07
	sectionCode     = 0x0a

	kindFunc   = 0x00
	kindMemory = 0x02

	funcTypeMarker = 0x60

	opCall     = 0x10
	opLocalGet = 0x20
	opEnd      = 0x0b
)

// guestModule assembles a guest with one page of memory exported as
// "memory". Every function of imports is imported from module and
// re-exported under its own name by a function forwarding its arguments, so
// host calls made through the exports see the guest as the caller.
func guestModule(module string, imports []hostImport) []byte {
	var types, imps, funcs, exports, code buffer

	types.u32(uint32(len(imports)))
	imps.u32(uint32(len(imports)))
	funcs.u32(uint32(len(imports)))
	exports.u32(uint32(len(imports) + 1))
	code.u32(uint32(len(imports)))

	exports.str("memory")
	exports.put(kindMemory)
	exports.u32(0)

	for i, imp := range imports {
		index := uint32(i)

		types.put(funcTypeMarker)
		types.u32(uint32(len(imp.params)))
		for _, param := range imp.params {
			types.put(param)
		}
		types.u32(uint32(len(imp.results)))
		for _, result := range imp.results {
			types.put(result)
		}

		imps.str(module)
		imps.str(imp.name)
		imps.put(kindFunc)
		imps.u32(index)

		funcs.u32(index)

		exports.str(imp.name)
		exports.put(kindFunc)
		exports.u32(uint32(len(imports)) + index)

		var body buffer
		body.u32(0) // no locals
		for local := range imp.params {
			body.put(opLocalGet)
			body.u32(uint32(local))
		}
		body.put(opCall)
		body.u32(index)
		body.put(opEnd)

		code.u32(uint32(len(body)))
		code = append(code, body...)
	}

	var memory buffer
	memory.u32(1)
	memory.put(0x00) // no maximum
	memory.u32(1)

	out := buffer{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out.section(sectionType, types)
	out.section(sectionImport, imps)
	out.section(sectionFunction, funcs)
	out.section(sectionMemory, memory)
	out.section(sectionExport, exports)
	out.section(sectionCode, code)
	return out
}

type buffer []byte

func (b *buffer) put(v byte) { *b = append(*b, v) }

// u32 appends v as unsigned LEB128.
func (b *buffer) u32(v uint32) {
	for {
		next := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			next |= 0x80
		}
		b.put(next)
		if v == 0 {
			return
		}
	}
}

func (b *buffer) str(s string) {
	b.u32(uint32(len(s)))
	*b = append(*b, s...)
}

func (b *buffer) section(id byte, content buffer) {
	b.put(id)
	b.u32(uint32(len(content)))
	*b = append(*b, content...)
}

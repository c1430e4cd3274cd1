// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Command libraptorq builds the codec as a C shared library:
//
//	go build -buildmode=c-shared -o libraptorq.so ./cmd/libraptorq
//
// The declarations callers compile against are in include/raptorq.h.
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../include
#include "raptorq_types.h"
*/
import "C"

import (
	"fmt"
	"os"
	"unsafe"

	"storj.io/raptorq/private/cabi"
	"storj.io/raptorq/private/logenv"
)

func init() {
	log, err := logenv.Logger()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "libraptorq:", err)
		return
	}
	if log != nil {
		cabi.SetLogger(log)
	}
}

//export raptorq_encoder_with_defaults
func raptorq_encoder_with_defaults(data *C.uint8_t, dataLen C.size_t, mtu C.uint16_t) *C.struct_raptorq_encoder {
	return (*C.struct_raptorq_encoder)(cabi.Default.EncoderWithDefaults(unsafe.Pointer(data), uintptr(dataLen), uint16(mtu)))
}

//export raptorq_release_encoder
func raptorq_release_encoder(encoder *C.struct_raptorq_encoder) {
	cabi.Default.ReleaseEncoder(unsafe.Pointer(encoder))
}

//export raptorq_encode
func raptorq_encode(encoder *C.struct_raptorq_encoder, repair C.uint32_t) *C.struct_raptorq_encoding_packet {
	return (*C.struct_raptorq_encoding_packet)(cabi.Default.Encode(unsafe.Pointer(encoder), uint32(repair)))
}

//export raptorq_release_encoding_packet
func raptorq_release_encoding_packet(packet *C.struct_raptorq_encoding_packet) {
	cabi.Default.ReleaseEncodingPacket(unsafe.Pointer(packet))
}

//export raptorq_release_encoding_packets
func raptorq_release_encoding_packets(head *C.struct_raptorq_encoding_packet) {
	cabi.Default.ReleaseEncodingPackets(unsafe.Pointer(head))
}

//export raptorq_decoder_with_defaults
func raptorq_decoder_with_defaults(transferLength C.uint64_t, mtu C.uint16_t) *C.struct_raptorq_decoder {
	return (*C.struct_raptorq_decoder)(cabi.Default.DecoderWithDefaults(uint64(transferLength), uint16(mtu)))
}

//export raptorq_decode
func raptorq_decode(decoder *C.struct_raptorq_decoder, packet *C.uint8_t, packetLen C.size_t, output *C.uint8_t) C.size_t {
	return C.size_t(cabi.Default.Decode(unsafe.Pointer(decoder), unsafe.Pointer(packet), uintptr(packetLen), unsafe.Pointer(output)))
}

//export raptorq_release_decoder
func raptorq_release_decoder(decoder *C.struct_raptorq_decoder) {
	cabi.Default.ReleaseDecoder(unsafe.Pointer(decoder))
}

//export raptorq_encoder_new
func raptorq_encoder_new(data *C.uint8_t, dataLen C.size_t, mtu C.uint16_t) *C.struct_raptorq_encoder {
	return (*C.struct_raptorq_encoder)(cabi.Default.EncoderNew(unsafe.Pointer(data), uintptr(dataLen), uint16(mtu)))
}

//export raptorq_encoder_free
func raptorq_encoder_free(encoder *C.struct_raptorq_encoder) {
	cabi.Default.EncoderFree(unsafe.Pointer(encoder))
}

//export raptorq_encoder_packets
func raptorq_encoder_packets(encoder *C.struct_raptorq_encoder, repair C.uint32_t, out **C.struct_raptorq_slice) C.size_t {
	return C.size_t(cabi.Default.EncoderPackets(unsafe.Pointer(encoder), uint32(repair), (*unsafe.Pointer)(unsafe.Pointer(out))))
}

//export raptorq_packets_free
func raptorq_packets_free(packets *C.struct_raptorq_slice, count C.size_t) {
	cabi.Default.PacketsFree(unsafe.Pointer(packets), uintptr(count))
}

//export raptorq_encoder_encode
func raptorq_encoder_encode(encoder *C.struct_raptorq_encoder, repair C.uint32_t) C.size_t {
	return C.size_t(cabi.Default.EncoderEncode(unsafe.Pointer(encoder), uint32(repair)))
}

//export raptorq_encoder_next_packet
func raptorq_encoder_next_packet(encoder *C.struct_raptorq_encoder, output *C.uint8_t, outputLen C.size_t) C.size_t {
	return C.size_t(cabi.Default.EncoderNextPacket(unsafe.Pointer(encoder), unsafe.Pointer(output), uintptr(outputLen)))
}

//export raptorq_decoder_new
func raptorq_decoder_new(transferLength C.uint64_t, mtu C.uint16_t) *C.struct_raptorq_decoder {
	return (*C.struct_raptorq_decoder)(cabi.Default.DecoderNew(uint64(transferLength), uint16(mtu)))
}

//export raptorq_decoder_free
func raptorq_decoder_free(decoder *C.struct_raptorq_decoder) {
	cabi.Default.DecoderFree(unsafe.Pointer(decoder))
}

//export raptorq_decoder_decode
func raptorq_decoder_decode(decoder *C.struct_raptorq_decoder, packet *C.uint8_t, packetLen C.size_t, output *C.uint8_t, outputLen C.size_t, written *C.size_t) C.raptorq_decode_status_t {
	status := cabi.Default.DecoderDecode(unsafe.Pointer(decoder), unsafe.Pointer(packet), uintptr(packetLen),
		unsafe.Pointer(output), uintptr(outputLen), (*uintptr)(unsafe.Pointer(written)))
	return C.raptorq_decode_status_t(status)
}

func main() {}

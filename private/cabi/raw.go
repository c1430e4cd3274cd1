// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package cabi

import (
	"unsafe"

	"go.uber.org/zap"

	"storj.io/raptorq"
	"storj.io/raptorq/private/cmem"
)

// EncoderWithDefaults implements raptorq_encoder_with_defaults. The data is
// copied, so the caller may release it once the call returns. It returns nil
// when data is nil and dataLen is not zero.
func (abi *ABI) EncoderWithDefaults(data unsafe.Pointer, dataLen uintptr, mtu uint16) (enc unsafe.Pointer) {
	defer recovered("raptorq_encoder_with_defaults")

	if data == nil && dataLen > 0 {
		Logger().Debug("encoder without data", zap.Uint64("len", uint64(dataLen)))
		return nil
	}
	return abi.newEncoder("raptorq_encoder_with_defaults", data, dataLen, mtu)
}

// ReleaseEncoder implements raptorq_release_encoder.
func (abi *ABI) ReleaseEncoder(enc unsafe.Pointer) {
	defer recovered("raptorq_release_encoder")

	abi.releaseEncoder("raptorq_release_encoder", enc)
}

// DecoderWithDefaults implements raptorq_decoder_with_defaults.
func (abi *ABI) DecoderWithDefaults(transferLength uint64, mtu uint16) (dec unsafe.Pointer) {
	defer recovered("raptorq_decoder_with_defaults")

	return abi.newDecoder("raptorq_decoder_with_defaults", transferLength, mtu)
}

// Decode implements raptorq_decode. Once the payload is complete it is
// copied to output and its length returned; otherwise Decode returns 0.
// output must have room for the transfer length.
func (abi *ABI) Decode(dec, packet unsafe.Pointer, packetLen uintptr, output unsafe.Pointer) (written uintptr) {
	defer recovered("raptorq_decode")

	session, ok := abi.decoder(dec)
	if !ok {
		return 0
	}

	result, ok := abi.decode("raptorq_decode", session, packet, packetLen)
	if !ok || result.Status != raptorq.StatusComplete || len(result.Data) == 0 {
		return 0
	}
	if output == nil {
		Logger().Warn("decoded payload without output buffer", zap.Int("len", len(result.Data)))
		return 0
	}

	return uintptr(copy(cmem.View(output, len(result.Data)), result.Data))
}

// ReleaseDecoder implements raptorq_release_decoder.
func (abi *ABI) ReleaseDecoder(dec unsafe.Pointer) {
	defer recovered("raptorq_release_decoder")

	abi.releaseDecoder("raptorq_release_decoder", dec)
}

// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package raptorq_test

import (
	"testing"

	"storj.io/raptorq"
)

func FuzzDecodeBytes(f *testing.F) {
	payload := make([]byte, 3000)
	for i := range payload {
		payload[i] = byte(i)
	}

	encoder, err := raptorq.EncoderWithDefaults(payload, 1024)
	if err != nil {
		f.Fatal(err)
	}
	packets, err := encoder.Packets(f.Context(), 1)
	if err != nil {
		f.Fatal(err)
	}
	for _, packet := range packets {
		f.Add(packet.Serialize())
	}
	f.Add([]byte{})
	f.Add([]byte{0x08, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		decoder := raptorq.DecoderWithDefaults(uint64(len(payload)), 1024)

		result, err := decoder.DecodeBytes(t.Context(), data)
		if err != nil {
			t.Fatal(err)
		}
		if result.Status == raptorq.StatusComplete && len(result.Data) != len(payload) {
			t.Fatalf("complete with %d bytes", len(result.Data))
		}
	})
}

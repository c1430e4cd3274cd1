// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package wasmhost_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"storj.io/common/memory"
	"storj.io/common/testcontext"
	"storj.io/common/testrand"
	"storj.io/raptorq/private/managed"
	"storj.io/raptorq/private/testcodec"
	"storj.io/raptorq/private/wasmhost"
)

const pageSize = 64 * 1024

type env struct {
	host  *wasmhost.Host
	mod   api.Module
	guest api.Memory
}

// newEnv instantiates the host module and a guest importing all of its
// functions.
func newEnv(t *testing.T, ctx *testcontext.Context, config wasmhost.Config) *env {
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { require.NoError(t, rt.Close(ctx)) })

	adapter := managed.New()
	host := wasmhost.New(adapter, config)
	_, err := host.Instantiate(ctx, rt)
	require.NoError(t, err)

	config.Setup()
	mod, err := rt.Instantiate(ctx, guestModule(config.ModuleName, hostImports))
	require.NoError(t, err)

	t.Cleanup(func() {
		encoders, decoders := adapter.Sessions()
		require.Zero(t, encoders)
		require.Zero(t, decoders)
		require.Zero(t, host.Arrays())
	})

	return &env{host: host, mod: mod, guest: mod.Memory()}
}

func TestScenario(t *testing.T) {
	ctx := testcontext.New(t)
	env := newEnv(t, ctx, wasmhost.Config{})
	host, mem := env.host, env.guest

	payload := testcodec.Payload(5, testcodec.ScenarioSize)
	require.True(t, mem.Write(100, payload))

	enc := host.EncoderWithDefaults(mem, 100, uint32(len(payload)), 0, int32(len(payload)), testcodec.ScenarioMTU)
	require.NotZero(t, enc)
	defer host.EncoderFree(enc)

	array := host.EncoderEncode(enc, testcodec.ScenarioRepair)
	require.NotZero(t, array)
	defer host.PacketsFree(array)

	count := host.PacketsCount(array)
	require.Equal(t, int32(testcodec.ScenarioSystematic+testcodec.ScenarioRepair), count)

	dec := host.DecoderWithDefaults(int64(len(payload)), testcodec.ScenarioMTU)
	require.NotZero(t, dec)
	defer host.DecoderFree(dec)

	const packetAt, outAt = 20000, 30000
	var done bool
	for i := int32(0); i < count; i++ {
		if i == 1 {
			continue
		}
		n := host.PacketLen(array, i)
		require.Positive(t, n)
		require.Equal(t, n, host.PacketCopy(mem, array, i, packetAt, 2048))

		done = host.DecoderDecode(mem, dec, packetAt, uint32(n), 0, n, outAt, uint32(len(payload)), 0)
	}
	require.True(t, done)

	output, ok := mem.Read(outAt, uint32(len(payload)))
	require.True(t, ok)
	require.Equal(t, payload, output)
}

func TestExports(t *testing.T) {
	ctx := testcontext.New(t)
	env := newEnv(t, ctx, wasmhost.Config{ModuleName: "fec"})

	call := func(name string, params ...uint64) uint64 {
		fn := env.mod.ExportedFunction(name)
		require.NotNil(t, fn, name)
		results, err := fn.Call(ctx, params...)
		require.NoError(t, err, name)
		if len(results) == 0 {
			return 0
		}
		return results[0]
	}
	signed := func(v int) uint64 { return api.EncodeI32(int32(v)) }
	unsigned := func(v int) uint64 { return api.EncodeU32(uint32(v)) }

	payload := testcodec.Payload(9, 3000)
	const arrayAt, packetAt, outAt = 100, 8000, 12000

	// the payload sits behind ten bytes of the guest array
	require.True(t, env.guest.Write(arrayAt+10, payload))
	enc := call("encoder_with_defaults", unsigned(arrayAt), unsigned(len(payload)+10), signed(10), signed(len(payload)), signed(1024))
	require.NotZero(t, enc)

	array := call("encoder_encode", enc, signed(1))
	require.NotZero(t, array)
	count := int(api.DecodeI32(call("packets_count", array)))
	require.Equal(t, 4, count)
	require.Equal(t, int32(-1), api.DecodeI32(call("packet_len", array, signed(count))))
	require.Equal(t, int32(-1), api.DecodeI32(call("packet_copy", array, signed(0), unsigned(packetAt), unsigned(10))))

	dec := call("decoder_with_defaults", api.EncodeI64(int64(len(payload))), signed(1024))
	require.NotZero(t, dec)

	var done uint64
	for i := 1; i < count; i++ {
		n := int(api.DecodeI32(call("packet_len", array, signed(i))))
		require.Positive(t, n)
		require.Equal(t, int32(n), api.DecodeI32(call("packet_copy", array, signed(i), unsigned(packetAt), unsigned(2048))))

		done = call("decoder_decode", dec, unsigned(packetAt), unsigned(n), signed(0), signed(n), unsigned(outAt), unsigned(len(payload)), signed(0))
	}
	require.Equal(t, uint64(1), done)

	output, ok := env.guest.Read(outAt, uint32(len(payload)))
	require.True(t, ok)
	require.Equal(t, payload, output)

	// the output array must lie within guest memory
	require.Zero(t, call("decoder_decode", dec, unsigned(packetAt), unsigned(10), signed(0), signed(10), unsigned(pageSize-10), unsigned(len(payload)), signed(0)))

	call("packets_free", array)
	require.Equal(t, int32(-1), api.DecodeI32(call("packets_count", array)))
	call("packets_free", array)

	call("encoder_free", enc)
	call("decoder_free", dec)
	require.Zero(t, call("encoder_encode", enc, signed(0)))
	require.Zero(t, call("decoder_decode", dec, unsigned(packetAt), unsigned(10), signed(0), signed(10), unsigned(outAt), unsigned(len(payload)), signed(0)))
}

func TestOutputOutOfRange(t *testing.T) {
	ctx := testcontext.New(t)
	env := newEnv(t, ctx, wasmhost.Config{})
	host, mem := env.host, env.guest

	data := testrand.BytesInt(2000)
	require.True(t, mem.Write(0, data))
	enc := host.EncoderWithDefaults(mem, 0, uint32(len(data)), 0, int32(len(data)), 1024)
	require.NotZero(t, enc)
	defer host.EncoderFree(enc)

	array := host.EncoderEncode(enc, 0)
	defer host.PacketsFree(array)

	dec := host.DecoderWithDefaults(int64(len(data)), 1024)
	defer host.DecoderFree(dec)

	const packetAt, outAt = 10000, 20000
	for i := int32(0); i < host.PacketsCount(array); i++ {
		n := host.PacketCopy(mem, array, i, packetAt, 2048)
		require.Positive(t, n)
		host.DecoderDecode(mem, dec, packetAt, uint32(n), 0, n, outAt, uint32(len(data)), 0)
	}

	before, ok := mem.Read(0, pageSize)
	require.True(t, ok)
	before = append([]byte{}, before...)

	// the write address wraps around into the start of guest memory
	require.False(t, host.DecoderDecode(mem, dec, packetAt, 100, 0, 100, 0xFFFFFF00, 0xFFFFFFFF, 0x110))
	// the payload fits in memory but the declared array does not
	require.False(t, host.DecoderDecode(mem, dec, packetAt, 100, 0, 100, pageSize-3000, 4000, 0))
	// packets are only copied into arrays within guest memory
	require.Equal(t, int32(-1), host.PacketCopy(mem, array, 0, pageSize-2000, 4000))

	after, ok := mem.Read(0, pageSize)
	require.True(t, ok)
	require.Equal(t, before, after)

	require.True(t, host.DecoderDecode(mem, dec, packetAt, 100, 0, 100, outAt, uint32(len(data)), 0))
	output, ok := mem.Read(outAt, uint32(len(data)))
	require.True(t, ok)
	require.Equal(t, data, output)
}

func TestGuestBounds(t *testing.T) {
	ctx := testcontext.New(t)
	env := newEnv(t, ctx, wasmhost.Config{MaxCopySize: 4 * memory.KiB})
	host, mem := env.host, env.guest

	// arrays outside guest memory or above the copy limit are rejected
	require.Zero(t, host.EncoderWithDefaults(mem, pageSize-10, 20, 0, 20, 1024))
	require.Zero(t, host.EncoderWithDefaults(mem, 0, 8*1024, 0, 100, 1024))
	require.Zero(t, host.EncoderWithDefaults(nil, 0, 100, 0, 100, 1024))

	data := testrand.BytesInt(2000)
	require.True(t, mem.Write(0, data))
	enc := host.EncoderWithDefaults(mem, 0, uint32(len(data)), 0, int32(len(data)), 1024)
	require.NotZero(t, enc)
	defer host.EncoderFree(enc)

	array := host.EncoderEncode(enc, 0)
	defer host.PacketsFree(array)
	require.Equal(t, int32(2), host.PacketsCount(array))

	n := host.PacketLen(array, 0)
	require.Equal(t, int32(-1), host.PacketCopy(mem, array, 0, 0, uint32(n-1)))
	require.Equal(t, int32(-1), host.PacketCopy(mem, array, 0, pageSize-uint32(n)+1, uint32(n)))
	require.Equal(t, int32(-1), host.PacketCopy(mem, array, -1, 0, 2048))

	dec := host.DecoderWithDefaults(int64(len(data)), 1024)
	defer host.DecoderFree(dec)

	const packetAt = 10000
	for i := int32(0); i < 2; i++ {
		n := host.PacketCopy(mem, array, i, packetAt, 2048)
		require.Positive(t, n)

		// the payload does not fit behind the offset
		require.False(t, host.DecoderDecode(mem, dec, packetAt, uint32(n), 0, n, 20000, uint32(len(data)), 1))
	}

	// the payload does not fit in guest memory
	require.False(t, host.DecoderDecode(mem, dec, packetAt, 100, 0, 100, pageSize-100, uint32(len(data)), 0))

	require.True(t, host.DecoderDecode(mem, dec, packetAt, 100, 0, 100, 20000, uint32(len(data)), 0))
	output, ok := mem.Read(20000, uint32(len(data)))
	require.True(t, ok)
	require.Equal(t, data, output)
}

func TestConfigSetup(t *testing.T) {
	var config wasmhost.Config
	config.Setup()
	require.Equal(t, wasmhost.DefaultConfig, config)

	config = wasmhost.Config{ModuleName: "fec", MaxCopySize: memory.KiB}
	config.Setup()
	require.Equal(t, "fec", config.ModuleName)
	require.Equal(t, memory.KiB, config.MaxCopySize)
}

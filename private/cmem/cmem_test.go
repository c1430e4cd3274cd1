// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package cmem_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"storj.io/common/memory"
	"storj.io/common/testrand"
	"storj.io/raptorq/private/cmem"
)

func TestBytes(t *testing.T) {
	tracker := cmem.NewTracker(cmem.Malloc)

	data := testrand.BytesInt(memory.KiB.Int())
	p := cmem.Bytes(tracker, data)
	require.NotNil(t, p)
	require.Equal(t, data, cmem.View(p, len(data)))

	copied := cmem.Copy(p, len(data))
	tracker.Free(p)
	require.Equal(t, data, copied)

	require.NoError(t, tracker.Check())
}

func TestEmpty(t *testing.T) {
	tracker := cmem.NewTracker(cmem.Malloc)

	p := cmem.Bytes(tracker, nil)
	require.NotNil(t, p)
	require.Nil(t, cmem.View(p, 0))
	require.Equal(t, []byte{}, cmem.Copy(p, 0))
	require.Equal(t, []byte{}, cmem.Copy(nil, 10))

	tracker.Free(p)
	tracker.Free(nil)
	require.NoError(t, tracker.Check())
}

func TestTracker(t *testing.T) {
	tracker := cmem.NewTracker(cmem.Malloc)

	a := tracker.Alloc(16)
	b := tracker.Alloc(32)
	require.Equal(t, 2, tracker.Live())
	require.Equal(t, 2, tracker.Allocs())
	require.Equal(t, memory.Size(48), tracker.LiveSize())
	require.True(t, tracker.Owns(a))

	tracker.Free(a)
	require.False(t, tracker.Owns(a))

	err := tracker.Check()
	require.Error(t, err)
	require.True(t, cmem.Error.Has(err))

	// double free is recorded, not forwarded
	tracker.Free(a)
	require.Equal(t, 1, tracker.InvalidFrees())

	var local byte
	tracker.Free(unsafe.Pointer(&local))
	require.Equal(t, 2, tracker.InvalidFrees())

	tracker.Free(b)
	require.Zero(t, tracker.Live())
	require.Error(t, tracker.Check())
}

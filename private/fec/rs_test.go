// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fec_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/mwc"

	"storj.io/common/testrand"
	"storj.io/raptorq/private/fec"
)

func TestScheme(t *testing.T) {
	const (
		required  = 8
		shareSize = 64
	)

	scheme, err := fec.NewScheme(required, shareSize)
	require.NoError(t, err)
	require.Equal(t, required, scheme.RequiredCount())
	require.Equal(t, fec.MaxTotal, scheme.TotalCount())
	require.Equal(t, required*shareSize, scheme.StripeSize())

	stripe := testrand.BytesInt(scheme.StripeSize())

	encode := func(num int) fec.Share {
		out := make([]byte, shareSize)
		require.NoError(t, scheme.EncodeSingle(stripe, out, num))
		return fec.Share{Number: num, Data: out}
	}

	t.Run("systematic shares are source symbols", func(t *testing.T) {
		for num := 0; num < required; num++ {
			share := encode(num)
			require.Equal(t, stripe[num*shareSize:(num+1)*shareSize], share.Data)
		}
	})

	t.Run("rebuild from any required shares", func(t *testing.T) {
		for range 20 {
			var shares []fec.Share
			used := map[int]bool{}
			for len(shares) < required {
				num := mwc.Intn(required + 4)
				if used[num] {
					continue
				}
				used[num] = true
				shares = append(shares, encode(num))
			}

			out, err := scheme.Decode(nil, shares)
			require.NoError(t, err)
			require.Equal(t, stripe, out)
		}
	})

	t.Run("not enough shares", func(t *testing.T) {
		shares := []fec.Share{encode(0), encode(9)}
		_, err := scheme.Decode(nil, shares)
		require.Error(t, err)
		require.True(t, fec.Error.Has(err))
	})

	t.Run("reuses output buffer", func(t *testing.T) {
		shares := make([]fec.Share, 0, required)
		for num := 2; num < required+2; num++ {
			shares = append(shares, encode(num))
		}

		buf := make([]byte, 0, scheme.StripeSize())
		out, err := scheme.Decode(buf, shares)
		require.NoError(t, err)
		require.Equal(t, stripe, out)
		require.Equal(t, &buf[:1][0], &out[0])
	})
}

func TestNewSchemeRange(t *testing.T) {
	_, err := fec.NewScheme(0, 16)
	require.Error(t, err)

	_, err = fec.NewScheme(fec.MaxTotal+1, 16)
	require.Error(t, err)

	_, err = fec.NewScheme(4, 0)
	require.Error(t, err)

	scheme, err := fec.NewScheme(fec.MaxTotal, 16)
	require.NoError(t, err)
	require.Equal(t, fec.MaxTotal, scheme.RequiredCount())
}

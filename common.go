// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package raptorq

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"storj.io/eventkit"
)

var (
	mon = monkit.Package()
	evs = eventkit.Package()
)

// Error is default error class for raptorq.
var Error = errs.Class("raptorq")

// ErrMalformedPacket is returned when packet bytes cannot be deserialized.
var ErrMalformedPacket = errs.Class("malformed packet")

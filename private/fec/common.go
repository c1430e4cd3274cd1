// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package fec

import (
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	// Error is the default fec errs class.
	Error = errs.Class("fec")

	mon = monkit.Package()
)

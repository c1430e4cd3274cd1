// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package cmem allocates memory that is handed to foreign callers.
//
// Every buffer that crosses the C boundary is allocated and released through
// one Allocator, so a caller can always give it back to the library that
// produced it.
package cmem

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/zeebo/errs"
)

// Error is the error class for allocation failures.
var Error = errs.Class("cmem")

// Allocator allocates and releases foreign-visible memory.
type Allocator interface {
	// Alloc returns n bytes of memory or nil when the allocation failed.
	Alloc(n uintptr) unsafe.Pointer
	// Free releases memory returned by Alloc. Free(nil) is a no-op.
	Free(p unsafe.Pointer)
}

// Malloc is the allocator family exposed to foreign callers: C malloc and
// free.
var Malloc Allocator = mallocAllocator{}

type mallocAllocator struct{}

func (mallocAllocator) Alloc(n uintptr) unsafe.Pointer {
	// malloc(0) may return NULL, which callers treat as failure.
	if n == 0 {
		n = 1
	}
	return C.malloc(C.size_t(n))
}

func (mallocAllocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	C.free(p)
}

// Bytes copies data into memory owned by a. It returns nil when the
// allocation fails.
func Bytes(a Allocator, data []byte) unsafe.Pointer {
	p := a.Alloc(uintptr(len(data)))
	if p == nil {
		return nil
	}
	copy(View(p, len(data)), data)
	return p
}

// View returns a slice over n bytes at p without copying. The slice is only
// valid while the caller keeps p alive.
func View(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}

// Copy returns a Go-owned copy of n bytes at p.
func Copy(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return []byte{}
	}
	return append([]byte(nil), View(p, n)...)
}

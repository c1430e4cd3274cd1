// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package cmem

import (
	"sync"
	"unsafe"

	"github.com/zeebo/errs"

	"storj.io/common/memory"
)

// Tracker wraps an Allocator and records every live allocation. It reports
// leaks, double frees and frees of memory it never handed out. Invalid frees
// are counted and never forwarded to the wrapped allocator.
type Tracker struct {
	base Allocator

	mu           sync.Mutex
	live         map[unsafe.Pointer]uintptr
	allocs       int
	invalidFrees int
}

// NewTracker returns a Tracker allocating from base.
func NewTracker(base Allocator) *Tracker {
	return &Tracker{
		base: base,
		live: map[unsafe.Pointer]uintptr{},
	}
}

// Alloc implements Allocator.
func (tracker *Tracker) Alloc(n uintptr) unsafe.Pointer {
	p := tracker.base.Alloc(n)
	if p == nil {
		return nil
	}

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	tracker.live[p] = n
	tracker.allocs++
	return p
}

// Free implements Allocator.
func (tracker *Tracker) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}

	tracker.mu.Lock()
	_, ok := tracker.live[p]
	if !ok {
		tracker.invalidFrees++
		tracker.mu.Unlock()
		return
	}
	delete(tracker.live, p)
	tracker.mu.Unlock()

	tracker.base.Free(p)
}

// Live returns the number of allocations not yet freed.
func (tracker *Tracker) Live() int {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return len(tracker.live)
}

// LiveSize returns the total size of allocations not yet freed.
func (tracker *Tracker) LiveSize() memory.Size {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	var total memory.Size
	for _, n := range tracker.live {
		total += memory.Size(n)
	}
	return total
}

// Allocs returns the number of successful allocations so far.
func (tracker *Tracker) Allocs() int {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.allocs
}

// InvalidFrees returns how many frees did not match a live allocation.
func (tracker *Tracker) InvalidFrees() int {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	return tracker.invalidFrees
}

// Owns reports whether p is a live allocation of this tracker.
func (tracker *Tracker) Owns(p unsafe.Pointer) bool {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	_, ok := tracker.live[p]
	return ok
}

// Check returns an error when there are leaked allocations or invalid frees.
func (tracker *Tracker) Check() error {
	tracker.mu.Lock()
	defer tracker.mu.Unlock()

	var group errs.Group
	if len(tracker.live) > 0 {
		var size memory.Size
		for _, n := range tracker.live {
			size += memory.Size(n)
		}
		group.Add(Error.New("%d allocations leaked (%s)", len(tracker.live), size))
	}
	if tracker.invalidFrees > 0 {
		group.Add(Error.New("%d invalid frees", tracker.invalidFrees))
	}
	return group.Err()
}

// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

// Package handle maps opaque integer handles to sessions owned by the Go
// side of a foreign boundary.
package handle

import (
	"sync"

	"github.com/spacemonkeygo/monkit/v3"
)

var mon = monkit.Package()

// Handle identifies a session across a foreign boundary. The zero Handle is
// the null handle and never refers to a session.
type Handle uint64

// Table owns sessions and hands out handles for them. Handles are never
// reused, so a stale handle can not reach a newer session.
//
// Table only guards its own map: calls using the same session from
// different threads must be serialized by the caller.
type Table[T any] struct {
	name string

	mu       sync.Mutex
	next     Handle
	sessions map[Handle]T
}

// NewTable returns an empty table. name is used for metrics.
func NewTable[T any](name string) *Table[T] {
	return &Table[T]{
		name:     name,
		sessions: map[Handle]T{},
	}
}

// Insert takes ownership of session and returns its handle.
func (table *Table[T]) Insert(session T) Handle {
	table.mu.Lock()
	defer table.mu.Unlock()

	table.next++
	h := table.next
	table.sessions[h] = session

	mon.IntVal("live_sessions", monkit.NewSeriesTag("table", table.name)).Observe(int64(len(table.sessions)))
	return h
}

// Get returns the session for h without giving up ownership.
func (table *Table[T]) Get(h Handle) (session T, ok bool) {
	if h == 0 {
		return session, false
	}

	table.mu.Lock()
	defer table.mu.Unlock()

	session, ok = table.sessions[h]
	return session, ok
}

// Delete removes h from the table and returns its session. Deleting the null
// handle, an unknown handle or an already deleted handle reports ok == false.
func (table *Table[T]) Delete(h Handle) (session T, ok bool) {
	if h == 0 {
		return session, false
	}

	table.mu.Lock()
	defer table.mu.Unlock()

	session, ok = table.sessions[h]
	if !ok {
		mon.Counter("invalid_release", monkit.NewSeriesTag("table", table.name)).Inc(1)
		return session, false
	}
	delete(table.sessions, h)

	mon.IntVal("live_sessions", monkit.NewSeriesTag("table", table.name)).Observe(int64(len(table.sessions)))
	return session, true
}

// Len returns the number of live sessions.
func (table *Table[T]) Len() int {
	table.mu.Lock()
	defer table.mu.Unlock()

	return len(table.sessions)
}

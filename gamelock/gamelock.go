// Package gamelock implements the process-wide per-object readers-
// preferred lock table described by spec.md's game lock table component,
// grounded on original_source/src/gamelock.c: a global map from an
// object's identity to a lazily-created lock, letting the renderer read
// render contexts concurrently with short update-loop writer sections.
package gamelock

import (
	"sync"

	"github.com/segmentio/fasthash/fnv1a"
)

// objLock is one object's readers-preferred lock: readers is the live
// reader count, guarded by mu; sub is held exclusively whenever readers >
// 0 and released back when the count returns to zero, and is taken
// directly by a writer, matching the up/down counter discipline in
// gamelock.c.
type objLock struct {
	mu      sync.Mutex
	readers int
	sub     sync.Mutex
}

// Table is the process-wide lock table. Keys are looked up by an object's
// stable key (typically its pointer address, see Key), hashed with
// fasthash/fnv1a the way the teacher's dependency graph exercises it.
type Table struct {
	bootstrap sync.Mutex
	locks     map[uint64]*objLock
}

// New returns an empty table.
func New() *Table {
	return &Table{locks: make(map[uint64]*objLock)}
}

// Key derives the table key for an arbitrary object identity, hashing its
// pointer-sized address so distinct objects essentially never collide.
func Key(obj any) uint64 {
	addr := addressOf(obj)
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(addr >> (8 * i))
	}
	return fnv1a.HashBytes64(buf[:])
}

func (t *Table) lockFor(key uint64) *objLock {
	t.bootstrap.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &objLock{}
		t.locks[key] = l
	}
	t.bootstrap.Unlock()
	return l
}

// Lock begins a shared reader section for key, matching
// pok_game_lock_lock: the first reader to arrive takes the exclusive
// sub-lock on behalf of the group; later readers just bump the count.
func (t *Table) Lock(key uint64) {
	l := t.lockFor(key)
	l.mu.Lock()
	l.readers++
	if l.readers == 1 {
		l.sub.Lock()
	}
	l.mu.Unlock()
}

// Unlock ends a shared reader section, releasing the sub-lock once the
// last reader leaves, matching pok_game_lock_unlock.
func (t *Table) Unlock(key uint64) {
	l := t.lockFor(key)
	l.mu.Lock()
	l.readers--
	if l.readers == 0 {
		l.sub.Unlock()
	}
	l.mu.Unlock()
}

// ModifyEnter begins an exclusive writer section for key, matching
// pok_game_lock_modify_enter.
func (t *Table) ModifyEnter(key uint64) {
	l := t.lockFor(key)
	l.sub.Lock()
}

// ModifyExit ends the writer section, matching pok_game_lock_modify_exit.
func (t *Table) ModifyExit(key uint64) {
	l := t.lockFor(key)
	l.sub.Unlock()
}

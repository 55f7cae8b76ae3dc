// Package keylock provides per-key exclusive sections so that at most one
// protocol run executes at a time for any aggregate id, plus a whole-space
// lock for bulk operations.
package keylock

import "sync"

// KeyedMutex serializes callers per key. Lock and LockAll return the matching
// unlock function.
type KeyedMutex struct {
	// space is held shared by per-key sections and exclusively by LockAll,
	// so a bulk operation never interleaves with per-key runs.
	space sync.RWMutex

	mu   sync.Mutex
	keys map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New returns an empty KeyedMutex.
func New() *KeyedMutex {
	return &KeyedMutex{keys: make(map[string]*entry)}
}

// Lock acquires the exclusive section for key, blocking while another caller
// holds it or while LockAll is in effect.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.space.RLock()

	k.mu.Lock()
	e, ok := k.keys[key]
	if !ok {
		e = &entry{}
		k.keys[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.keys, key)
		}
		k.mu.Unlock()

		k.space.RUnlock()
	}
}

// LockAll acquires the whole key space, blocking until every per-key section
// has been released and keeping new ones out until unlocked.
func (k *KeyedMutex) LockAll() (unlock func()) {
	k.space.Lock()
	return k.space.Unlock
}

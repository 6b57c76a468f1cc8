package session

import "sync"

// keyedMutex serializes work per session id. Entries are reference counted
// and removed once the last holder leaves, so idle sessions cost nothing.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	sync.Mutex
	holders int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*keyedEntry)}
}

// Lock blocks until id is free and returns the matching unlock.
func (k *keyedMutex) Lock(id string) (unlock func()) {
	k.mu.Lock()
	e := k.entries[id]
	if e == nil {
		e = &keyedEntry{}
		k.entries[id] = e
	}
	e.holders++
	k.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		k.mu.Lock()
		if e.holders--; e.holders == 0 {
			delete(k.entries, id)
		}
		k.mu.Unlock()
	}
}

// Len reports how many ids are held or awaited.
func (k *keyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

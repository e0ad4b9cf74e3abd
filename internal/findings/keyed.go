package findings

import "sync"

// keyedMutex hands out one mutex per product id and forgets it once no
// goroutine holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int]*refLock)}
}

// Lock blocks until key is free and returns its unlock function
func (k *keyedMutex) Lock(key int) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

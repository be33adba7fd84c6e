package service

import "sync"

// keyedMutex provides mutual exclusion keyed by entity id, so concurrent
// calls touching the same entity serialize while unrelated entities proceed
// in parallel. One instance guards orders and another guards drivers; accept
// acquires them in order-then-driver order, and nothing acquires them the
// other way around, so the two levels cannot deadlock.
//
// Entries are retained for the life of the process, matching the store:
// entities are never deleted, and a mutex is two words.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given id and returns the unlock function.
// All calls for one id are totally ordered by this lock; the first to
// observe the entity's state inside the critical section wins.
func (l *keyedMutex) Lock(id string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

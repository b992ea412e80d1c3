package tus

import "sync"

// locker is a table of per-uid mutexes. Entries are reference-counted and
// dropped as soon as no request holds or waits on them, so the table does
// not grow with the number of uploads ever seen.
type locker struct {
	mu    sync.Mutex
	locks map[string]*uidLock
}

type uidLock struct {
	mu   sync.Mutex
	refs int
}

func newLocker() *locker {
	return &locker{locks: make(map[string]*uidLock)}
}

func (l *locker) get(uid string) *uidLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[uid]
	if !ok {
		entry = &uidLock{}
		l.locks[uid] = entry
	}
	entry.refs++
	return entry
}

func (l *locker) put(uid string, entry *uidLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, uid)
	}
}

// lock blocks until the uid is exclusively held and returns the release
// function.
func (l *locker) lock(uid string) func() {
	entry := l.get(uid)
	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.put(uid, entry)
	}
}

// tryLock acquires the uid without blocking. It returns false when another
// request holds it, which the PATCH path turns into a 409.
func (l *locker) tryLock(uid string) (func(), bool) {
	entry := l.get(uid)
	if !entry.mu.TryLock() {
		l.put(uid, entry)
		return nil, false
	}
	return func() {
		entry.mu.Unlock()
		l.put(uid, entry)
	}, true
}

// held reports the number of live entries, for tests.
func (l *locker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

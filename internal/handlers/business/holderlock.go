package business

import "sync"

// holderLocks serializes settlements per holder address. The window between
// reading availability and writing claim records must not interleave for the
// same holder, otherwise two concurrent settlements could both pass the
// availability check and over-claim. Entries are refcounted and removed when
// the last settlement for an address releases, so the map stays bounded by
// the number of in-flight settlements.
var (
	holderLocksMu sync.Mutex
	holderLocks   = make(map[string]*holderLock)
)

type holderLock struct {
	mu   sync.Mutex
	refs int
}

func lockHolder(address string) func() {
	holderLocksMu.Lock()
	l, ok := holderLocks[address]
	if !ok {
		l = &holderLock{}
		holderLocks[address] = l
	}
	l.refs++
	holderLocksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		holderLocksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(holderLocks, address)
		}
		holderLocksMu.Unlock()
	}
}

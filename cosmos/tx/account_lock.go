package tx

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"
)

// AccountLocker serializes pipelines per signing address, so that two transactions never race for the same sequence.
type AccountLocker struct {
	locks map[string]*accountLock
	lock  *sync.Mutex
}

type accountLock struct {
	semaphore *semaphore.Weighted
	waiters   int
}

func NewAccountLocker() *AccountLocker {
	return &AccountLocker{
		locks: make(map[string]*accountLock),
		lock:  &sync.Mutex{},
	}
}

// Lock blocks until address is free or ctx is done. The returned func releases the lock and is safe to call more than once.
func (al *AccountLocker) Lock(ctx context.Context, address string) (func(), error) {
	key := strings.ToLower(address)

	al.lock.Lock()
	entry, found := al.locks[key]
	if !found {
		entry = &accountLock{semaphore: semaphore.NewWeighted(1)}
		al.locks[key] = entry
	}
	entry.waiters++
	al.lock.Unlock()

	if err := entry.semaphore.Acquire(ctx, 1); err != nil {
		al.forget(key, entry)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.semaphore.Release(1)
			al.forget(key, entry)
		})
	}, nil
}

// Held reports how many pipelines hold or wait for address.
func (al *AccountLocker) Held(address string) int {
	al.lock.Lock()
	defer al.lock.Unlock()

	entry, found := al.locks[strings.ToLower(address)]
	if !found {
		return 0
	}
	return entry.waiters
}

func (al *AccountLocker) forget(key string, entry *accountLock) {
	al.lock.Lock()
	defer al.lock.Unlock()

	entry.waiters--
	if entry.waiters == 0 {
		delete(al.locks, key)
	}
}

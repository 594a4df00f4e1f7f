package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// entityLocks hands out one exclusive lock per entity key. Each lock is a
// single-slot channel; entries are dropped once nobody holds or waits on
// them.
type entityLocks struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newEntityLocks() *entityLocks {
	return &entityLocks{slots: make(map[string]*lockSlot)}
}

// lock acquires key, waiting at most ttl. The returned function releases it.
func (l *entityLocks) lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	var timeout <-chan time.Time
	if ttl > 0 {
		timer := time.NewTimer(ttl)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			l.release(key, slot)
		}, nil
	case <-ctx.Done():
		l.release(key, slot)
		return nil, ctx.Err()
	case <-timeout:
		l.release(key, slot)
		return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
	}
}

func (l *entityLocks) release(key string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

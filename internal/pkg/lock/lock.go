// Package lock provides per-key mutual exclusion.
// The bot uses it to serialise the edits of one table's message, so a
// callback answer and a roll animation frame never race on the same chat.
package lock

import (
	"context"
	"sync"
	"time"
)

// KeyedLock hands out one mutex per int64 key.
// The zero value is not usable; create one with New.
type KeyedLock struct {
	locks sync.Map // map[int64]chan struct{}
}

// New creates a new KeyedLock instance.
func New() *KeyedLock {
	return &KeyedLock{}
}

// slot returns the key's one-element semaphore, creating it on first use.
func (kl *KeyedLock) slot(key int64) chan struct{} {
	if v, ok := kl.locks.Load(key); ok {
		return v.(chan struct{})
	}
	actual, _ := kl.locks.LoadOrStore(key, make(chan struct{}, 1))
	return actual.(chan struct{})
}

// Lock blocks until the key's lock is held.
func (kl *KeyedLock) Lock(key int64) {
	kl.slot(key) <- struct{}{}
}

// Unlock releases the key's lock. Unlocking a key that is not held is a no-op.
func (kl *KeyedLock) Unlock(key int64) {
	if v, ok := kl.locks.Load(key); ok {
		select {
		case <-v.(chan struct{}):
		default:
		}
	}
}

// TryLock acquires the lock without blocking.
// Returns true if the lock was acquired, false otherwise.
func (kl *KeyedLock) TryLock(key int64) bool {
	select {
	case kl.slot(key) <- struct{}{}:
		return true
	default:
		return false
	}
}

// LockContext waits for the lock until ctx is done or timeout elapses.
// A zero timeout waits for ctx alone.
func (kl *KeyedLock) LockContext(ctx context.Context, key int64, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case kl.slot(key) <- struct{}{}:
		return nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrLockTimeout
		}
		return ctx.Err()
	}
}

// WithLock executes fn while holding the key's lock.
func (kl *KeyedLock) WithLock(key int64, fn func() error) error {
	kl.Lock(key)
	defer kl.Unlock(key)
	return fn()
}

// WithLockContext executes fn while holding the key's lock, giving up with
// ErrLockTimeout if the lock is not acquired within timeout.
func (kl *KeyedLock) WithLockContext(ctx context.Context, key int64, timeout time.Duration, fn func() error) error {
	if err := kl.LockContext(ctx, key, timeout); err != nil {
		return err
	}
	defer kl.Unlock(key)
	return fn()
}

// IsLocked reports whether the key is currently held.
// Note: This is a point-in-time check and may change immediately after.
func (kl *KeyedLock) IsLocked(key int64) bool {
	if v, ok := kl.locks.Load(key); ok {
		return len(v.(chan struct{})) == 1
	}
	return false
}

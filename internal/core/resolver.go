package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamdocs/teamdocs-server/internal/store"
)

const (
	defaultStoreTimeout = 5 * time.Second
	maxStoreAttempts    = 3
	retryBaseDelay      = 50 * time.Millisecond
)

// PairKey returns the canonical, order-independent key for a user pair:
// "dm:{min}:{max}" with the IDs sorted lexicographically. The same key
// comes out of (a, b) and (b, a).
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("dm:%s:%s", a, b)
}

// Resolver maps an unordered pair of user IDs to exactly one chat
// session, creating it on first contact. Resolve is idempotent and safe
// under concurrent first contact: a per-pair mutex guards the
// check-then-create sequence in this process, and the store's unique
// pair-key constraint covers racing writers elsewhere.
type Resolver struct {
	store   store.ChatStore
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewResolver constructs a resolver over the given chat store.
func NewResolver(chatStore store.ChatStore, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &Resolver{
		store:   chatStore,
		timeout: timeout,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (r *Resolver) pairLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}

// Resolve returns the one session for the unordered pair {a, b},
// creating it if this is the pair's first contact.
func (r *Resolver) Resolve(ctx context.Context, a, b string) (*store.ChatSession, error) {
	if a == "" || b == "" {
		return nil, ErrEmptyUserID
	}
	if a == b {
		return nil, ErrSelfChat
	}

	key := PairKey(a, b)
	lock := r.pairLock(key)
	lock.Lock()
	defer lock.Unlock()

	session, err := r.lookup(ctx, key)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	if b < a {
		a, b = b, a
	}
	created := &store.ChatSession{
		ID:      uuid.NewString(),
		PairKey: key,
		UserA:   a,
		UserB:   b,
	}

	err = retryStore(ctx, r.timeout, func(opCtx context.Context) error {
		return r.store.CreateSession(opCtx, created)
	})
	if err == nil {
		return r.lookup(ctx, key)
	}
	if errors.Is(err, store.ErrConflict) {
		// A concurrent first contact won the insert; adopt its session.
		return r.lookup(ctx, key)
	}
	return nil, err
}

func (r *Resolver) lookup(ctx context.Context, key string) (*store.ChatSession, error) {
	var session *store.ChatSession
	err := retryStore(ctx, r.timeout, func(opCtx context.Context) error {
		var lookupErr error
		session, lookupErr = r.store.GetSessionByPairKey(opCtx, key)
		return lookupErr
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// retryStore runs op with a per-attempt timeout, retrying transient
// failures a bounded number of times. NotFound and Conflict are final.
func retryStore(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxStoreAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, timeout)
		err = op(opCtx)
		cancel()

		if err == nil || errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		if attempt < maxStoreAttempts {
			select {
			case <-time.After(retryBaseDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return err
			}
		}
	}
	return err
}

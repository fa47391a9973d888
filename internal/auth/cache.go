package auth

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

// ProfileCache keeps hydrated users for a short time, keyed by a digest of
// the bearer token so raw credentials never become map keys. Concurrent
// misses for the same token share one hydration.
type ProfileCache struct {
	items *cache.Cache
	group singleflight.Group
}

// NewProfileCache returns a cache whose entries expire after ttl.
func NewProfileCache(ttl time.Duration) *ProfileCache {
	return &ProfileCache{items: cache.New(ttl, 2*ttl)}
}

// Load returns the cached user for token or hydrates it with fetch.
// A nil cache always calls fetch. The shared hydration keeps the first
// caller's deadline but not its cancellation, so one abandoned request does
// not fail the others waiting on the same token.
func (c *ProfileCache) Load(ctx context.Context, token string, fetch func(context.Context) (*User, error)) (*User, error) {
	if c == nil {
		return fetch(ctx)
	}
	key := tokenDigest(token)
	if v, ok := c.items.Get(key); ok {
		user := v.(User)
		return &user, nil
	}
	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := detach(ctx)
		defer cancel()
		user, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.items.SetDefault(key, *user)
		return *user, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		user := res.Val.(User)
		return &user, nil
	}
}

func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(base, deadline)
	}
	return context.WithCancel(base)
}

// Put replaces the entry for token.
func (c *ProfileCache) Put(token string, user User) {
	if c == nil || token == "" {
		return
	}
	c.items.SetDefault(tokenDigest(token), user)
}

// Forget drops the entry for token.
func (c *ProfileCache) Forget(token string) {
	if c == nil || token == "" {
		return
	}
	c.items.Delete(tokenDigest(token))
}

// Len reports the number of live entries.
func (c *ProfileCache) Len() int {
	if c == nil {
		return 0
	}
	return c.items.ItemCount()
}

func tokenDigest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

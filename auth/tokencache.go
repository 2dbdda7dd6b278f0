package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/google/uuid"
)

type (
	// IdentityCache remembers identities extracted from tokens that
	// already went through full verification, so the hot path skips
	// the signature check. Entries carry the token expiry and a hit
	// past that instant is treated as a miss, eviction alone is not
	// trusted to enforce it.
	IdentityCache interface {
		Save(ctx context.Context, token string, id Identity, expiresAt time.Time) error
		Lookup(ctx context.Context, token string) (Identity, bool, error)
	}

	memCache struct {
		cache *bigcache.BigCache
		now   func() time.Time
	}

	cacheEntry struct {
		UserID    string    `json:"uid"`
		Username  string    `json:"name"`
		ExpiresAt time.Time `json:"exp"`
	}
)

func InMemoryIdentityCache() IdentityCache {
	cache, _ := bigcache.NewBigCache(bigcache.DefaultConfig(10 * time.Minute))
	return &memCache{cache: cache, now: time.Now}
}

func (m *memCache) Save(ctx context.Context, token string, id Identity, expiresAt time.Time) error {
	buf, err := json.Marshal(cacheEntry{
		UserID:    id.UserID.String(),
		Username:  id.Username,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return err
	}
	m.cache.Set(token, buf)
	return nil
}

func (m *memCache) Lookup(ctx context.Context, token string) (Identity, bool, error) {
	buf, err := m.cache.Get(token)
	if err != nil {
		// a miss is not an error
		return Identity{}, false, nil
	}
	var entry cacheEntry
	if err := json.Unmarshal(buf, &entry); err != nil {
		return Identity{}, false, err
	}
	if !m.now().Before(entry.ExpiresAt) {
		return Identity{}, false, nil
	}
	id, err := identityFromEntry(entry)
	if err != nil {
		return Identity{}, false, err
	}
	return id, true, nil
}

func identityFromEntry(e cacheEntry) (Identity, error) {
	uid, err := uuid.Parse(e.UserID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: uid, Username: e.Username}, nil
}

package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// collectionLockPrefix namespaces the SETNX key enforcing at most one active
// collection run per campaign (spec.md §4.3).
const collectionLockPrefix = "ccore:lock:collection:"

// AcquireCollectionLock attempts to take the collection lock for a campaign.
// It returns a token that must be passed to ReleaseCollectionLock, and false
// if another collection is already in progress.
func (c *RedisCache) AcquireCollectionLock(ctx context.Context, campaignID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, collectionLockPrefix+campaignID, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// ReleaseCollectionLock releases the lock only if it is still held by token,
// so a stalled worker cannot clear a lock it no longer owns.
func (c *RedisCache) ReleaseCollectionLock(ctx context.Context, campaignID, token string) error {
	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`
	return c.client.Eval(ctx, script, []string{collectionLockPrefix + campaignID}, token).Err()
}

// RefreshCollectionLock extends the TTL of a held lock, used by long-running
// collections to avoid expiring mid-run.
func (c *RedisCache) RefreshCollectionLock(ctx context.Context, campaignID, token string, ttl time.Duration) error {
	const script = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`
	return c.client.Eval(ctx, script, []string{collectionLockPrefix + campaignID}, token, ttl.Milliseconds()).Err()
}

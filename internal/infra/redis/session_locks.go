package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"fsqa-audit-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockRetryInterval = 25 * time.Millisecond

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionLocks serializes writers per session across service instances.
// Locks are SET NX with a TTL so a crashed holder cannot block a session forever.
type SessionLocks struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionLocks(client *redis.Client, ttl time.Duration) *SessionLocks {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &SessionLocks{client: client, ttl: ttl}
}

// Lock retries until the lock is acquired or ctx is done.
func (l *SessionLocks) Lock(ctx context.Context, sessionID int64) (func(), error) {
	key := l.key(sessionID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, domain.Persistence("acquire session lock", err)
		}
		if ok {
			release := func() {
				// release on a fresh context; the request context may already be done
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}
			return release, nil
		}

		timer := time.NewTimer(lockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", domain.ErrSessionLocked, ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *SessionLocks) key(sessionID int64) string {
	return "audit:session:" + strconv.FormatInt(sessionID, 10) + ":lock"
}

package oplock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	id "datawipe/pkg/domain"
	"datawipe/pkg/platform/sentinel"
)

// RedisLocker implements Locker across processes. The writer slot is a token
// key taken with SET NX; readers share a counter key. Both carry a TTL so a
// crashed process cannot wedge a user's lock forever - the TTL must exceed
// the longest expected erasure run.
type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisLocker(client redis.Cmdable, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func writerKey(userID id.UserID) string { return "datawipe:oplock:" + userID.String() + ":writer" }
func readerKey(userID id.UserID) string { return "datawipe:oplock:" + userID.String() + ":readers" }

// acquireWriter takes the writer slot, then verifies no readers snuck in. The
// writer key is set first so new readers observe it and back off; if readers
// were already active we roll back and report the conflict.
var acquireWriterScript = redis.NewScript(`
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) == false then
	return 0
end
local readers = tonumber(redis.call("GET", KEYS[2]) or "0")
if readers > 0 then
	redis.call("DEL", KEYS[1])
	return 0
end
return 1
`)

// releaseWriter deletes the writer key only when it still holds our token.
var releaseWriterScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// acquireReader registers a reader unless a writer is active.
var acquireReaderScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
return 1
`)

// releaseReader decrements the reader count, deleting the key at zero.
var releaseReaderScript = redis.NewScript(`
local readers = tonumber(redis.call("GET", KEYS[2]) or "0")
if readers <= 1 then
	redis.call("DEL", KEYS[2])
	return 0
end
return redis.call("DECR", KEYS[2])
`)

func (l *RedisLocker) AcquireExclusive(ctx context.Context, userID id.UserID) (ReleaseFunc, error) {
	token := uuid.New().String()
	ok, err := acquireWriterScript.Run(ctx, l.client,
		[]string{writerKey(userID), readerKey(userID)},
		token, l.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return nil, fmt.Errorf("acquire exclusive lock: %w", err)
	}
	if ok == 0 {
		return nil, sentinel.ErrConflict
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseWriterScript.Run(releaseCtx, l.client,
			[]string{writerKey(userID)}, token,
		).Err()
	}, nil
}

func (l *RedisLocker) AcquireShared(ctx context.Context, userID id.UserID) (ReleaseFunc, error) {
	ok, err := acquireReaderScript.Run(ctx, l.client,
		[]string{writerKey(userID), readerKey(userID)},
		l.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return nil, fmt.Errorf("acquire shared lock: %w", err)
	}
	if ok == 0 {
		return nil, sentinel.ErrConflict
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseReaderScript.Run(releaseCtx, l.client,
			[]string{writerKey(userID), readerKey(userID)},
		).Err()
	}, nil
}

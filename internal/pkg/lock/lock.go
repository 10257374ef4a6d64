package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

var (
	// ErrNotObtained is returned when the lock is still held by someone else
	// after the wait budget is spent.
	ErrNotObtained = errors.New("lock: not obtained")
	// ErrNotHeld is returned on release when the lock expired or was taken over.
	ErrNotHeld = errors.New("lock: not held")
)

const (
	defaultTTL       = 10 * time.Second
	defaultWait      = 3 * time.Second
	defaultRetryStep = 50 * time.Millisecond
)

// releaseScript deletes the key only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker obtains mutually exclusive leases on keys.
type Locker interface {
	// Obtain blocks until key is leased for ttl, the wait budget runs out or
	// ctx is done. The returned release func must be called once.
	Obtain(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// Option configures a Redis locker.
type Option func(*Redis)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(r *Redis) { r.prefix = prefix }
}

// WithWait sets how long Obtain keeps retrying a held key.
func WithWait(wait time.Duration) Option {
	return func(r *Redis) {
		if wait >= 0 {
			r.wait = wait
		}
	}
}

// Redis is a single-instance Redis lease lock (SET NX PX + token-checked DEL).
type Redis struct {
	client redis.UniversalClient
	prefix string
	wait   time.Duration
}

// NewRedis builds a Redis-backed Locker.
func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	r := &Redis{
		client: client,
		prefix: "lock:",
		wait:   defaultWait,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Obtain implements Locker.
func (r *Redis) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if ttl <= 0 {
		ttl = defaultTTL
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	fk := r.prefix + key
	b := retry.WithMaxDuration(r.wait, retry.NewConstant(defaultRetryStep))

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		ok, err := r.client.SetNX(ctx, fk, token, ttl).Result()
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(ErrNotObtained)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, r.client, []string{fk}, token).Int64()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotHeld
		}
		return nil
	}, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

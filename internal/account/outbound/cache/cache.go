package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/u22n/platform/internal/pkg/hash"
	"github.com/u22n/platform/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefixUsedCode = "account:2fa:used:"

var errEmptyTTL = errors.New("cache: ttl must be positive")

// Cache remembers accepted two-factor codes so they cannot be replayed.
//
// Codes never reach Redis in clear text. The key is an HMAC of the account,
// the stored secret and the code, so marks left for one secret do not apply
// after the account provisions a new one.
type Cache struct {
	client redis.UniversalClient
	hmac   hash.Hash
	ins    instrument.Instrumentation
}

func NewCache(client redis.UniversalClient, hmac hash.Hash, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, hmac: hmac, ins: ins}
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("account.outbound.cache").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// CodeUsed reports whether code was already accepted for secret.
func (c *Cache) CodeUsed(ctx context.Context, accountID int64, secret, code string) (_ bool, err error) {
	ctx, span := c.startSpan(ctx, "CodeUsed")
	defer func() { endSpan(span, err) }()

	key, err := c.key(accountID, secret, code)
	if err != nil {
		return false, err
	}

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkCodeUsed records code for ttl. It returns false when the code was
// already recorded.
func (c *Cache) MarkCodeUsed(ctx context.Context, accountID int64, secret, code string, ttl time.Duration) (_ bool, err error) {
	ctx, span := c.startSpan(ctx, "MarkCodeUsed")
	defer func() { endSpan(span, err) }()

	if ttl <= 0 {
		return false, errEmptyTTL
	}

	key, err := c.key(accountID, secret, code)
	if err != nil {
		return false, err
	}

	return c.client.SetNX(ctx, key, 1, ttl).Result()
}

// Ping checks redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) key(accountID int64, secret, code string) (string, error) {
	sum, err := c.hmac.Hash(strconv.FormatInt(accountID, 10) + ":" + secret + ":" + code)
	if err != nil {
		return "", err
	}
	return keyPrefixUsedCode + string(sum), nil
}

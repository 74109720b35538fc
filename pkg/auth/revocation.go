package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type revocationStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

type revocationKeyer interface {
	RevokedTokenKey(jti string) string
}

// RevocationChecker exposes the read-only surface needed by middleware.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Revocations keeps a deny-list of token ids until the tokens would have expired anyway.
type Revocations struct {
	store revocationStore
	keyer revocationKeyer
}

// RedisStore is the subset of the redis client Revocations relies on.
type RedisStore interface {
	revocationStore
	revocationKeyer
}

// NewRevocations constructs a deny-list backed by Redis.
func NewRevocations(store RedisStore) (*Revocations, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store is required")
	}
	return &Revocations{store: store, keyer: store}, nil
}

// Revoke denies jti until expiresAt.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt, now time.Time) error {
	if strings.TrimSpace(jti) == "" {
		return fmt.Errorf("token id is required")
	}
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	return r.store.Set(ctx, r.keyer.RevokedTokenKey(jti), "1", ttl)
}

// IsRevoked reports whether jti is on the deny-list.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, fmt.Errorf("token id is required")
	}
	if _, err := r.store.Get(ctx, r.keyer.RevokedTokenKey(jti)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

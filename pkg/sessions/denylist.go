package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "storefront:revoked:"

// Denylist records token ids revoked before their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisDenylist struct {
	Client *redis.Client
}

func NewRedisDenylist(ctx context.Context, addr, password string, db int) (*RedisDenylist, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisDenylist{Client: rdb}, nil
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, exp time.Time) error {
	if jti == "" {
		return errors.New("empty token id")
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return d.Client.Set(ctx, keyPrefix+jti, "1", ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := d.Client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *RedisDenylist) Close() error {
	return d.Client.Close()
}

package cache

import (
	"context"
	"errors"
	"time"

	"learningcenter/services/auth-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// TokenCache stores live refresh token ids. A refresh token whose id is missing has
// been rotated or revoked.
type TokenCache struct {
	client *redis.Client
}

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

func refreshKey(tokenID string) string {
	return "refresh_token:" + tokenID
}

func (c *TokenCache) SaveRefresh(ctx context.Context, tokenID, userID string, ttl time.Duration) error {
	return c.client.Set(ctx, refreshKey(tokenID), userID, ttl).Err()
}

// CheckRefresh returns the owner of the token id, or domain.ErrTokenRevoked.
func (c *TokenCache) CheckRefresh(ctx context.Context, tokenID string) (string, error) {
	val, err := c.client.Get(ctx, refreshKey(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrTokenRevoked
		}
		return "", err
	}
	return val, nil
}

// ConsumeRefresh deletes the token id and reports whether it was still live, so two
// concurrent refreshes cannot both rotate the same token.
func (c *TokenCache) ConsumeRefresh(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Del(ctx, refreshKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *TokenCache) DeleteRefresh(ctx context.Context, tokenID string) error {
	return c.client.Del(ctx, refreshKey(tokenID)).Err()
}

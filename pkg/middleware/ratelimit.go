package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"learningcenter/pkg/logger"
	"learningcenter/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client IP in fixed Redis windows. It lets traffic
// through when Redis is unavailable.
type RateLimiter struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewRateLimiter(rdb *redis.Client, log *logger.Logger) *RateLimiter {
	return &RateLimiter{rdb: rdb, log: log.With("middleware", "ratelimit")}
}

func (rl *RateLimiter) Limit(scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rdb == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate_limit:%s:%s", scope, c.ClientIP())

		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pttl := pipe.PTTL(ctx, key)
		if _, err := pipe.Exec(ctx); err != nil {
			rl.log.Warn("rate limiter unavailable", "scope", scope, "error", err)
			c.Next()
			return
		}
		count, ttl := incr.Val(), pttl.Val()
		// A key without expiry is a new window or one whose Expire was lost.
		if ttl < 0 {
			if err := rl.rdb.Expire(ctx, key, window).Err(); err != nil {
				rl.log.Warn("rate limit window not set", "scope", scope, "key", key, "error", err)
			}
			ttl = window
		}
		if count > int64(limit) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", ttl.Seconds()))
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited", errors.New("too many requests"))
			return
		}
		c.Next()
	}
}

package ratelimit

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter counts hits per key in fixed windows stored in Redis.
type Limiter struct {
	rdb    redis.UniversalClient
	prefix string
	limit  int64
	window time.Duration
}

func New(rdb redis.UniversalClient, prefix string, limit int64, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

// Allow records a hit for key and reports whether it is within the limit,
// along with the count in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	k := "rl:" + l.prefix + ":" + key
	n, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return false, n, err
		}
	}
	return n <= l.limit, n, nil
}

// Middleware limits requests by the key keyFn derives from the request.
// Requests without a key pass through. A Redis failure lets the request
// through and is logged.
func (l *Limiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}
		ok, n, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			log.Printf("rate limiter error: %v", err)
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", fmt.Sprintf("%d", int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("rate limit exceeded (count=%d, limit=%d)", n, l.limit),
			})
			return
		}
		c.Next()
	}
}

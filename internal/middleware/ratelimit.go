package middleware

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per viewer (or per IP before authentication) in fixed
// Redis windows.
type RateLimiter struct {
	rdb     *redis.Client
	maxReqs int
	window  time.Duration
}

// NewRateLimiter creates a rate limiter. A nil client or a non-positive limit disables it.
func NewRateLimiter(rdb *redis.Client, maxReqs, windowSec int) *RateLimiter {
	return &RateLimiter{
		rdb:     rdb,
		maxReqs: maxReqs,
		window:  time.Duration(max(windowSec, 1)) * time.Second,
	}
}

func (rl *RateLimiter) key(c fiber.Ctx) string {
	if viewer := ViewerID(c); viewer != "" {
		return "ratelimit:viewer:" + viewer
	}
	return "ratelimit:ip:" + c.IP()
}

// Handler returns a Fiber middleware handler for rate limiting. Mount it after
// AuthMiddleware so authenticated requests are counted per viewer.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if rl.rdb == nil || rl.maxReqs <= 0 {
			return c.Next()
		}

		key := rl.key(c)
		ctx := c.Context()

		// the window's expiry is set in the same transaction that creates the key,
		// so a counter can never outlive its window
		var (
			incr *redis.IntCmd
			ttl  *redis.DurationCmd
		)
		_, err := rl.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.SetNX(ctx, key, 0, rl.window)
			incr = p.Incr(ctx, key)
			ttl = p.TTL(ctx, key)
			return nil
		})
		if err != nil {
			// fail open
			slog.Warn("rate limiter unavailable", "key", key, "error", err)
			return c.Next()
		}

		count := incr.Val()
		reset := int(ttl.Val().Seconds())

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.maxReqs))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", max(0, int64(rl.maxReqs)-count)))
		c.Set("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > int64(rl.maxReqs) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": reset,
			})
		}

		return c.Next()
	}
}

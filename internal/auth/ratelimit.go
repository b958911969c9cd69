package auth

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-track/internal/persistence"
	apperrors "github.com/spec-kit/civic-track/pkg/util"
)

// RateLimiter throttles credential endpoints with a fixed per-IP window
// backed by Redis. When Redis is unreachable the limiter fails open.
type RateLimiter struct {
	redis  *persistence.Redis
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewRateLimiter builds a limiter allowing limit requests per window.
func NewRateLimiter(redis *persistence.Redis, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{redis: redis, limit: limit, window: window, logger: logger}
}

// Handle rejects callers exceeding the window budget with 429.
func (rl *RateLimiter) Handle(c *fiber.Ctx) error {
	if rl == nil || rl.redis == nil || rl.redis.Client == nil || rl.limit <= 0 {
		return c.Next()
	}

	ctx := c.Context()
	key := fmt.Sprintf("ratelimit:%s:%s", c.Path(), c.IP())

	count, err := rl.redis.Client.Incr(ctx, key).Result()
	if err != nil {
		rl.logger.Warn("rate limiter unavailable", zap.Error(err))
		return c.Next()
	}
	if count == 1 {
		if err := rl.redis.Client.Expire(ctx, key, rl.window).Err(); err != nil {
			rl.logger.Warn("rate limiter expire failed", zap.Error(err))
		}
	}
	if count > int64(rl.limit) {
		return apperrors.NewDomainError("RATE_LIMITED", "too many requests", fiber.StatusTooManyRequests, nil)
	}
	return c.Next()
}

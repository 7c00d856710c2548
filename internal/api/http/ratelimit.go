package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/config"
	"github.com/spec-kit/rewear-service/internal/persistence"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

const rateLimitPrefix = "rewear:ratelimit"

// NewRateLimiter builds the per-IP limiter for mutating routes. Counters live
// in Redis when it is configured so every replica shares them.
func NewRateLimiter(cfg config.RateLimitConfig, redis *persistence.Redis, logger *zap.Logger) (*limiter.Limiter, error) {
	rate := limiter.Rate{Period: cfg.Period, Limit: cfg.Limit}

	if redis.Enabled() {
		store, err := sredis.NewStoreWithOptions(redis.Client, limiter.StoreOptions{
			Prefix:   rateLimitPrefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("rate limiter backed by redis", zap.Int64("limit", cfg.Limit), zap.Duration("period", cfg.Period))
		return limiter.New(store, rate), nil
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
	return limiter.New(store, rate), nil
}

// RateLimit rejects callers over their budget with 429 RATE_LIMITED. A nil
// limiter or a non-positive limit disables it.
func RateLimit(instance *limiter.Limiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if instance == nil || instance.Rate.Limit <= 0 {
			return c.Next()
		}
		lctx, err := instance.Get(c.UserContext(), c.IP())
		if err != nil {
			// Fail open when the counter store is unreachable.
			logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			return apperrors.NewDomainError(apperrors.CodeRateLimited, "too many requests, try again later", fiber.StatusTooManyRequests, map[string]any{
				"limit":   lctx.Limit,
				"resetAt": lctx.Reset,
			})
		}
		return c.Next()
	}
}

package telegram

import (
	"time"

	"github.com/m3rciful/anketabot/core/config"
	"github.com/m3rciful/anketabot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the standard middleware chain: panic recovery
// first, then optional per-user rate limiting, then receipt logging and
// outbound message metrics.
func DefaultMiddlewares(cfg *config.Config) []tele.MiddlewareFunc {
	mws := []tele.MiddlewareFunc{middleware.RecoverMiddleware}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		mws = append(mws, middleware.RateLimitMiddleware(middleware.RateLimitOptions{
			Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
			Exclude:  exclude,
		}))
	}

	mws = append(mws, middleware.LoggerMiddleware, middleware.MessageMetricsMiddleware)
	return mws
}

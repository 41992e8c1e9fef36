package fx

import (
	"context"

	"FundChain/config"
	"FundChain/internal/middleware"

	"go.uber.org/fx"
)

var MiddlewareModule = fx.Module("middleware",
	fx.Provide(
		newJwtService,
		newRateLimiter,
	),
)

func newJwtService(cfg *config.Config) (*middleware.JwtService, error) {
	return middleware.NewJwtService(cfg.JWT)
}

func newRateLimiter(lc fx.Lifecycle, cfg *config.Config) *middleware.RateLimiter {
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			limiter.Stop()
			return nil
		},
	})
	return limiter
}

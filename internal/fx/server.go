package fx

import (
	"context"
	"errors"
	"net"
	"net/http"

	"FundChain/config"
	"FundChain/internal/logger"
	"FundChain/internal/middleware"
	"FundChain/internal/routes"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// ServerModule fornece a configuração do servidor HTTP
var ServerModule = fx.Module("server",
	fx.Provide(
		newRouter,
	),
	fx.Invoke(
		startServer,
	),
)

func newRouter(
	cfg *config.Config,
	handler *routes.Handler,
	jwtSvc *middleware.JwtService,
	limiter *middleware.RateLimiter,
) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	routes.Register(router, handler, jwtSvc, limiter)
	return router
}

func startServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine) {
	serverAddr := ":" + cfg.Server.Port
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", serverAddr)
			if err != nil {
				return err
			}
			logger.Info().
				Str("address", serverAddr).
				Str("environment", cfg.App.Environment).
				Str("storage", cfg.Storage.Driver).
				Msg("Servidor iniciando")

			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("Falha ao iniciar servidor")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Servidor parando...")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

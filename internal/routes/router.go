package routes

import (
	"FundChain/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Register monta as rotas públicas e autenticadas sob /api. Leituras são
// abertas; toda operação que move valores exige token.
func Register(router *gin.Engine, handler *Handler, jwtSvc *middleware.JwtService, limiter *middleware.RateLimiter) {
	router.GET("/health", handler.Health)

	public := router.Group("/api")
	public.Use(middleware.RateLimit(limiter))
	{
		campaigns := public.Group("/campaigns")
		{
			campaigns.GET("", handler.ListCampaigns)
			campaigns.GET("/count", handler.CountCampaigns)
			campaigns.GET("/:id", handler.GetCampaign)
			campaigns.GET("/:id/status", handler.GetCampaignStatus)
			campaigns.GET("/:id/contributions", handler.ListContributions)
			campaigns.GET("/:id/payouts", handler.ListPayouts)
		}
	}

	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(jwtSvc))
	private.Use(middleware.RateLimit(limiter))
	{
		campaigns := private.Group("/campaigns")
		{
			campaigns.POST("", handler.CreateCampaign)
			campaigns.POST("/:id/pledges", handler.Pledge)
			campaigns.GET("/:id/contributions/me", handler.GetMyContribution)
			campaigns.POST("/:id/claim", handler.Claim)
			campaigns.POST("/:id/refund", handler.Refund)
		}

		private.GET("/accounts/me/balance", handler.GetBalance)
	}
}

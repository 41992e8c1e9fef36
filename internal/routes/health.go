package routes

import (
	"net/http"

	"FundChain/internal/contracts"

	"github.com/gin-gonic/gin"
)

// Health consulta o contador de campanhas para confirmar que o
// armazenamento responde.
func (h *Handler) Health(c *gin.Context) {
	if _, err := h.CampaignService.CountCampaigns(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, contracts.HealthResponse{Status: "unavailable", Storage: h.StorageDriver})
		return
	}
	c.JSON(http.StatusOK, contracts.HealthResponse{Status: "ok", Storage: h.StorageDriver})
}

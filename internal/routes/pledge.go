package routes

import (
	"net/http"

	"FundChain/internal/contracts"
	appErrors "FundChain/internal/errors"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Pledge(c *gin.Context) {
	campaignID, err := h.parseCampaignID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body contracts.PledgeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, appErrors.ParseValidationErrors(err))
		return
	}

	contributor, err := h.GetCallerFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	contribution, err := h.PledgeService.Pledge(c.Request.Context(), campaignID, contributor, *body.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.ContributionResponse{Contribution: contribution})
}

func (h *Handler) ListContributions(c *gin.Context) {
	campaignID, err := h.parseCampaignID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	contributions, err := h.PledgeService.GetContributions(c.Request.Context(), campaignID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.ContributionListResponse{
		Contributions: contributions,
		Total:         len(contributions),
	})
}

func (h *Handler) GetMyContribution(c *gin.Context) {
	campaignID, err := h.parseCampaignID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	contributor, err := h.GetCallerFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	contribution, err := h.PledgeService.GetContribution(c.Request.Context(), campaignID, contributor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.ContributionResponse{Contribution: contribution})
}

package routes

import (
	"net/http"

	"FundChain/internal/contracts"
	"FundChain/internal/domain/campaign"
	appErrors "FundChain/internal/errors"
	"FundChain/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCampaign(c *gin.Context) {
	var body contracts.CampaignCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, appErrors.ParseValidationErrors(err))
		return
	}

	creator, err := h.GetCallerFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	req := campaign.CreateRequest{
		Creator:      creator,
		Goal:         *body.Goal,
		DurationDays: *body.DurationDays,
	}

	entity, err := h.CampaignService.CreateCampaign(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contracts.CampaignResponse{Campaign: entity})
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	pagination := h.parsePagination(c)

	campaigns, total, err := h.CampaignService.ListCampaigns(c.Request.Context(), pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(campaigns, pagination.Page, pagination.Limit, total))
}

func (h *Handler) CountCampaigns(c *gin.Context) {
	count, err := h.CampaignService.CountCampaigns(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.CampaignCountResponse{Count: count})
}

func (h *Handler) GetCampaign(c *gin.Context) {
	campaignID, err := h.parseCampaignID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	entity, err := h.CampaignService.GetCampaignByID(c.Request.Context(), campaignID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.CampaignResponse{Campaign: entity})
}

func (h *Handler) GetCampaignStatus(c *gin.Context) {
	campaignID, err := h.parseCampaignID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status, err := h.CampaignService.GetCampaignStatus(c.Request.Context(), campaignID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.CampaignStatusResponse{Status: status})
}

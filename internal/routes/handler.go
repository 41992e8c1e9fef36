package routes

import (
	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/pledge"
	"FundChain/internal/domain/settlement"
	appErrors "FundChain/internal/errors"
	"FundChain/internal/logger"
	"FundChain/internal/middleware"
	"FundChain/internal/pkg"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	CampaignService   *campaign.Service
	PledgeService     *pledge.Service
	SettlementService *settlement.Service
	StorageDriver     string
}

func (h *Handler) GetCallerFromContext(c *gin.Context) (string, error) {
	account, ok := middleware.AccountFromContext(c)
	if !ok {
		return "", appErrors.ErrUnauthorized
	}
	return account, nil
}

func (h *Handler) parseCampaignID(c *gin.Context) (uint64, error) {
	id := c.Param("id")
	if id == "" {
		return 0, appErrors.NewValidationError("id", "é obrigatório")
	}
	campaignID, err := pkg.ParseID(id)
	if err != nil {
		return 0, appErrors.NewValidationError("id", "formato inválido")
	}
	return campaignID, nil
}

func (h *Handler) parsePagination(c *gin.Context) *pkg.PaginationParams {
	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	var pageNum, limitNum int
	if p, err := pkg.ParseInt(page); err == nil && p > 0 {
		pageNum = p
	} else {
		pageNum = 1
	}

	if l, err := pkg.ParseInt(limit); err == nil && l > 0 {
		limitNum = l
	} else {
		limitNum = pkg.DefaultPageLimit
	}

	return pkg.NormalizePagination(&pkg.PaginationParams{
		Page:  pageNum,
		Limit: limitNum,
	})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)

	event := logger.Warn()
	if appErr.StatusCode >= 500 {
		event = logger.Error()
	}
	event = event.
		Str("code", appErr.Code).
		Str("path", c.FullPath()).
		Str("request_id", c.GetString(middleware.RequestIDKey))
	if appErr.Err != nil {
		event = event.Err(appErr.Err)
	}
	event.Msg("request_error")

	payload := gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		payload["details"] = appErr.Details
	}
	c.JSON(appErr.StatusCode, payload)
}

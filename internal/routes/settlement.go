package routes

import (
	"net/http"

	"FundChain/internal/contracts"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Claim(c *gin.Context) {
	campaignID, err := h.parseCampaignID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	caller, err := h.GetCallerFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	payout, err := h.SettlementService.Claim(c.Request.Context(), campaignID, caller)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.PayoutResponse{Payout: payout})
}

func (h *Handler) Refund(c *gin.Context) {
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

	payout, err := h.SettlementService.Refund(c.Request.Context(), campaignID, contributor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.PayoutResponse{Payout: payout})
}

func (h *Handler) ListPayouts(c *gin.Context) {
	campaignID, err := h.parseCampaignID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	payouts, err := h.SettlementService.GetPayouts(c.Request.Context(), campaignID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.PayoutListResponse{Payouts: payouts, Total: len(payouts)})
}

func (h *Handler) GetBalance(c *gin.Context) {
	account, err := h.GetCallerFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	balance, err := h.SettlementService.GetBalance(c.Request.Context(), account)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.BalanceResponse{Balance: balance})
}

package contracts

import (
	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/settlement"
)

// Ponteiros permitem distinguir campo ausente (binding) de valor inválido,
// que é decidido pelo domínio.
type CampaignCreateRequest struct {
	Goal         *int64 `json:"goal" binding:"required"`
	DurationDays *int64 `json:"duration_days" binding:"required"`
}

type PledgeRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
}

type CampaignResponse struct {
	Campaign *campaign.Campaign `json:"campaign"`
}

type CampaignCountResponse struct {
	Count uint64 `json:"count"`
}

type CampaignStatusResponse struct {
	Status *campaign.Status `json:"status"`
}

type ContributionResponse struct {
	Contribution *campaign.Contribution `json:"contribution"`
}

type ContributionListResponse struct {
	Contributions []*campaign.Contribution `json:"contributions"`
	Total         int                      `json:"total"`
}

type PayoutResponse struct {
	Payout *campaign.Payout `json:"payout"`
}

type PayoutListResponse struct {
	Payouts []*campaign.Payout `json:"payouts"`
	Total   int                `json:"total"`
}

type BalanceResponse struct {
	Balance *settlement.Balance `json:"balance"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

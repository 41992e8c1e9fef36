package campaign

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type PayoutKind string

const (
	PayoutClaim  PayoutKind = "CLAIM"
	PayoutRefund PayoutKind = "REFUND"
)

// Payout é um lançamento de custódia: valor liberado do escrow da campanha
// para a conta do beneficiário. Lançamentos nunca são alterados.
type Payout struct {
	Id          ulid.ULID  `json:"id"`
	CampaignId  uint64     `json:"campaignId"`
	Beneficiary string     `json:"beneficiary"`
	Kind        PayoutKind `json:"kind"`
	Amount      uint64     `json:"amount"`
	CreatedAt   time.Time  `json:"createdAt"`
}

package campaign

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Contribution struct {
	Id          ulid.ULID `json:"id"`
	CampaignId  uint64    `json:"campaignId"`
	Contributor string    `json:"contributor"`
	Amount      uint64    `json:"amount"`
	Refunded    bool      `json:"refunded"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Contribution) Clone() *Contribution {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

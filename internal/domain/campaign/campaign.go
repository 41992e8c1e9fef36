package campaign

import (
	"math"
	"time"

	"FundChain/internal/domain/lifecycle"
)

// MaxAmount mantém todo valor dentro de um BIGINT do Postgres.
const MaxAmount uint64 = math.MaxInt64

type Campaign struct {
	Id        uint64    `json:"id"`
	Creator   string    `json:"creator"`
	Goal      uint64    `json:"goal"`
	Deadline  int64     `json:"deadline"`
	Pledged   uint64    `json:"pledged"`
	Claimed   bool      `json:"claimed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Campaign) Terms() lifecycle.Terms {
	return lifecycle.Terms{
		Goal:     c.Goal,
		Pledged:  c.Pledged,
		Deadline: c.Deadline,
	}
}

func (c *Campaign) Outcome(now time.Time) lifecycle.Outcome {
	return lifecycle.Evaluate(c.Terms(), now.Unix())
}

func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

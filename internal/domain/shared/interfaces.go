package shared

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

type EventType string

const (
	EventCampaignCreated  EventType = "campaign.created"
	EventCampaignPledged  EventType = "campaign.pledged"
	EventCampaignClaimed  EventType = "campaign.claimed"
	EventCampaignRefunded EventType = "campaign.refunded"
)

// Event descreve uma mudança já confirmada no ledger.
type Event struct {
	Type       EventType `json:"type"`
	CampaignId uint64    `json:"campaignId"`
	Account    string    `json:"account"`
	Amount     uint64    `json:"amount"`
	Total      uint64    `json:"total"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventPublisher é chamado somente após o commit; falhas de publicação não
// desfazem a operação.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, Event) error {
	return nil
}

package shared

import (
	"context"

	"FundChain/internal/logger"
	"FundChain/internal/metrics"
)

// Notify publica o evento e apenas registra falhas: a operação que gerou o
// evento já foi confirmada.
func Notify(ctx context.Context, publisher EventPublisher, event Event) {
	if publisher == nil {
		return
	}
	err := publisher.Publish(ctx, event)
	metrics.EventPublished(err)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("event", string(event.Type)).
			Uint64("campaign_id", event.CampaignId).
			Msg("Falha ao publicar evento")
	}
}

package fx

import (
	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/pledge"
	"FundChain/internal/domain/settlement"
	"FundChain/internal/domain/shared"

	"go.uber.org/fx"
)

// DomainModule fornece os services do ledger; todos compartilham o mesmo
// repositório, relógio e publicador de eventos.
var DomainModule = fx.Module("domain",
	fx.Provide(
		newClock,
		newCampaignService,
		newPledgeService,
		newSettlementService,
	),
)

func newClock() shared.Clock {
	return shared.SystemClock{}
}

func newCampaignService(repo campaign.Repository, clock shared.Clock, events shared.EventPublisher) *campaign.Service {
	return campaign.NewService(repo, clock, events)
}

func newPledgeService(repo campaign.Repository, clock shared.Clock, events shared.EventPublisher) *pledge.Service {
	return pledge.NewService(repo, clock, events)
}

func newSettlementService(repo campaign.Repository, clock shared.Clock, events shared.EventPublisher) *settlement.Service {
	return settlement.NewService(repo, clock, events)
}

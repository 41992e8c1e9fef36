package fx

import (
	"FundChain/config"
	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/pledge"
	"FundChain/internal/domain/settlement"
	"FundChain/internal/routes"

	"go.uber.org/fx"
)

var RoutesModule = fx.Module("routes",
	fx.Provide(
		newHandler,
	),
)

func newHandler(
	cfg *config.Config,
	campaignSvc *campaign.Service,
	pledgeSvc *pledge.Service,
	settlementSvc *settlement.Service,
) *routes.Handler {
	return &routes.Handler{
		CampaignService:   campaignSvc,
		PledgeService:     pledgeSvc,
		SettlementService: settlementSvc,
		StorageDriver:     cfg.Storage.Driver,
	}
}

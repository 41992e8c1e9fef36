package fx

import (
	"context"
	"io"

	"FundChain/config"
	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/shared"
	"FundChain/internal/infrastructure"
	"FundChain/internal/logger"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var InfrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newDatabase,
		newCampaignRepository,
		newEventPublisher,
	),
)

// newDatabase só abre conexão quando o driver é postgres.
func newDatabase(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return nil, nil
	}

	db, err := infrastructure.NewDb(cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			logger.Info().Msg("Fechando conexões com o banco de dados")
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newCampaignRepository(cfg *config.Config, db *gorm.DB) campaign.Repository {
	return infrastructure.NewCampaignStore(cfg, db)
}

func newEventPublisher(lc fx.Lifecycle, cfg *config.Config) shared.EventPublisher {
	publisher := infrastructure.NewEventPublisher(cfg)
	if closer, ok := publisher.(io.Closer); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				logger.Info().Msg("Fechando publicador de eventos")
				return closer.Close()
			},
		})
	}
	return publisher
}

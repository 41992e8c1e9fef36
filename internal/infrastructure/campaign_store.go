package infrastructure

import (
	"FundChain/config"
	"FundChain/internal/domain/campaign"
	"FundChain/internal/logger"

	"gorm.io/gorm"
)

// NewCampaignStore devolve o repositório configurado em STORAGE_DRIVER.
// db só é usado pelo driver postgres e pode ser nil no driver memory.
func NewCampaignStore(cfg *config.Config, db *gorm.DB) campaign.Repository {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		logger.Warn().Msg("Usando armazenamento em memória; os dados não sobrevivem a reinícios")
		return NewMemoryCampaignRepository()
	}
	return &CampaignRepository{DB: db}
}

package infrastructure

import (
	"FundChain/config"
	"FundChain/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

func NewDb(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if !cfg.IsDevelopment() {
		gormCfg.Logger = gormLogger.Default.LogMode(gormLogger.Silent)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
	if err != nil {
		logger.Error().
			Err(err).
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.DBName).
			Msg("Falha ao conectar ao banco de dados")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error().Err(err).Msg("Falha ao obter instância do banco de dados")
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.DBName).
		Msg("Conexão com banco de dados estabelecida com sucesso")

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func runMigrations(db *gorm.DB) error {
	logger.Info().Msg("Executando migrations...")

	entities := []interface{}{
		&campaignDB{},
		&contributionDB{},
		&payoutDB{},
		&sequenceDB{},
	}

	for _, entity := range entities {
		if err := db.AutoMigrate(entity); err != nil {
			logger.Error().
				Err(err).
				Str("entity", getEntityName(entity)).
				Msg("Erro ao migrar entidade")
			return err
		}
	}

	if err := seedCampaignSequence(db); err != nil {
		logger.Error().Err(err).Msg("Erro ao inicializar a sequência de campanhas")
		return err
	}

	logger.Info().Msg("Migrations executadas com sucesso!")
	return nil
}

// seedCampaignSequence cria a linha da sequência uma única vez. Em bancos que
// já têm campanhas, parte do maior id existente.
func seedCampaignSequence(db *gorm.DB) error {
	var next int64
	if err := db.Model(&campaignDB{}).Select("COALESCE(MAX(id) + 1, 0)").Scan(&next).Error; err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sequenceDB{Name: campaignSequence, NextId: next}).Error
}

func getEntityName(entity interface{}) string {
	switch entity.(type) {
	case *campaignDB:
		return "Campaign"
	case *contributionDB:
		return "CampaignContribution"
	case *payoutDB:
		return "CampaignPayout"
	case *sequenceDB:
		return "CampaignSequence"
	default:
		return "Unknown"
	}
}

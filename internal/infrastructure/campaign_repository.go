package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/shared"
	appErrors "FundChain/internal/errors"
	"FundChain/internal/pkg"
	"FundChain/internal/pkg/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	campaignsTable     = "campaigns"
	contributionsTable = "campaign_contributions"
	payoutsTable       = "campaign_payouts"
	sequencesTable     = "campaign_sequences"

	campaignSequence = "campaigns"
)

// CampaignRepository é o ledger persistido no Postgres. Os ids de campanha
// vêm de uma linha de sequência travada com FOR UPDATE, o que mantém os ids
// densos mesmo com transações abortadas.
type CampaignRepository struct {
	DB *gorm.DB
}

type campaignDB struct {
	Id        int64  `gorm:"primaryKey;autoIncrement:false"`
	Creator   string `gorm:"type:varchar(128);index;not null"`
	Goal      int64  `gorm:"not null"`
	Deadline  int64  `gorm:"not null"`
	Pledged   int64  `gorm:"not null;default:0"`
	Claimed   bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (campaignDB) TableName() string { return campaignsTable }

type contributionDB struct {
	Id          string `gorm:"type:varchar(26);primaryKey"`
	CampaignId  int64  `gorm:"not null;uniqueIndex:idx_contribution_campaign_contributor"`
	Contributor string `gorm:"type:varchar(128);not null;uniqueIndex:idx_contribution_campaign_contributor"`
	Amount      int64  `gorm:"not null"`
	Refunded    bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (contributionDB) TableName() string { return contributionsTable }

type payoutDB struct {
	Id          string `gorm:"type:varchar(26);primaryKey"`
	CampaignId  int64  `gorm:"index;not null"`
	Beneficiary string `gorm:"type:varchar(128);index;not null"`
	Kind        string `gorm:"type:varchar(20);not null"`
	Amount      int64  `gorm:"not null"`
	CreatedAt   time.Time
}

func (payoutDB) TableName() string { return payoutsTable }

type sequenceDB struct {
	Name   string `gorm:"type:varchar(64);primaryKey"`
	NextId int64  `gorm:"not null"`
}

func (sequenceDB) TableName() string { return sequencesTable }

func toDomainCampaign(cdb *campaignDB) (*campaign.Campaign, error) {
	return &campaign.Campaign{
		Id:        uint64(cdb.Id),
		Creator:   cdb.Creator,
		Goal:      uint64(cdb.Goal),
		Deadline:  cdb.Deadline,
		Pledged:   uint64(cdb.Pledged),
		Claimed:   cdb.Claimed,
		CreatedAt: cdb.CreatedAt,
		UpdatedAt: cdb.UpdatedAt,
	}, nil
}

func toDBCampaign(c *campaign.Campaign) *campaignDB {
	return &campaignDB{
		Id:        int64(c.Id),
		Creator:   c.Creator,
		Goal:      int64(c.Goal),
		Deadline:  c.Deadline,
		Pledged:   int64(c.Pledged),
		Claimed:   c.Claimed,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toDomainContribution(cdb *contributionDB) (*campaign.Contribution, error) {
	id, err := pkg.ParseULID(cdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &campaign.Contribution{
		Id:          id,
		CampaignId:  uint64(cdb.CampaignId),
		Contributor: cdb.Contributor,
		Amount:      uint64(cdb.Amount),
		Refunded:    cdb.Refunded,
		CreatedAt:   cdb.CreatedAt,
		UpdatedAt:   cdb.UpdatedAt,
	}, nil
}

func toDBContribution(c *campaign.Contribution) *contributionDB {
	return &contributionDB{
		Id:          c.Id.String(),
		CampaignId:  int64(c.CampaignId),
		Contributor: c.Contributor,
		Amount:      int64(c.Amount),
		Refunded:    c.Refunded,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toDomainPayout(pdb *payoutDB) (*campaign.Payout, error) {
	id, err := pkg.ParseULID(pdb.Id)
	if err != nil {
		return nil, appErrors.ErrInternalServer.WithError(err)
	}
	return &campaign.Payout{
		Id:          id,
		CampaignId:  uint64(pdb.CampaignId),
		Beneficiary: pdb.Beneficiary,
		Kind:        campaign.PayoutKind(pdb.Kind),
		Amount:      uint64(pdb.Amount),
		CreatedAt:   pdb.CreatedAt,
	}, nil
}

func toDBPayout(p *campaign.Payout) *payoutDB {
	return &payoutDB{
		Id:          p.Id.String(),
		CampaignId:  int64(p.CampaignId),
		Beneficiary: p.Beneficiary,
		Kind:        string(p.Kind),
		Amount:      int64(p.Amount),
		CreatedAt:   p.CreatedAt,
	}
}

// dbError preserva erros de domínio e de contexto e embrulha o resto.
func dbError(err error) error {
	if err == nil {
		return nil
	}
	if appErrors.IsAppError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if shared.IsUniqueConstraintError(err) {
		return appErrors.ErrConflict.WithError(err)
	}
	return appErrors.NewDatabaseError(err)
}

// readOnly roda fn num snapshot REPEATABLE READ, assim contagem e página
// enxergam o mesmo estado confirmado.
func (r *CampaignRepository) readOnly(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := r.DB.WithContext(ctx).Transaction(fn, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	return dbError(err)
}

func (r *CampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := query.New[sequenceDB](ctx, tx, sequencesTable).
			Where("name = ?", campaignSequence).
			ForUpdate().
			First()
		if err != nil {
			return err
		}

		row := toDBCampaign(c)
		row.Id = seq.NextId
		if err := tx.Create(row).Error; err != nil {
			return err
		}

		if err := tx.Model(&sequenceDB{}).
			Where("name = ?", campaignSequence).
			Update("next_id", seq.NextId+1).Error; err != nil {
			return err
		}

		c.Id = uint64(row.Id)
		return nil
	})
	return dbError(err)
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uint64) (*campaign.Campaign, error) {
	if id > campaign.MaxAmount {
		return nil, appErrors.ErrCampaignNotFound
	}
	row, err := query.New[campaignDB](ctx, r.DB, campaignsTable).Where("id = ?", int64(id)).First()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrCampaignNotFound.WithError(err)
		}
		return nil, appErrors.NewDatabaseError(err)
	}
	return toDomainCampaign(row)
}

func (r *CampaignRepository) List(ctx context.Context, pagination *pkg.PaginationParams) ([]*campaign.Campaign, int64, error) {
	var (
		items []*campaign.Campaign
		total int64
	)
	err := r.readOnly(ctx, func(tx *gorm.DB) error {
		var err error
		items, total, err = query.Paginate(
			query.New[campaignDB](ctx, tx, campaignsTable).Order("id DESC"),
			pagination,
			toDomainCampaign,
		)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *CampaignRepository) ListAll(ctx context.Context) ([]*campaign.Campaign, error) {
	items, err := query.All(query.New[campaignDB](ctx, r.DB, campaignsTable).Order("id DESC"), toDomainCampaign)
	if err != nil {
		return nil, dbError(err)
	}
	return items, nil
}

func (r *CampaignRepository) Count(ctx context.Context) (uint64, error) {
	seq, err := query.New[sequenceDB](ctx, r.DB, sequencesTable).Where("name = ?", campaignSequence).First()
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}
	return uint64(seq.NextId), nil
}

func (r *CampaignRepository) GetContribution(ctx context.Context, campaignID uint64, contributor string) (*campaign.Contribution, error) {
	var out *campaign.Contribution
	err := r.readOnly(ctx, func(tx *gorm.DB) error {
		if err := campaignExists(ctx, tx, campaignID); err != nil {
			return err
		}
		row, err := query.New[contributionDB](ctx, tx, contributionsTable).
			Where("campaign_id = ? AND contributor = ?", int64(campaignID), contributor).
			First()
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appErrors.ErrContributionNotFound
			}
			return err
		}
		out, err = toDomainContribution(row)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CampaignRepository) GetContributionsByCampaignID(ctx context.Context, campaignID uint64) ([]*campaign.Contribution, error) {
	var out []*campaign.Contribution
	err := r.readOnly(ctx, func(tx *gorm.DB) error {
		if err := campaignExists(ctx, tx, campaignID); err != nil {
			return err
		}
		var err error
		out, err = query.All(
			query.New[contributionDB](ctx, tx, contributionsTable).
				Where("campaign_id = ?", int64(campaignID)).
				Order("created_at ASC, id ASC"),
			toDomainContribution,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CampaignRepository) GetPayoutsByCampaignID(ctx context.Context, campaignID uint64) ([]*campaign.Payout, error) {
	var out []*campaign.Payout
	err := r.readOnly(ctx, func(tx *gorm.DB) error {
		if err := campaignExists(ctx, tx, campaignID); err != nil {
			return err
		}
		var err error
		out, err = query.All(
			query.New[payoutDB](ctx, tx, payoutsTable).
				Where("campaign_id = ?", int64(campaignID)).
				Order("created_at ASC, id ASC"),
			toDomainPayout,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CampaignRepository) GetPayoutsByBeneficiary(ctx context.Context, beneficiary string) ([]*campaign.Payout, error) {
	out, err := query.All(
		query.New[payoutDB](ctx, r.DB, payoutsTable).
			Where("beneficiary = ?", beneficiary).
			Order("campaign_id ASC, created_at ASC, id ASC"),
		toDomainPayout,
	)
	if err != nil {
		return nil, dbError(err)
	}
	return out, nil
}

func campaignExists(ctx context.Context, tx *gorm.DB, campaignID uint64) error {
	if campaignID > campaign.MaxAmount {
		return appErrors.ErrCampaignNotFound
	}
	count, err := query.New[campaignDB](ctx, tx, campaignsTable).Where("id = ?", int64(campaignID)).Count()
	if err != nil {
		return err
	}
	if count == 0 {
		return appErrors.ErrCampaignNotFound
	}
	return nil
}

// Update trava a linha da campanha (SELECT ... FOR UPDATE) e aplica tudo o
// que fn gravou na mesma transação. Qualquer erro desfaz a transação inteira.
func (r *CampaignRepository) Update(ctx context.Context, campaignID uint64, fn func(tx campaign.Tx) error) error {
	if campaignID > campaign.MaxAmount {
		return appErrors.ErrCampaignNotFound
	}

	err := r.DB.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		row, err := query.New[campaignDB](ctx, db, campaignsTable).
			Where("id = ?", int64(campaignID)).
			ForUpdate().
			First()
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appErrors.ErrCampaignNotFound
			}
			return err
		}

		current, err := toDomainCampaign(row)
		if err != nil {
			return err
		}

		tx := &gormTx{
			ctx:           ctx,
			db:            db,
			campaign:      *current,
			contributions: map[string]*trackedContribution{},
		}
		if err := fn(tx); err != nil {
			return err
		}
		return tx.flush()
	})
	return dbError(err)
}

type trackedContribution struct {
	contribution *campaign.Contribution
	persisted    bool
	dirty        bool
}

// gormTx acumula as alterações e só escreve em flush. Como a linha da
// campanha está travada, as contribuições dela não mudam por baixo.
type gormTx struct {
	ctx           context.Context
	db            *gorm.DB
	campaign      campaign.Campaign
	campaignDirty bool
	contributions map[string]*trackedContribution
	order         []string
	payouts       []*campaign.Payout
}

func (t *gormTx) Campaign() *campaign.Campaign {
	return t.campaign.Clone()
}

func (t *gormTx) lookup(contributor string) (*trackedContribution, error) {
	if tracked, ok := t.contributions[contributor]; ok {
		return tracked, nil
	}

	row, err := query.New[contributionDB](t.ctx, t.db, contributionsTable).
		Where("campaign_id = ? AND contributor = ?", int64(t.campaign.Id), contributor).
		First()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, appErrors.NewDatabaseError(err)
	}

	c, err := toDomainContribution(row)
	if err != nil {
		return nil, err
	}
	tracked := &trackedContribution{contribution: c, persisted: true}
	t.contributions[contributor] = tracked
	return tracked, nil
}

func (t *gormTx) Contribution(contributor string) (*campaign.Contribution, error) {
	tracked, err := t.lookup(contributor)
	if err != nil {
		return nil, err
	}
	if tracked == nil {
		return nil, appErrors.ErrContributionNotFound
	}
	return tracked.contribution.Clone(), nil
}

func (t *gormTx) PutCampaign(c *campaign.Campaign) {
	t.campaign.Pledged = c.Pledged
	t.campaign.Claimed = c.Claimed
	t.campaign.UpdatedAt = c.UpdatedAt
	t.campaignDirty = true
}

func (t *gormTx) PutContribution(c *campaign.Contribution) {
	stored := c.Clone()
	stored.CampaignId = t.campaign.Id

	tracked, ok := t.contributions[stored.Contributor]
	if !ok {
		// Sem leitura prévia não dá para saber se a linha existe; flush resolve
		// com upsert.
		tracked = &trackedContribution{}
		t.contributions[stored.Contributor] = tracked
	}
	tracked.contribution = stored
	if !tracked.dirty {
		tracked.dirty = true
		t.order = append(t.order, stored.Contributor)
	}
}

func (t *gormTx) AddPayout(p *campaign.Payout) {
	stored := *p
	stored.CampaignId = t.campaign.Id
	t.payouts = append(t.payouts, &stored)
}

func (t *gormTx) flush() error {
	if t.campaignDirty {
		if err := t.db.Model(&campaignDB{}).
			Where("id = ?", int64(t.campaign.Id)).
			Updates(map[string]interface{}{
				"pledged":    int64(t.campaign.Pledged),
				"claimed":    t.campaign.Claimed,
				"updated_at": t.campaign.UpdatedAt,
			}).Error; err != nil {
			return err
		}
	}

	for _, contributor := range t.order {
		tracked := t.contributions[contributor]
		row := toDBContribution(tracked.contribution)
		if tracked.persisted {
			if err := t.db.Model(&contributionDB{}).
				Where("campaign_id = ? AND contributor = ?", row.CampaignId, row.Contributor).
				Updates(map[string]interface{}{
					"amount":     row.Amount,
					"refunded":   row.Refunded,
					"updated_at": row.UpdatedAt,
				}).Error; err != nil {
				return err
			}
			continue
		}
		if err := t.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "contributor"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "refunded", "updated_at"}),
		}).Create(row).Error; err != nil {
			return err
		}
	}

	for _, p := range t.payouts {
		if err := t.db.Create(toDBPayout(p)).Error; err != nil {
			return err
		}
	}
	return nil
}

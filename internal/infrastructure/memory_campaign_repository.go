package infrastructure

import (
	"context"
	"sync"
	"sync/atomic"

	"FundChain/internal/domain/campaign"
	appErrors "FundChain/internal/errors"
	"FundChain/internal/pkg"
)

// memoryCampaign e memoryState são imutáveis depois de publicados; cada
// commit cria novas versões (copy-on-write).
type memoryCampaign struct {
	campaign      campaign.Campaign
	contributions map[string]*campaign.Contribution
	contributors  []string
	payouts       []*campaign.Payout
}

type memoryState struct {
	campaigns []*memoryCampaign
}

// MemoryCampaignRepository mantém o ledger em memória. Leitores carregam o
// estado atual por um ponteiro atômico e nunca esperam por escritores; os
// escritores de uma mesma campanha são serializados por um mutex próprio.
type MemoryCampaignRepository struct {
	state    atomic.Pointer[memoryState]
	createMu sync.Mutex
	locks    sync.Map
}

func NewMemoryCampaignRepository() *MemoryCampaignRepository {
	r := &MemoryCampaignRepository{}
	r.state.Store(&memoryState{})
	return r
}

func (r *MemoryCampaignRepository) publish(mutate func(old *memoryState) *memoryState) {
	for {
		old := r.state.Load()
		if r.state.CompareAndSwap(old, mutate(old)) {
			return
		}
	}
}

func (r *MemoryCampaignRepository) lockFor(id uint64) *sync.Mutex {
	lock, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (r *MemoryCampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.createMu.Lock()
	defer r.createMu.Unlock()

	var id uint64
	r.publish(func(old *memoryState) *memoryState {
		id = uint64(len(old.campaigns))
		stored := *c
		stored.Id = id

		campaigns := make([]*memoryCampaign, len(old.campaigns), len(old.campaigns)+1)
		copy(campaigns, old.campaigns)
		campaigns = append(campaigns, &memoryCampaign{
			campaign:      stored,
			contributions: map[string]*campaign.Contribution{},
		})
		return &memoryState{campaigns: campaigns}
	})

	c.Id = id
	return nil
}

func (r *MemoryCampaignRepository) get(id uint64) (*memoryCampaign, error) {
	state := r.state.Load()
	if id >= uint64(len(state.campaigns)) {
		return nil, appErrors.ErrCampaignNotFound
	}
	return state.campaigns[id], nil
}

func (r *MemoryCampaignRepository) GetByID(ctx context.Context, id uint64) (*campaign.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return rec.campaign.Clone(), nil
}

func (r *MemoryCampaignRepository) List(ctx context.Context, pagination *pkg.PaginationParams) ([]*campaign.Campaign, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	pagination = pkg.NormalizePagination(pagination)

	state := r.state.Load()
	n := len(state.campaigns)
	start, end := pagination.Window(n)

	out := make([]*campaign.Campaign, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, state.campaigns[n-1-i].campaign.Clone())
	}
	return out, int64(n), nil
}

func (r *MemoryCampaignRepository) ListAll(ctx context.Context) ([]*campaign.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state := r.state.Load()
	out := make([]*campaign.Campaign, 0, len(state.campaigns))
	for i := len(state.campaigns) - 1; i >= 0; i-- {
		out = append(out, state.campaigns[i].campaign.Clone())
	}
	return out, nil
}

func (r *MemoryCampaignRepository) Count(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return uint64(len(r.state.Load().campaigns)), nil
}

func (r *MemoryCampaignRepository) GetContribution(ctx context.Context, campaignID uint64, contributor string) (*campaign.Contribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.get(campaignID)
	if err != nil {
		return nil, err
	}
	c, ok := rec.contributions[contributor]
	if !ok {
		return nil, appErrors.ErrContributionNotFound
	}
	return c.Clone(), nil
}

func (r *MemoryCampaignRepository) GetContributionsByCampaignID(ctx context.Context, campaignID uint64) ([]*campaign.Contribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.get(campaignID)
	if err != nil {
		return nil, err
	}
	out := make([]*campaign.Contribution, 0, len(rec.contributors))
	for _, contributor := range rec.contributors {
		out = append(out, rec.contributions[contributor].Clone())
	}
	return out, nil
}

func (r *MemoryCampaignRepository) GetPayoutsByCampaignID(ctx context.Context, campaignID uint64) ([]*campaign.Payout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec, err := r.get(campaignID)
	if err != nil {
		return nil, err
	}
	out := make([]*campaign.Payout, 0, len(rec.payouts))
	for _, p := range rec.payouts {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (r *MemoryCampaignRepository) GetPayoutsByBeneficiary(ctx context.Context, beneficiary string) ([]*campaign.Payout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state := r.state.Load()
	out := make([]*campaign.Payout, 0)
	for _, rec := range state.campaigns {
		for _, p := range rec.payouts {
			if p.Beneficiary == beneficiary {
				clone := *p
				out = append(out, &clone)
			}
		}
	}
	return out, nil
}

func (r *MemoryCampaignRepository) Update(ctx context.Context, campaignID uint64, fn func(tx campaign.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Campanhas nunca são removidas, então a checagem antes do lock é estável.
	if _, err := r.get(campaignID); err != nil {
		return err
	}

	lock := r.lockFor(campaignID)
	lock.Lock()
	defer lock.Unlock()

	base, err := r.get(campaignID)
	if err != nil {
		return err
	}

	tx := newMemoryTx(base)
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty() {
		return nil
	}

	next := tx.apply()
	r.publish(func(old *memoryState) *memoryState {
		campaigns := make([]*memoryCampaign, len(old.campaigns))
		copy(campaigns, old.campaigns)
		campaigns[campaignID] = next
		return &memoryState{campaigns: campaigns}
	})
	return nil
}

type memoryTx struct {
	base            *memoryCampaign
	campaign        campaign.Campaign
	campaignDirty   bool
	contributions   map[string]*campaign.Contribution
	newContributors []string
	payouts         []*campaign.Payout
}

func newMemoryTx(base *memoryCampaign) *memoryTx {
	return &memoryTx{
		base:          base,
		campaign:      base.campaign,
		contributions: map[string]*campaign.Contribution{},
	}
}

func (t *memoryTx) Campaign() *campaign.Campaign {
	return t.campaign.Clone()
}

func (t *memoryTx) Contribution(contributor string) (*campaign.Contribution, error) {
	if c, ok := t.contributions[contributor]; ok {
		return c.Clone(), nil
	}
	if c, ok := t.base.contributions[contributor]; ok {
		return c.Clone(), nil
	}
	return nil, appErrors.ErrContributionNotFound
}

func (t *memoryTx) PutCampaign(c *campaign.Campaign) {
	t.campaign.Pledged = c.Pledged
	t.campaign.Claimed = c.Claimed
	t.campaign.UpdatedAt = c.UpdatedAt
	t.campaignDirty = true
}

func (t *memoryTx) PutContribution(c *campaign.Contribution) {
	stored := c.Clone()
	stored.CampaignId = t.campaign.Id

	_, inBase := t.base.contributions[stored.Contributor]
	_, inTx := t.contributions[stored.Contributor]
	if !inBase && !inTx {
		t.newContributors = append(t.newContributors, stored.Contributor)
	}
	t.contributions[stored.Contributor] = stored
}

func (t *memoryTx) AddPayout(p *campaign.Payout) {
	stored := *p
	stored.CampaignId = t.campaign.Id
	t.payouts = append(t.payouts, &stored)
}

func (t *memoryTx) dirty() bool {
	return t.campaignDirty || len(t.contributions) > 0 || len(t.payouts) > 0
}

func (t *memoryTx) apply() *memoryCampaign {
	contributions := make(map[string]*campaign.Contribution, len(t.base.contributions)+len(t.newContributors))
	for k, v := range t.base.contributions {
		contributions[k] = v
	}
	for k, v := range t.contributions {
		contributions[k] = v
	}

	contributors := make([]string, 0, len(t.base.contributors)+len(t.newContributors))
	contributors = append(contributors, t.base.contributors...)
	contributors = append(contributors, t.newContributors...)

	payouts := make([]*campaign.Payout, 0, len(t.base.payouts)+len(t.payouts))
	payouts = append(payouts, t.base.payouts...)
	payouts = append(payouts, t.payouts...)

	return &memoryCampaign{
		campaign:      t.campaign,
		contributions: contributions,
		contributors:  contributors,
		payouts:       payouts,
	}
}

package settlement_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/pledge"
	"FundChain/internal/domain/settlement"
	"FundChain/internal/domain/shared"
	appErrors "FundChain/internal/errors"
	"FundChain/internal/infrastructure"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event shared.Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) count(kind shared.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == kind {
			n++
		}
	}
	return n
}

const start int64 = 1_700_000_000

type fixture struct {
	repo       *infrastructure.MemoryCampaignRepository
	clock      *fakeClock
	events     *recordingPublisher
	campaigns  *campaign.Service
	pledges    *pledge.Service
	settlement *settlement.Service
}

func newFixture() *fixture {
	repo := infrastructure.NewMemoryCampaignRepository()
	clock := &fakeClock{now: time.Unix(start, 0)}
	events := &recordingPublisher{}
	return &fixture{
		repo:       repo,
		clock:      clock,
		events:     events,
		campaigns:  campaign.NewService(repo, clock, nil),
		pledges:    pledge.NewService(repo, clock, nil),
		settlement: settlement.NewService(repo, clock, events),
	}
}

// seed cria uma campanha de alice e registra os aportes antes do prazo.
func (f *fixture) seed(t *testing.T, goal int64, pledges map[string]int64) *campaign.Campaign {
	t.Helper()
	ctx := context.Background()
	entity, err := f.campaigns.CreateCampaign(ctx, &campaign.CreateRequest{Creator: "alice", Goal: goal, DurationDays: 1})
	if err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	for who, amount := range pledges {
		if _, err := f.pledges.Pledge(ctx, entity.Id, who, amount); err != nil {
			t.Fatalf("pledge: %v", err)
		}
	}
	return entity
}

func (f *fixture) closeCampaign(entity *campaign.Campaign) {
	f.clock.Set(time.Unix(entity.Deadline, 0))
}

func TestClaimSucceededCampaign(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	entity := f.seed(t, 1000, map[string]int64{"bob": 400, "carol": 700})
	f.closeCampaign(entity)

	payout, err := f.settlement.Claim(ctx, entity.Id, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payout.Amount != 1100 || payout.Beneficiary != "alice" || payout.Kind != campaign.PayoutClaim {
		t.Fatalf("unexpected payout: %+v", payout)
	}

	stored, _ := f.repo.GetByID(ctx, entity.Id)
	if !stored.Claimed || stored.Pledged != 1100 {
		t.Fatalf("expected claimed=true and pledged unchanged, got %+v", stored)
	}

	if _, err := f.settlement.Claim(ctx, entity.Id, "alice"); !errors.Is(err, appErrors.ErrAlreadyClaimed) {
		t.Fatalf("expected ALREADY_CLAIMED, got %v", err)
	}

	balance, err := f.settlement.GetBalance(ctx, "alice")
	if err != nil || balance.Amount != 1100 || len(balance.Payouts) != 1 {
		t.Fatalf("expected alice balance 1100, got %+v / %v", balance, err)
	}
	if f.events.count(shared.EventCampaignClaimed) != 1 {
		t.Fatalf("expected exactly one claimed event")
	}
}

func TestClaimRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		goal    int64
		pledges map[string]int64
		close   bool
		caller  string
		id      uint64
		want    error
	}{
		{name: "goal missed", goal: 1000, pledges: map[string]int64{"bob": 200}, close: true, caller: "alice", want: appErrors.ErrNotSucceeded},
		{name: "still active", goal: 1000, pledges: map[string]int64{"bob": 1200}, close: false, caller: "alice", want: appErrors.ErrNotSucceeded},
		{name: "not the creator", goal: 1000, pledges: map[string]int64{"bob": 1200}, close: true, caller: "bob", want: appErrors.ErrNotCampaignCreator},
		{name: "unknown campaign", goal: 1000, close: true, caller: "alice", id: 5, want: appErrors.ErrCampaignNotFound},
		{name: "blank caller", goal: 1000, pledges: map[string]int64{"bob": 1200}, close: true, caller: "", want: appErrors.ErrValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			ctx := context.Background()
			entity := f.seed(t, tt.goal, tt.pledges)
			if tt.close {
				f.closeCampaign(entity)
			}

			id := entity.Id
			if tt.id != 0 {
				id = tt.id
			}
			_, err := f.settlement.Claim(ctx, id, tt.caller)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			stored, _ := f.repo.GetByID(ctx, entity.Id)
			if stored.Claimed {
				t.Fatalf("rejected claim must leave claimed=false")
			}
			payouts, _ := f.settlement.GetPayouts(ctx, entity.Id)
			if len(payouts) != 0 {
				t.Fatalf("rejected claim must not create payouts")
			}
		})
	}
}

func TestConcurrentClaimsSucceedOnce(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	entity := f.seed(t, 100, map[string]int64{"bob": 150})
	f.closeCampaign(entity)

	const workers = 32
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		already   atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.settlement.Claim(ctx, entity.Id, "alice")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, appErrors.ErrAlreadyClaimed):
				already.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 || already.Load() != workers-1 {
		t.Fatalf("expected 1 success and %d ALREADY_CLAIMED, got %d/%d", workers-1, successes.Load(), already.Load())
	}
	balance, _ := f.settlement.GetBalance(ctx, "alice")
	if balance.Amount != 150 {
		t.Fatalf("creator must be paid exactly once, balance=%d", balance.Amount)
	}
}

func TestRefundFailedCampaign(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	entity := f.seed(t, 1000, map[string]int64{"bob": 200, "carol": 300})
	f.closeCampaign(entity)

	payout, err := f.settlement.Refund(ctx, entity.Id, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payout.Amount != 200 || payout.Beneficiary != "bob" || payout.Kind != campaign.PayoutRefund {
		t.Fatalf("unexpected payout: %+v", payout)
	}

	if _, err := f.settlement.Refund(ctx, entity.Id, "bob"); !errors.Is(err, appErrors.ErrAlreadyRefunded) {
		t.Fatalf("expected ALREADY_REFUNDED, got %v", err)
	}

	stored, _ := f.repo.GetByID(ctx, entity.Id)
	if stored.Pledged != 500 {
		t.Fatalf("refund must not change pledged, got %d", stored.Pledged)
	}
	contribution, _ := f.repo.GetContribution(ctx, entity.Id, "bob")
	if !contribution.Refunded || contribution.Amount != 200 {
		t.Fatalf("expected refunded contribution of 200, got %+v", contribution)
	}

	balance, _ := f.settlement.GetBalance(ctx, "bob")
	if balance.Amount != 200 {
		t.Fatalf("expected bob balance 200, got %d", balance.Amount)
	}
	if _, err := f.settlement.Claim(ctx, entity.Id, "alice"); !errors.Is(err, appErrors.ErrNotSucceeded) {
		t.Fatalf("failed campaign must not be claimable, got %v", err)
	}
}

func TestRefundRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		pledges     map[string]int64
		close       bool
		contributor string
		want        error
	}{
		{name: "campaign active", pledges: map[string]int64{"bob": 200}, close: false, contributor: "bob", want: appErrors.ErrNotFailed},
		{name: "campaign succeeded", pledges: map[string]int64{"bob": 1000}, close: true, contributor: "bob", want: appErrors.ErrNotFailed},
		{name: "never pledged", pledges: map[string]int64{"bob": 200}, close: true, contributor: "mallory", want: appErrors.ErrContributionNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			ctx := context.Background()
			entity := f.seed(t, 1000, tt.pledges)
			if tt.close {
				f.closeCampaign(entity)
			}

			if _, err := f.settlement.Refund(ctx, entity.Id, tt.contributor); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			payouts, _ := f.settlement.GetPayouts(ctx, entity.Id)
			if len(payouts) != 0 {
				t.Fatalf("rejected refund must not create payouts")
			}
		})
	}
}

// Cenários ponta a ponta: aportes, prazo, resgate e reembolso.
func TestLedgerScenarios(t *testing.T) {
	t.Parallel()

	t.Run("goal met then claimed", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()
		entity := f.seed(t, 1000, nil)

		_, _ = f.pledges.Pledge(ctx, entity.Id, "bob", 400)
		_, _ = f.pledges.Pledge(ctx, entity.Id, "bob", 700)
		f.closeCampaign(entity)

		if _, err := f.settlement.Claim(ctx, entity.Id, "alice"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.settlement.Claim(ctx, entity.Id, "alice"); !errors.Is(err, appErrors.ErrAlreadyClaimed) {
			t.Fatalf("expected ALREADY_CLAIMED, got %v", err)
		}
	})

	t.Run("goal missed then not claimable", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()
		entity := f.seed(t, 1000, map[string]int64{"bob": 200})
		f.closeCampaign(entity)

		if _, err := f.settlement.Claim(ctx, entity.Id, "alice"); !errors.Is(err, appErrors.ErrNotSucceeded) {
			t.Fatalf("expected CAMPAIGN_NOT_SUCCEEDED, got %v", err)
		}
	})

	t.Run("late pledge rejected", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()
		entity := f.seed(t, 1000, map[string]int64{"bob": 200})
		f.closeCampaign(entity)

		if _, err := f.pledges.Pledge(ctx, entity.Id, "carol", 100); !errors.Is(err, appErrors.ErrCampaignExpired) {
			t.Fatalf("expected CAMPAIGN_EXPIRED, got %v", err)
		}
		stored, _ := f.repo.GetByID(ctx, entity.Id)
		if stored.Pledged != 200 {
			t.Fatalf("pledged must remain 200, got %d", stored.Pledged)
		}
	})
}

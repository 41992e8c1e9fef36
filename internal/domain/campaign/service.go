package campaign

import (
	"context"
	"math"
	"math/bits"
	"time"

	"FundChain/internal/domain/lifecycle"
	"FundChain/internal/domain/shared"
	appErrors "FundChain/internal/errors"
	"FundChain/internal/logger"
	"FundChain/internal/metrics"
	"FundChain/internal/pkg"
)

type CreateRequest struct {
	Creator      string
	Goal         int64
	DurationDays int64
}

type Status struct {
	Campaign    *Campaign         `json:"campaign"`
	Outcome     lifecycle.Outcome `json:"outcome"`
	Percentage  uint64            `json:"percentage"`
	Remaining   uint64            `json:"remaining"`
	SecondsLeft int64             `json:"secondsLeft"`
}

type Service struct {
	Repository Repository
	Clock      shared.Clock
	Events     shared.EventPublisher
}

func NewService(repo Repository, clock shared.Clock, events shared.EventPublisher) *Service {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if events == nil {
		events = shared.NoopEventPublisher{}
	}
	return &Service{
		Repository: repo,
		Clock:      clock,
		Events:     events,
	}
}

func (s *Service) CreateCampaign(ctx context.Context, request *CreateRequest) (*Campaign, error) {
	entity, err := s.createCampaign(ctx, request)
	metrics.ObserveOperation("create", 0, err)
	if err != nil {
		return nil, err
	}
	metrics.CampaignCreated()

	logger.Info().
		Uint64("campaign_id", entity.Id).
		Str("creator", entity.Creator).
		Uint64("goal", entity.Goal).
		Int64("deadline", entity.Deadline).
		Msg("Campanha criada")

	shared.Notify(ctx, s.Events, shared.Event{
		Type:       shared.EventCampaignCreated,
		CampaignId: entity.Id,
		Account:    entity.Creator,
		Amount:     entity.Goal,
		OccurredAt: entity.CreatedAt,
	})
	return entity, nil
}

func (s *Service) createCampaign(ctx context.Context, request *CreateRequest) (*Campaign, error) {
	if err := Validate(*request); err != nil {
		return nil, err
	}

	creator, err := shared.NormalizeAccount("creator", request.Creator)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	deadline, err := deadlineAfter(now.Unix(), request.DurationDays)
	if err != nil {
		return nil, err
	}

	entity := &Campaign{
		Creator:   creator,
		Goal:      uint64(request.Goal),
		Deadline:  deadline,
		Pledged:   0,
		Claimed:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repository.Create(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) GetCampaignByID(ctx context.Context, id uint64) (*Campaign, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) ListCampaigns(ctx context.Context, pagination *pkg.PaginationParams) ([]*Campaign, int64, error) {
	return s.Repository.List(ctx, pkg.NormalizePagination(pagination))
}

func (s *Service) ListAllCampaigns(ctx context.Context) ([]*Campaign, error) {
	return s.Repository.ListAll(ctx)
}

func (s *Service) CountCampaigns(ctx context.Context) (uint64, error) {
	return s.Repository.Count(ctx)
}

func (s *Service) GetCampaignStatus(ctx context.Context, id uint64) (*Status, error) {
	entity, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildStatus(entity, s.Clock.Now()), nil
}

func BuildStatus(entity *Campaign, now time.Time) *Status {
	var remaining uint64
	if entity.Pledged < entity.Goal {
		remaining = entity.Goal - entity.Pledged
	}

	secondsLeft := entity.Deadline - now.Unix()
	if secondsLeft < 0 {
		secondsLeft = 0
	}

	return &Status{
		Campaign:    entity,
		Outcome:     entity.Outcome(now),
		Percentage:  progress(entity.Pledged, entity.Goal),
		Remaining:   remaining,
		SecondsLeft: secondsLeft,
	}
}

func Validate(request CreateRequest) error {
	if request.Goal <= 0 {
		return appErrors.NewValidationError("goal", "deve ser maior que zero")
	}
	if request.DurationDays <= 0 {
		return appErrors.NewValidationError("duration_days", "deve ser maior que zero")
	}
	return nil
}

func deadlineAfter(now int64, durationDays int64) (int64, error) {
	if durationDays > (math.MaxInt64-now)/shared.SecondsPerDay {
		return 0, appErrors.NewValidationError("duration_days", "excede o prazo máximo suportado")
	}
	return now + durationDays*shared.SecondsPerDay, nil
}

// progress retorna pledged*100/goal limitado a 100, sem overflow.
func progress(pledged, goal uint64) uint64 {
	if goal == 0 {
		return 100
	}
	hi, lo := bits.Mul64(pledged, 100)
	if hi >= goal {
		return 100
	}
	q, _ := bits.Div64(hi, lo, goal)
	if q > 100 {
		return 100
	}
	return q
}

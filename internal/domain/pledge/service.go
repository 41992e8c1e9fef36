package pledge

import (
	"context"
	"errors"

	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/lifecycle"
	"FundChain/internal/domain/shared"
	appErrors "FundChain/internal/errors"
	"FundChain/internal/logger"
	"FundChain/internal/metrics"
	"FundChain/internal/pkg"
)

type Service struct {
	Repository campaign.Repository
	Clock      shared.Clock
	Events     shared.EventPublisher
}

func NewService(repo campaign.Repository, clock shared.Clock, events shared.EventPublisher) *Service {
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

// Pledge soma amount ao registro do contribuidor e ao total da campanha na
// mesma transação.
func (s *Service) Pledge(ctx context.Context, campaignID uint64, contributor string, amount int64) (*campaign.Contribution, error) {
	contribution, total, err := s.pledge(ctx, campaignID, contributor, amount)
	if err != nil {
		metrics.ObserveOperation("pledge", 0, err)
		return nil, err
	}
	metrics.ObserveOperation("pledge", uint64(amount), nil)

	logger.Info().
		Uint64("campaign_id", campaignID).
		Str("contributor", contribution.Contributor).
		Int64("amount", amount).
		Uint64("pledged", total).
		Msg("Aporte registrado")

	shared.Notify(ctx, s.Events, shared.Event{
		Type:       shared.EventCampaignPledged,
		CampaignId: campaignID,
		Account:    contribution.Contributor,
		Amount:     uint64(amount),
		Total:      total,
		OccurredAt: contribution.UpdatedAt,
	})
	return contribution, nil
}

func (s *Service) pledge(ctx context.Context, campaignID uint64, contributor string, amount int64) (*campaign.Contribution, uint64, error) {
	if amount <= 0 {
		return nil, 0, appErrors.ErrInvalidAmount
	}

	contributor, err := shared.NormalizeAccount("contributor", contributor)
	if err != nil {
		return nil, 0, err
	}

	var (
		result *campaign.Contribution
		total  uint64
	)
	err = s.Repository.Update(ctx, campaignID, func(tx campaign.Tx) error {
		now := s.Clock.Now()
		entity := tx.Campaign()

		if lifecycle.Evaluate(entity.Terms(), now.Unix()) != lifecycle.Active {
			return appErrors.ErrCampaignExpired.WithDetails(map[string]interface{}{
				"campaign_id": campaignID,
				"deadline":    entity.Deadline,
			})
		}

		value := uint64(amount)
		if value > campaign.MaxAmount-entity.Pledged {
			return appErrors.ErrInvalidAmount.WithDetails(map[string]interface{}{
				"reason": "total da campanha excederia o limite suportado",
			})
		}

		contribution, err := tx.Contribution(contributor)
		switch {
		case errors.Is(err, appErrors.ErrContributionNotFound):
			contribution = &campaign.Contribution{
				Id:          pkg.GenerateULIDObject(),
				CampaignId:  campaignID,
				Contributor: contributor,
				CreatedAt:   now,
			}
		case err != nil:
			return err
		}

		contribution.Amount += value
		contribution.UpdatedAt = now
		entity.Pledged += value
		entity.UpdatedAt = now

		tx.PutContribution(contribution)
		tx.PutCampaign(entity)

		result = contribution
		total = entity.Pledged
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (s *Service) GetContributions(ctx context.Context, campaignID uint64) ([]*campaign.Contribution, error) {
	if _, err := s.Repository.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.Repository.GetContributionsByCampaignID(ctx, campaignID)
}

func (s *Service) GetContribution(ctx context.Context, campaignID uint64, contributor string) (*campaign.Contribution, error) {
	contributor, err := shared.NormalizeAccount("contributor", contributor)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repository.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.Repository.GetContribution(ctx, campaignID, contributor)
}

package settlement

import (
	"context"

	"FundChain/internal/domain/campaign"
	"FundChain/internal/domain/lifecycle"
	"FundChain/internal/domain/shared"
	appErrors "FundChain/internal/errors"
	"FundChain/internal/logger"
	"FundChain/internal/metrics"
	"FundChain/internal/pkg"
)

type Balance struct {
	Account string             `json:"account"`
	Amount  uint64             `json:"amount"`
	Payouts []*campaign.Payout `json:"payouts"`
}

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

// Claim libera o total arrecadado para o criador. O lançamento de custódia e
// a marcação claimed=true são confirmados juntos ou nenhum deles.
func (s *Service) Claim(ctx context.Context, campaignID uint64, caller string) (*campaign.Payout, error) {
	payout, err := s.claim(ctx, campaignID, caller)
	if err != nil {
		metrics.ObserveOperation("claim", 0, err)
		logger.Warn().
			Err(err).
			Uint64("campaign_id", campaignID).
			Str("caller", caller).
			Msg("Resgate recusado")
		return nil, err
	}
	metrics.ObserveOperation("claim", payout.Amount, nil)

	logger.Info().
		Uint64("campaign_id", campaignID).
		Str("creator", payout.Beneficiary).
		Uint64("amount", payout.Amount).
		Msg("Fundos da campanha resgatados")

	shared.Notify(ctx, s.Events, shared.Event{
		Type:       shared.EventCampaignClaimed,
		CampaignId: campaignID,
		Account:    payout.Beneficiary,
		Amount:     payout.Amount,
		Total:      payout.Amount,
		OccurredAt: payout.CreatedAt,
	})
	return payout, nil
}

func (s *Service) claim(ctx context.Context, campaignID uint64, caller string) (*campaign.Payout, error) {
	caller, err := shared.NormalizeAccount("caller", caller)
	if err != nil {
		return nil, err
	}

	var payout *campaign.Payout
	err = s.Repository.Update(ctx, campaignID, func(tx campaign.Tx) error {
		now := s.Clock.Now()
		entity := tx.Campaign()

		if entity.Claimed {
			return appErrors.ErrAlreadyClaimed
		}
		if outcome := lifecycle.Evaluate(entity.Terms(), now.Unix()); outcome != lifecycle.Succeeded {
			return appErrors.ErrNotSucceeded.WithDetails(map[string]interface{}{
				"outcome": outcome,
			})
		}
		if caller != entity.Creator {
			return appErrors.ErrNotCampaignCreator
		}

		payout = &campaign.Payout{
			Id:          pkg.GenerateULIDObject(),
			CampaignId:  campaignID,
			Beneficiary: entity.Creator,
			Kind:        campaign.PayoutClaim,
			Amount:      entity.Pledged,
			CreatedAt:   now,
		}
		entity.Claimed = true
		entity.UpdatedAt = now

		tx.AddPayout(payout)
		tx.PutCampaign(entity)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

// Refund devolve ao contribuidor exatamente o que ele aportou numa campanha
// que falhou. O total da campanha não muda, preservando a soma das
// contribuições.
func (s *Service) Refund(ctx context.Context, campaignID uint64, contributor string) (*campaign.Payout, error) {
	payout, err := s.refund(ctx, campaignID, contributor)
	if err != nil {
		metrics.ObserveOperation("refund", 0, err)
		return nil, err
	}
	metrics.ObserveOperation("refund", payout.Amount, nil)

	logger.Info().
		Uint64("campaign_id", campaignID).
		Str("contributor", payout.Beneficiary).
		Uint64("amount", payout.Amount).
		Msg("Contribuição reembolsada")

	shared.Notify(ctx, s.Events, shared.Event{
		Type:       shared.EventCampaignRefunded,
		CampaignId: campaignID,
		Account:    payout.Beneficiary,
		Amount:     payout.Amount,
		OccurredAt: payout.CreatedAt,
	})
	return payout, nil
}

func (s *Service) refund(ctx context.Context, campaignID uint64, contributor string) (*campaign.Payout, error) {
	contributor, err := shared.NormalizeAccount("contributor", contributor)
	if err != nil {
		return nil, err
	}

	var payout *campaign.Payout
	err = s.Repository.Update(ctx, campaignID, func(tx campaign.Tx) error {
		now := s.Clock.Now()
		entity := tx.Campaign()

		if outcome := lifecycle.Evaluate(entity.Terms(), now.Unix()); outcome != lifecycle.Failed {
			return appErrors.ErrNotFailed.WithDetails(map[string]interface{}{
				"outcome": outcome,
			})
		}

		contribution, err := tx.Contribution(contributor)
		if err != nil {
			return err
		}
		if contribution.Amount == 0 {
			return appErrors.ErrContributionNotFound
		}
		if contribution.Refunded {
			return appErrors.ErrAlreadyRefunded
		}

		payout = &campaign.Payout{
			Id:          pkg.GenerateULIDObject(),
			CampaignId:  campaignID,
			Beneficiary: contribution.Contributor,
			Kind:        campaign.PayoutRefund,
			Amount:      contribution.Amount,
			CreatedAt:   now,
		}
		contribution.Refunded = true
		contribution.UpdatedAt = now

		tx.AddPayout(payout)
		tx.PutContribution(contribution)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

func (s *Service) GetBalance(ctx context.Context, account string) (*Balance, error) {
	account, err := shared.NormalizeAccount("account", account)
	if err != nil {
		return nil, err
	}

	payouts, err := s.Repository.GetPayoutsByBeneficiary(ctx, account)
	if err != nil {
		return nil, err
	}

	var total uint64
	for _, p := range payouts {
		total += p.Amount
	}

	return &Balance{
		Account: account,
		Amount:  total,
		Payouts: payouts,
	}, nil
}

func (s *Service) GetPayouts(ctx context.Context, campaignID uint64) ([]*campaign.Payout, error) {
	if _, err := s.Repository.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.Repository.GetPayoutsByCampaignID(ctx, campaignID)
}

package campaign

import (
	"context"

	"FundChain/internal/pkg"
)

// Repository guarda campanhas, contribuições e lançamentos de custódia.
//
// Leituras enxergam um snapshot já confirmado e não bloqueiam escritores.
// Escritas passam por Update, que serializa as alterações de uma mesma
// campanha e confirma tudo o que foi gravado via Tx somente se fn retornar nil.
type Repository interface {
	// Create atribui o próximo id denso ao campaign recebido.
	Create(ctx context.Context, campaign *Campaign) error
	GetByID(ctx context.Context, id uint64) (*Campaign, error)
	// List e ListAll retornam do id mais novo para o mais antigo.
	List(ctx context.Context, pagination *pkg.PaginationParams) ([]*Campaign, int64, error)
	ListAll(ctx context.Context) ([]*Campaign, error)
	Count(ctx context.Context) (uint64, error)

	GetContribution(ctx context.Context, campaignID uint64, contributor string) (*Contribution, error)
	GetContributionsByCampaignID(ctx context.Context, campaignID uint64) ([]*Contribution, error)
	GetPayoutsByCampaignID(ctx context.Context, campaignID uint64) ([]*Payout, error)
	GetPayoutsByBeneficiary(ctx context.Context, beneficiary string) ([]*Payout, error)

	Update(ctx context.Context, campaignID uint64, fn func(tx Tx) error) error
}

// Tx é a visão transacional de uma campanha dentro de Repository.Update.
// Campaign e Contribution devolvem cópias de trabalho; nada é visível para
// outros leitores antes do commit.
type Tx interface {
	Campaign() *Campaign
	// Contribution retorna ErrContributionNotFound quando o contribuidor ainda
	// não aportou na campanha.
	Contribution(contributor string) (*Contribution, error)
	// PutCampaign persiste apenas Pledged, Claimed e UpdatedAt; os demais
	// campos são imutáveis após a criação.
	PutCampaign(campaign *Campaign)
	PutContribution(contribution *Contribution)
	AddPayout(payout *Payout)
}

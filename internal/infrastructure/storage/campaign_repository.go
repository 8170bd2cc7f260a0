package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/infrastructure/storage/models"
	pkgmodels "github.com/contentforge/conditioncore/pkg/models"
)

var _ repository.CampaignRepository = (*CampaignRepositoryImpl)(nil)

// CampaignRepositoryImpl is the bun-backed CampaignRepository.
type CampaignRepositoryImpl struct {
	db bun.IDB
}

// NewCampaignRepository builds a CampaignRepositoryImpl.
func NewCampaignRepository(db bun.IDB) *CampaignRepositoryImpl {
	return &CampaignRepositoryImpl{db: db}
}

func (r *CampaignRepositoryImpl) Create(ctx context.Context, campaign *pkgmodels.Campaign) error {
	m := models.FromCampaignDomain(campaign)

	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return err
	}

	campaign.ID = m.ID.String()
	campaign.CreatedAt = m.CreatedAt
	campaign.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *CampaignRepositoryImpl) GetByID(ctx context.Context, id string) (*pkgmodels.Campaign, error) {
	campaignID, err := uuid.Parse(id)
	if err != nil {
		return nil, &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	m := new(models.CampaignModel)
	err = r.db.NewSelect().Model(m).Where("id = ?", campaignID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &pkgmodels.NotFoundError{Resource: "campaign", ID: id}
		}
		return nil, err
	}

	return models.ToCampaignDomain(m), nil
}

func (r *CampaignRepositoryImpl) ListByOwner(ctx context.Context, owner string) ([]*pkgmodels.Campaign, error) {
	var rows []*models.CampaignModel
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner = ?", owner).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*pkgmodels.Campaign, len(rows))
	for i, m := range rows {
		out[i] = models.ToCampaignDomain(m)
	}
	return out, nil
}

func (r *CampaignRepositoryImpl) Update(ctx context.Context, campaign *pkgmodels.Campaign) error {
	campaignID, err := uuid.Parse(campaign.ID)
	if err != nil {
		return &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	m := models.FromCampaignDomain(campaign)
	_, err = r.db.NewUpdate().
		Model(m).
		Column("name", "product_context", "product_url", "keywords", "target_subreddits", "status", "updated_at").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", campaignID).
		Exec(ctx)
	return err
}

func (r *CampaignRepositoryImpl) UpdateStatus(ctx context.Context, id string, status pkgmodels.CampaignStatus) error {
	campaignID, err := uuid.Parse(id)
	if err != nil {
		return &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	_, err = r.db.NewUpdate().
		Model((*models.CampaignModel)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", campaignID).
		Exec(ctx)
	return err
}

func (r *CampaignRepositoryImpl) Delete(ctx context.Context, id string) error {
	campaignID, err := uuid.Parse(id)
	if err != nil {
		return &pkgmodels.ValidationError{Field: "id", Message: "not a valid uuid"}
	}

	_, err = r.db.NewDelete().
		Model((*models.CampaignModel)(nil)).
		Where("id = ?", campaignID).
		Exec(ctx)
	return err
}

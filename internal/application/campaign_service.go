package application

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/pkg/models"
)

var structValidator = validator.New()

// CampaignSpec is create_campaign's input shape (spec.md §6): everything a
// caller supplies about a new campaign, before server-assigned fields
// (id, status, timestamps) exist.
type CampaignSpec struct {
	Name             string
	ProductContext   string
	ProductURL       string
	Keywords         []string
	TargetSubreddits []string
}

// CampaignService implements create_campaign and its read-side companions.
type CampaignService struct {
	campaigns repository.CampaignRepository
	now       func() time.Time
}

// NewCampaignService builds a CampaignService.
func NewCampaignService(campaigns repository.CampaignRepository) *CampaignService {
	return &CampaignService{campaigns: campaigns, now: time.Now}
}

// CreateCampaign validates spec against Campaign's struct tags (keywords:
// 5-15 entries, at least one target subreddit) and persists a new, active
// Campaign (spec.md §6: `create_campaign(owner, spec) → Campaign`).
func (s *CampaignService) CreateCampaign(ctx context.Context, owner string, spec CampaignSpec) (*models.Campaign, error) {
	now := s.now()
	campaign := &models.Campaign{
		ID:               uuid.NewString(),
		Owner:            owner,
		Name:             spec.Name,
		ProductContext:   spec.ProductContext,
		ProductURL:       spec.ProductURL,
		Keywords:         spec.Keywords,
		TargetSubreddits: spec.TargetSubreddits,
		Status:           models.CampaignStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := structValidator.Struct(campaign); err != nil {
		return nil, &models.ValidationError{Field: "spec", Message: err.Error()}
	}

	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// GetCampaign returns a campaign by id.
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	return s.campaigns.GetByID(ctx, id)
}

// ListCampaigns returns every campaign owned by owner.
func (s *CampaignService) ListCampaigns(ctx context.Context, owner string) ([]*models.Campaign, error) {
	return s.campaigns.ListByOwner(ctx, owner)
}

// PauseCampaign moves a campaign to paused, which causes the Shadow Monitor
// and Audit Engine to skip its entries silently (spec.md §4.11).
func (s *CampaignService) PauseCampaign(ctx context.Context, id string) error {
	return s.campaigns.UpdateStatus(ctx, id, models.CampaignStatusPaused)
}

// ResumeCampaign moves a paused campaign back to active.
func (s *CampaignService) ResumeCampaign(ctx context.Context, id string) error {
	return s.campaigns.UpdateStatus(ctx, id, models.CampaignStatusActive)
}

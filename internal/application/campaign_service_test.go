package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentforge/conditioncore/pkg/models"
)

type fakeCampaignRepo struct {
	created []*models.Campaign
}

func (f *fakeCampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	f.created = append(f.created, c)
	return nil
}
func (f *fakeCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	for _, c := range f.created {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, &models.NotFoundError{Resource: "Campaign", ID: id}
}
func (f *fakeCampaignRepo) ListByOwner(ctx context.Context, owner string) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range f.created {
		if c.Owner == owner {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeCampaignRepo) Update(ctx context.Context, c *models.Campaign) error { return nil }
func (f *fakeCampaignRepo) UpdateStatus(ctx context.Context, id string, status models.CampaignStatus) error {
	for _, c := range f.created {
		if c.ID == id {
			c.Status = status
		}
	}
	return nil
}
func (f *fakeCampaignRepo) Delete(ctx context.Context, id string) error { return nil }

func validKeywords() []string {
	return []string{"launch", "product", "feedback", "startup", "growth"}
}

func TestCreateCampaign_Success(t *testing.T) {
	repo := &fakeCampaignRepo{}
	svc := NewCampaignService(repo)

	campaign, err := svc.CreateCampaign(context.Background(), "owner-1", CampaignSpec{
		Name:             "Launch Week",
		Keywords:         validKeywords(),
		TargetSubreddits: []string{"golang"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusActive, campaign.Status)
	assert.NotEmpty(t, campaign.ID)
	assert.Len(t, repo.created, 1)
}

func TestCreateCampaign_RejectsTooFewKeywords(t *testing.T) {
	repo := &fakeCampaignRepo{}
	svc := NewCampaignService(repo)

	_, err := svc.CreateCampaign(context.Background(), "owner-1", CampaignSpec{
		Name:             "Launch Week",
		Keywords:         []string{"only", "two"},
		TargetSubreddits: []string{"golang"},
	})
	require.Error(t, err)
	var valErr *models.ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestCreateCampaign_RejectsNoTargetSubreddits(t *testing.T) {
	repo := &fakeCampaignRepo{}
	svc := NewCampaignService(repo)

	_, err := svc.CreateCampaign(context.Background(), "owner-1", CampaignSpec{
		Name:             "Launch Week",
		Keywords:         validKeywords(),
		TargetSubreddits: nil,
	})
	require.Error(t, err)
}

func TestPauseAndResumeCampaign(t *testing.T) {
	repo := &fakeCampaignRepo{}
	svc := NewCampaignService(repo)

	campaign, err := svc.CreateCampaign(context.Background(), "owner-1", CampaignSpec{
		Name:             "Launch Week",
		Keywords:         validKeywords(),
		TargetSubreddits: []string{"golang"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.PauseCampaign(context.Background(), campaign.ID))
	got, err := svc.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusPaused, got.Status)

	require.NoError(t, svc.ResumeCampaign(context.Background(), campaign.ID))
	got, err = svc.GetCampaign(context.Background(), campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignStatusActive, got.Status)
}

package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentforge/conditioncore/internal/patternengine"
	"github.com/contentforge/conditioncore/internal/taskbus"
	"github.com/contentforge/conditioncore/pkg/models"
)

type fakeAnalysisRawPostRepo struct {
	bySubreddit map[string][]*models.RawPost
}

func (f *fakeAnalysisRawPostRepo) Upsert(ctx context.Context, post *models.RawPost) error { return nil }
func (f *fakeAnalysisRawPostRepo) GetByID(ctx context.Context, id string) (*models.RawPost, error) {
	return nil, nil
}
func (f *fakeAnalysisRawPostRepo) ListBySubreddit(ctx context.Context, campaignID, subreddit string, limit int) ([]*models.RawPost, error) {
	return f.bySubreddit[subreddit], nil
}
func (f *fakeAnalysisRawPostRepo) ListUnprocessed(ctx context.Context, campaignID string, limit int) ([]*models.RawPost, error) {
	return nil, nil
}
func (f *fakeAnalysisRawPostRepo) MarkProcessed(ctx context.Context, id string, archetype models.Archetype, successScore float64) error {
	return nil
}
func (f *fakeAnalysisRawPostRepo) CountBySubreddit(ctx context.Context, campaignID, subreddit string) (int, error) {
	return len(f.bySubreddit[subreddit]), nil
}

func samplePosts(n int) []*models.RawPost {
	out := make([]*models.RawPost, n)
	for i := range out {
		out[i] = &models.RawPost{
			RawText:     "a perfectly ordinary post about the product with no forbidden phrases at all today",
			UpvoteRatio: 0.8,
		}
	}
	return out
}

func TestStartAnalysis_SkipsSubredditsBelowSampleSize(t *testing.T) {
	campaign := &models.Campaign{ID: "camp-1", Owner: "owner-1", TargetSubreddits: []string{"golang"}, Keywords: validKeywords()}
	campaigns := newTestCampaignRepoWith(campaign)
	posts := &fakeAnalysisRawPostRepo{bySubreddit: map[string][]*models.RawPost{"golang": samplePosts(3)}}
	profiles := &fakeProfileRepo{}
	engine := patternengine.New(campaigns, posts, profiles, nil)
	bus := taskbus.New()
	svc := NewAnalysisService(engine, profiles, bus, DispatcherFunc(func(work func(ctx context.Context)) { work(context.Background()) }))

	taskID, err := svc.StartAnalysis(context.Background(), "camp-1", false)
	require.NoError(t, err)

	ch, cancel := bus.Subscribe(taskID)
	defer cancel()
	snapshot := <-ch
	assert.Equal(t, models.TaskStateFailure, snapshot.State)
	assert.Contains(t, snapshot.Warnings[0], "golang:insufficient_data")
	assert.Equal(t, 0, snapshot.Result["profiles_created"])
}

func TestStartAnalysis_PropagatesCampaignNotFound(t *testing.T) {
	campaigns := &fakeCampaignRepo{}
	posts := &fakeAnalysisRawPostRepo{bySubreddit: map[string][]*models.RawPost{}}
	profiles := &fakeProfileRepo{}
	engine := patternengine.New(campaigns, posts, profiles, nil)
	bus := taskbus.New()
	svc := NewAnalysisService(engine, profiles, bus, DispatcherFunc(func(work func(ctx context.Context)) { work(context.Background()) }))

	taskID, err := svc.StartAnalysis(context.Background(), "missing", false)
	require.NoError(t, err)

	ch, cancel := bus.Subscribe(taskID)
	defer cancel()
	snapshot := <-ch
	assert.Equal(t, models.TaskStateFailure, snapshot.State)
}

func TestGetCommunityProfile_DelegatesToRepository(t *testing.T) {
	profiles := &fakeProfileRepo{profile: &models.CommunityProfile{ISCScore: 4.2}}
	svc := NewAnalysisService(nil, profiles, nil, nil)

	profile, err := svc.GetCommunityProfile(context.Background(), "camp-1", "golang")
	require.NoError(t, err)
	assert.Equal(t, 4.2, profile.ISCScore)
}

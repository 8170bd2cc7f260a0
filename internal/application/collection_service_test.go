package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentforge/conditioncore/internal/collection"
	"github.com/contentforge/conditioncore/internal/external"
	"github.com/contentforge/conditioncore/internal/taskbus"
	"github.com/contentforge/conditioncore/pkg/models"
)

type fakeRawPostRepo struct{}

func (f *fakeRawPostRepo) Upsert(ctx context.Context, post *models.RawPost) error { return nil }
func (f *fakeRawPostRepo) GetByID(ctx context.Context, id string) (*models.RawPost, error) {
	return nil, nil
}
func (f *fakeRawPostRepo) ListBySubreddit(ctx context.Context, campaignID, subreddit string, limit int) ([]*models.RawPost, error) {
	return nil, nil
}
func (f *fakeRawPostRepo) ListUnprocessed(ctx context.Context, campaignID string, limit int) ([]*models.RawPost, error) {
	return nil, nil
}
func (f *fakeRawPostRepo) MarkProcessed(ctx context.Context, id string, archetype models.Archetype, successScore float64) error {
	return nil
}
func (f *fakeRawPostRepo) CountBySubreddit(ctx context.Context, campaignID, subreddit string) (int, error) {
	return 0, nil
}

type fakeCollectionLocker struct{ denyAll bool }

func (f *fakeCollectionLocker) AcquireCollectionLock(ctx context.Context, campaignID string, ttl time.Duration) (string, bool, error) {
	if f.denyAll {
		return "", false, nil
	}
	return "tok", true, nil
}
func (f *fakeCollectionLocker) ReleaseCollectionLock(ctx context.Context, campaignID, token string) error {
	return nil
}

func newTestCampaignRepoWith(c *models.Campaign) *fakeCampaignRepo {
	return &fakeCampaignRepo{created: []*models.Campaign{c}}
}

func TestStartCollection_ReachesSuccessWithNoScrapedPosts(t *testing.T) {
	campaign := &models.Campaign{ID: "camp-1", Owner: "owner-1", TargetSubreddits: []string{"golang"}, Keywords: validKeywords()}
	campaigns := newTestCampaignRepoWith(campaign)
	engine := collection.New(external.NewFakeScraper(), &fakeRawPostRepo{}, campaigns, nil, &fakeCollectionLocker{})
	bus := taskbus.New()
	svc := NewCollectionService(engine, bus, DispatcherFunc(func(work func(ctx context.Context)) { work(context.Background()) }))

	taskID, err := svc.StartCollection(context.Background(), "camp-1")
	require.NoError(t, err)

	ch, cancel := bus.Subscribe(taskID)
	defer cancel()
	snapshot := <-ch
	assert.Equal(t, models.TaskStateSuccess, snapshot.State)
	assert.Equal(t, 0, snapshot.Scraped)
}

func TestStartCollection_PropagatesCampaignNotFound(t *testing.T) {
	campaigns := &fakeCampaignRepo{}
	engine := collection.New(external.NewFakeScraper(), &fakeRawPostRepo{}, campaigns, nil, &fakeCollectionLocker{})
	bus := taskbus.New()
	svc := NewCollectionService(engine, bus, DispatcherFunc(func(work func(ctx context.Context)) { work(context.Background()) }))

	taskID, err := svc.StartCollection(context.Background(), "missing")
	require.NoError(t, err)

	ch, cancel := bus.Subscribe(taskID)
	defer cancel()
	snapshot := <-ch
	assert.Equal(t, models.TaskStateFailure, snapshot.State)
	assert.NotEmpty(t, snapshot.Error)
}

func TestStartCollection_LockHeldReturnsFailure(t *testing.T) {
	campaign := &models.Campaign{ID: "camp-1", Owner: "owner-1", TargetSubreddits: []string{"golang"}, Keywords: validKeywords()}
	campaigns := newTestCampaignRepoWith(campaign)
	engine := collection.New(external.NewFakeScraper(), &fakeRawPostRepo{}, campaigns, nil, &fakeCollectionLocker{denyAll: true})
	bus := taskbus.New()
	svc := NewCollectionService(engine, bus, DispatcherFunc(func(work func(ctx context.Context)) { work(context.Background()) }))

	taskID, err := svc.StartCollection(context.Background(), "camp-1")
	require.NoError(t, err)

	ch, cancel := bus.Subscribe(taskID)
	defer cancel()
	snapshot := <-ch
	assert.Equal(t, models.TaskStateFailure, snapshot.State)
}

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentforge/conditioncore/internal/blacklist"
	"github.com/contentforge/conditioncore/pkg/models"
)

type fakeEntryRepo struct {
	due       []*models.ShadowEntry
	completed map[string]models.AuditResult
}

func (f *fakeEntryRepo) Create(ctx context.Context, e *models.ShadowEntry) error { return nil }
func (f *fakeEntryRepo) GetByID(ctx context.Context, id string) (*models.ShadowEntry, error) {
	return nil, nil
}
func (f *fakeEntryRepo) GetByPostURL(ctx context.Context, url string) (*models.ShadowEntry, error) {
	return nil, nil
}
func (f *fakeEntryRepo) ListDueForCheck(ctx context.Context, now time.Time) ([]*models.ShadowEntry, error) {
	return nil, nil
}
func (f *fakeEntryRepo) ListDueForAudit(ctx context.Context, now time.Time) ([]*models.ShadowEntry, error) {
	return f.due, nil
}
func (f *fakeEntryRepo) RecordCheck(ctx context.Context, id string, consecutiveHidden int, checkStatus string, upvoteRatio float64, commentCount int, now time.Time) error {
	return nil
}
func (f *fakeEntryRepo) Transition(ctx context.Context, id string, next models.ShadowEntryStatus) error {
	return nil
}
func (f *fakeEntryRepo) CompleteAudit(ctx context.Context, id string, result models.AuditResult, now time.Time) error {
	if f.completed == nil {
		f.completed = map[string]models.AuditResult{}
	}
	f.completed[id] = result
	return nil
}
func (f *fakeEntryRepo) CountRecentByOwner(ctx context.Context, owner string) (int, error) {
	return 0, nil
}

type fakeDraftRepo struct {
	draft *models.GeneratedDraft
}

func (f *fakeDraftRepo) Create(ctx context.Context, d *models.GeneratedDraft) error { return nil }
func (f *fakeDraftRepo) GetByID(ctx context.Context, id string) (*models.GeneratedDraft, error) {
	return f.draft, nil
}
func (f *fakeDraftRepo) ListByCampaign(ctx context.Context, campaignID string, status models.DraftStatus) ([]*models.GeneratedDraft, error) {
	return nil, nil
}
func (f *fakeDraftRepo) UpdateBody(ctx context.Context, id, body, userEdits string) error {
	return nil
}
func (f *fakeDraftRepo) UpdateStatus(ctx context.Context, id string, next models.DraftStatus) error {
	return nil
}

type fakeProfileRepo struct {
	profile *models.CommunityProfile
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, p *models.CommunityProfile) error { return nil }
func (f *fakeProfileRepo) GetBySubreddit(ctx context.Context, campaignID, subreddit string) (*models.CommunityProfile, error) {
	return f.profile, nil
}
func (f *fakeProfileRepo) ListByCampaign(ctx context.Context, campaignID string) ([]*models.CommunityProfile, error) {
	return nil, nil
}

type fakeBlacklistRepo struct {
	inserted []*models.BlacklistEntry
}

func (f *fakeBlacklistRepo) Insert(ctx context.Context, entry *models.BlacklistEntry) error {
	f.inserted = append(f.inserted, entry)
	return nil
}
func (f *fakeBlacklistRepo) RaiseConfidence(ctx context.Context, scopeSubreddit, forbiddenPattern string, delta float64) error {
	return nil
}
func (f *fakeBlacklistRepo) LoadFor(ctx context.Context, subreddit, campaignID string) ([]*models.BlacklistEntry, error) {
	return nil, nil
}

func TestClassify_SocialSuccess(t *testing.T) {
	entry := &models.ShadowEntry{Status: models.ShadowStatusActive, LastUpvoteRatio: 0.85, LastCommentCount: 20}
	assert.Equal(t, models.AuditResultSocialSuccess, classify(entry))
}

func TestClassify_RejectionOnShadowban(t *testing.T) {
	entry := &models.ShadowEntry{Status: models.ShadowStatusShadowbanned, LastUpvoteRatio: 0.9, LastCommentCount: 50}
	assert.Equal(t, models.AuditResultRejection, classify(entry))
}

func TestClassify_RejectionOnLowUpvoteRatio(t *testing.T) {
	entry := &models.ShadowEntry{Status: models.ShadowStatusActive, LastUpvoteRatio: 0.2, LastCommentCount: 1}
	assert.Equal(t, models.AuditResultRejection, classify(entry))
}

func TestClassify_Inertia(t *testing.T) {
	entry := &models.ShadowEntry{Status: models.ShadowStatusActive, LastUpvoteRatio: 0.5, LastCommentCount: 2}
	assert.Equal(t, models.AuditResultInertia, classify(entry))
}

func TestRunTick_RejectionMinesPatternsAndCompletesAudit(t *testing.T) {
	draft := &models.GeneratedDraft{ID: "draft-1", Title: "check it out", Body: "dm me for details, link in bio"}
	entry := &models.ShadowEntry{ID: "e1", DraftID: "draft-1", CampaignID: "camp-1", Subreddit: "golang", Status: models.ShadowStatusRemoved}
	entries := &fakeEntryRepo{due: []*models.ShadowEntry{entry}}
	drafts := &fakeDraftRepo{draft: draft}
	profiles := &fakeProfileRepo{profile: &models.CommunityProfile{ForbiddenPatterns: map[string]int{}}}
	blRepo := &fakeBlacklistRepo{}

	engine := New(entries, drafts, profiles, blacklist.New(blRepo))
	require.NoError(t, engine.RunTick(context.Background()))

	assert.Equal(t, models.AuditResultRejection, entries.completed["e1"])
	require.NotEmpty(t, blRepo.inserted)
	for _, ins := range blRepo.inserted {
		assert.True(t, ins.IsSystemDetected)
		assert.Equal(t, "e1", ins.SourceShadowID)
		require.NotNil(t, ins.FailureType)
		assert.Equal(t, models.FailureTypeAdminRemoval, *ins.FailureType)
	}
}

func TestRunTick_SkipsMiningWhenCategoryAlreadyKnown(t *testing.T) {
	draft := &models.GeneratedDraft{ID: "draft-1", Title: "", Body: "dm me for details"}
	entry := &models.ShadowEntry{ID: "e1", DraftID: "draft-1", CampaignID: "camp-1", Subreddit: "golang", Status: models.ShadowStatusRemoved}
	entries := &fakeEntryRepo{due: []*models.ShadowEntry{entry}}
	drafts := &fakeDraftRepo{draft: draft}
	profiles := &fakeProfileRepo{profile: &models.CommunityProfile{ForbiddenPatterns: map[string]int{string(models.CategoryPromotional): 3}}}
	blRepo := &fakeBlacklistRepo{}

	engine := New(entries, drafts, profiles, blacklist.New(blRepo))
	require.NoError(t, engine.RunTick(context.Background()))

	assert.Empty(t, blRepo.inserted)
}

func TestMineOnShadowban_UsesShadowbanFailureType(t *testing.T) {
	draft := &models.GeneratedDraft{ID: "draft-1", Title: "", Body: "act now, limited time"}
	entry := &models.ShadowEntry{ID: "e1", DraftID: "draft-1", CampaignID: "camp-1", Subreddit: "golang", Status: models.ShadowStatusShadowbanned}
	entries := &fakeEntryRepo{}
	drafts := &fakeDraftRepo{draft: draft}
	profiles := &fakeProfileRepo{profile: &models.CommunityProfile{ForbiddenPatterns: map[string]int{}}}
	blRepo := &fakeBlacklistRepo{}

	engine := New(entries, drafts, profiles, blacklist.New(blRepo))
	require.NoError(t, engine.MineOnShadowban(context.Background(), entry))

	require.NotEmpty(t, blRepo.inserted)
	assert.Equal(t, models.FailureTypeShadowban, *blRepo.inserted[0].FailureType)
}

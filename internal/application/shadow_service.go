package application

import (
	"context"
	"errors"
	"time"

	"github.com/PuerkitoBio/purell"
	"github.com/google/uuid"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/pkg/models"
)

// urlNormalizationFlags canonicalizes submitted post URLs before the
// (post_url) uniqueness check runs, so trivially different URLs for the same
// post (trailing slash, default port, fragment) don't create duplicate
// ShadowEntry rows.
const urlNormalizationFlags = purell.FlagsUsuallySafeGreedy | purell.FlagRemoveFragment

// ShadowService implements register_post (spec.md §6, §4.11).
type ShadowService struct {
	entries   repository.ShadowEntryRepository
	profiles  repository.CommunityProfileRepository
	now       func() time.Time
}

// NewShadowService builds a ShadowService.
func NewShadowService(entries repository.ShadowEntryRepository, profiles repository.CommunityProfileRepository) *ShadowService {
	return &ShadowService{entries: entries, profiles: profiles, now: time.Now}
}

// RegisterPost creates a ShadowEntry for a newly-submitted post (spec.md §6:
// `register_post(draft_id?, campaign_id, post_url, account_status?) →
// ShadowEntry`). accountStatus must come from the caller, never inferred
// (spec.md §9 Open Question); an empty value defaults to New, the
// conservative assumption for an unspecified account. Create is idempotent
// on post_url: a duplicate submission returns the existing entry rather than
// erroring.
func (s *ShadowService) RegisterPost(ctx context.Context, draftID, campaignID, owner, subreddit, postURL string, accountStatus models.AccountStatus) (*models.ShadowEntry, error) {
	if accountStatus == "" {
		accountStatus = models.AccountStatusNew
	}
	if !accountStatus.Valid() {
		return nil, &models.ValidationError{Field: "account_status", Message: "not in the closed account status set: " + string(accountStatus)}
	}

	normalized, err := purell.NormalizeURLString(postURL, urlNormalizationFlags)
	if err != nil {
		return nil, &models.ValidationError{Field: "post_url", Message: err.Error()}
	}

	iscAtPost := s.lookupISC(ctx, campaignID, subreddit)

	postsSoFar, err := s.entries.CountRecentByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := &models.ShadowEntry{
		ID:                 uuid.NewString(),
		DraftID:            draftID,
		CampaignID:         campaignID,
		Owner:              owner,
		PostURL:            normalized,
		Subreddit:          subreddit,
		Status:             models.ShadowStatusActive,
		ISCAtPost:          iscAtPost,
		AccountStatus:      accountStatus,
		CheckIntervalHours: models.EffectiveCheckInterval(accountStatus, postsSoFar),
		SubmittedAt:        now,
		AuditDueAt:         now.Add(models.AuditDueOffset),
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		var exists *models.AlreadyExistsError
		if errors.As(err, &exists) {
			return s.entries.GetByPostURL(ctx, normalized)
		}
		return nil, err
	}
	return entry, nil
}

func (s *ShadowService) lookupISC(ctx context.Context, campaignID, subreddit string) float64 {
	profile, err := s.profiles.GetBySubreddit(ctx, campaignID, subreddit)
	if err != nil || profile == nil {
		return 0
	}
	return profile.ISCScore
}

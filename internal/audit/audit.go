// Package audit implements the Audit Engine (C12): classifies a ShadowEntry's
// 7-day outcome and, on rejection, mines forbidden-pattern candidates into the
// Blacklist Store (C5).
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/contentforge/conditioncore/internal/blacklist"
	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/patternengine"
	"github.com/contentforge/conditioncore/pkg/models"
)

const (
	// socialSuccessUpvoteRatio and socialSuccessMinComments are the
	// SocialSuccess thresholds (spec.md §4.12 names the conditions but not
	// the numbers; chosen in line with Reddit's own "popular post" norms —
	// documented as an Open Question resolution in DESIGN.md).
	socialSuccessUpvoteRatio = 0.70
	socialSuccessMinComments = 10

	// rejectionUpvoteRatio is the lower-bound threshold below which a post
	// is classified Rejection even if never removed or shadowbanned.
	rejectionUpvoteRatio = 0.40

	systemDetectedConfidence = 0.5
)

// auditBatchLimit bounds work per tick, mirroring the Shadow Monitor's bound.
const auditBatchLimit = 200

// Engine runs the C12 audit classification and pattern-mining sequence.
type Engine struct {
	entries   repository.ShadowEntryRepository
	drafts    repository.DraftRepository
	profiles  repository.CommunityProfileRepository
	blacklist *blacklist.Store
	now       func() time.Time
}

// New builds an audit Engine.
func New(entries repository.ShadowEntryRepository, drafts repository.DraftRepository, profiles repository.CommunityProfileRepository, bl *blacklist.Store) *Engine {
	return &Engine{entries: entries, drafts: drafts, profiles: profiles, blacklist: bl, now: time.Now}
}

// RunTick classifies every ShadowEntry whose audit boundary has passed
// (spec.md §4.12).
func (e *Engine) RunTick(ctx context.Context) error {
	due, err := e.entries.ListDueForAudit(ctx, e.now())
	if err != nil {
		return err
	}
	if len(due) > auditBatchLimit {
		due = due[:auditBatchLimit]
	}

	for _, entry := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.auditOne(ctx, entry)
	}
	return nil
}

func (e *Engine) auditOne(ctx context.Context, entry *models.ShadowEntry) {
	result := classify(entry)

	if result == models.AuditResultRejection {
		_ = e.minePatterns(ctx, entry, failureTypeFor(entry))
	}

	_ = e.entries.CompleteAudit(ctx, entry.ID, result, e.now())
}

// MineOnShadowban implements shadowmonitor.PatternMiner: invoked
// synchronously the instant an entry is classified Shadowbanned, ahead of
// its scheduled audit boundary (spec.md §4.11, §4.12).
func (e *Engine) MineOnShadowban(ctx context.Context, entry *models.ShadowEntry) error {
	return e.minePatterns(ctx, entry, models.FailureTypeShadowban)
}

// classify buckets an entry's final outcome per spec.md §4.12.
func classify(entry *models.ShadowEntry) models.AuditResult {
	if entry.Status == models.ShadowStatusRemoved || entry.Status == models.ShadowStatusShadowbanned {
		return models.AuditResultRejection
	}
	if entry.LastUpvoteRatio < rejectionUpvoteRatio {
		return models.AuditResultRejection
	}
	if entry.LastUpvoteRatio >= socialSuccessUpvoteRatio && entry.LastCommentCount >= socialSuccessMinComments {
		return models.AuditResultSocialSuccess
	}
	return models.AuditResultInertia
}

func failureTypeFor(entry *models.ShadowEntry) models.FailureType {
	switch entry.Status {
	case models.ShadowStatusRemoved:
		return models.FailureTypeAdminRemoval
	case models.ShadowStatusShadowbanned:
		return models.FailureTypeShadowban
	default:
		return models.FailureTypeSocialRejection
	}
}

// minePatterns extracts forbidden-pattern candidates from the entry's draft
// body via the same lexicon scan C4 runs, skips categories already counted in
// the subreddit profile's forbidden_patterns, and inserts each remaining
// candidate into the Blacklist Store (spec.md §4.12). The profile's
// style_guide text is not consulted.
func (e *Engine) minePatterns(ctx context.Context, entry *models.ShadowEntry, failureType models.FailureType) error {
	if entry.DraftID == "" {
		return nil
	}
	draft, err := e.drafts.GetByID(ctx, entry.DraftID)
	if err != nil || draft == nil {
		return err
	}

	hits := patternengine.MatchForbiddenCategories(draft.Title + "\n\n" + draft.Body)
	if len(hits) == 0 {
		return nil
	}

	known := map[string]bool{}
	if profile, err := e.profiles.GetBySubreddit(ctx, entry.CampaignID, entry.Subreddit); err == nil && profile != nil {
		for category := range profile.ForbiddenPatterns {
			known[category] = true
		}
	}

	for category, count := range hits {
		if count == 0 || known[string(category)] {
			continue
		}
		phrase := matchedPhrase(category, draft.Title+"\n\n"+draft.Body)
		if phrase == "" {
			continue
		}
		ft := failureType
		entryCopy := &models.BlacklistEntry{
			Subreddit:        entry.Subreddit,
			CampaignID:       entry.CampaignID,
			ForbiddenPattern: phrase,
			Category:         category,
			FailureType:      &ft,
			SourceShadowID:   entry.ID,
			Confidence:       systemDetectedConfidence,
			IsSystemDetected: true,
		}
		if err := e.blacklist.Insert(ctx, entryCopy); err != nil {
			return fmt.Errorf("mine pattern %q: %w", phrase, err)
		}
	}
	return nil
}

// matchedPhrase returns the first lexicon phrase for category actually
// present in text, so the mined BlacklistEntry names a concrete pattern
// rather than the abstract category.
func matchedPhrase(category models.ForbiddenCategory, text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range patternengine.ForbiddenLexiconPhrases(category) {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}

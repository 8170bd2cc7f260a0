// Package shadowmonitor implements the Shadow Monitor (C11): polls
// ShadowEntry rows due for a dual-perspective visibility check, advances
// their state machine, and alerts + mines patterns on a confirmed shadowban.
package shadowmonitor

import (
	"context"
	"sort"
	"time"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/external"
	"github.com/contentforge/conditioncore/pkg/models"
)

// tickBatchLimit bounds work per tick (spec.md §5: "work per tick is
// bounded"); anything still overdue is picked up oldest-first next tick.
const tickBatchLimit = 200

// PatternMiner is the narrow slice of the Audit Engine (C12) the monitor
// invokes synchronously the moment an entry is classified Shadowbanned
// (spec.md §4.11).
type PatternMiner interface {
	MineOnShadowban(ctx context.Context, entry *models.ShadowEntry) error
}

// AlertFunc emits a shadowban alert for an external collaborator to consume
// (spec.md §4.11).
type AlertFunc func(entry *models.ShadowEntry)

// Engine runs the C11 check loop.
type Engine struct {
	entries   repository.ShadowEntryRepository
	campaigns repository.CampaignRepository
	checker   external.VisibilityChecker
	miner     PatternMiner
	alert     AlertFunc
	now       func() time.Time
}

// New builds a shadow-monitor Engine.
func New(entries repository.ShadowEntryRepository, campaigns repository.CampaignRepository, checker external.VisibilityChecker, miner PatternMiner, alert AlertFunc) *Engine {
	return &Engine{
		entries:   entries,
		campaigns: campaigns,
		checker:   checker,
		miner:     miner,
		alert:     alert,
		now:       time.Now,
	}
}

// RunTick processes every ShadowEntry due for a check, oldest overdue first,
// bounded to tickBatchLimit entries (spec.md §4.11, §5).
func (e *Engine) RunTick(ctx context.Context) error {
	now := e.now()
	due, err := e.entries.ListDueForCheck(ctx, now)
	if err != nil {
		return err
	}

	sort.Slice(due, func(i, j int) bool { return due[i].LastCheckAt.Before(due[j].LastCheckAt) })
	if len(due) > tickBatchLimit {
		due = due[:tickBatchLimit]
	}

	for _, entry := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.checkOne(ctx, entry)
	}
	return nil
}

func (e *Engine) checkOne(ctx context.Context, entry *models.ShadowEntry) {
	campaign, err := e.campaigns.GetByID(ctx, entry.CampaignID)
	if err != nil || !campaign.IsActive() {
		return
	}

	result, err := e.checker.Check(ctx, entry.PostURL)
	if err != nil {
		return
	}

	now := e.now()

	switch {
	case result.VisibleAuthenticated && result.VisibleAnonymous:
		_ = e.entries.RecordCheck(ctx, entry.ID, 0, "visible", result.UpvoteRatio, result.CommentCount, now)

	case result.NotFoundAuthenticated:
		next := models.ShadowStatusNotFound
		if result.ModeratorRemoved {
			next = models.ShadowStatusRemoved
		}
		_ = e.entries.RecordCheck(ctx, entry.ID, 0, string(next), result.UpvoteRatio, result.CommentCount, now)
		_ = e.entries.Transition(ctx, entry.ID, next)

	case result.VisibleAuthenticated && !result.VisibleAnonymous:
		consecutive := entry.ConsecutiveHidden + 1
		_ = e.entries.RecordCheck(ctx, entry.ID, consecutive, "hidden_from_anon", result.UpvoteRatio, result.CommentCount, now)
		if consecutive >= models.ShadowConsecutiveForBan {
			_ = e.entries.Transition(ctx, entry.ID, models.ShadowStatusShadowbanned)
			banned := *entry
			banned.Status = models.ShadowStatusShadowbanned
			banned.ConsecutiveHidden = consecutive
			if e.alert != nil {
				e.alert(&banned)
			}
			if e.miner != nil {
				_ = e.miner.MineOnShadowban(ctx, &banned)
			}
		}

	default:
		// neither a clean dual-visible nor a clean 404/split; transient
		// ambiguity, no state change.
	}
}

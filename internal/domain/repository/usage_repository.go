package repository

import (
	"context"
	"time"

	"github.com/contentforge/conditioncore/pkg/models"
)

// UsageRepository defines persistence operations for the append-only
// inference cost ledger, and backs inference.UsageRecorder / PlanLookup.
type UsageRepository interface {
	Record(ctx context.Context, rec *models.UsageRecord) error
	SumCostSince(ctx context.Context, owner string, since time.Time) (float64, error)
}

// PlanRepository resolves an owner's current billing plan. Out of scope for
// billing enforcement itself (spec.md §1 Non-goals) — this only reads the cap
// that the Inference Client's budget check needs.
type PlanRepository interface {
	PlanFor(ctx context.Context, owner string) (*models.Plan, error)
}

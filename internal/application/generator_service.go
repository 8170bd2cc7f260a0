package application

import (
	"context"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/generator"
	"github.com/contentforge/conditioncore/internal/taskbus"
	"github.com/contentforge/conditioncore/pkg/models"
)

// GeneratorService implements generate_draft (spec.md §6, §4.8).
type GeneratorService struct {
	engine     *generator.Engine
	campaigns  repository.CampaignRepository
	bus        *taskbus.Bus
	dispatcher Dispatcher
}

// NewGeneratorService builds a GeneratorService.
func NewGeneratorService(engine *generator.Engine, campaigns repository.CampaignRepository, bus *taskbus.Bus, dispatcher Dispatcher) *GeneratorService {
	return &GeneratorService{engine: engine, campaigns: campaigns, bus: bus, dispatcher: dispatcher}
}

// GenerateDraft mints a task id, enqueues the C8 run, and returns immediately
// (spec.md §4.8: `generate(campaign_id, subreddit, requested_archetype,
// user_context?, account_status, progress_cb) → GeneratedDraft`). owner is
// looked up from the campaign rather than asked of the caller, since every
// campaign already carries exactly one owner.
func (s *GeneratorService) GenerateDraft(ctx context.Context, campaignID, subreddit string, requested models.Archetype, userContext string, accountStatus models.AccountStatus) (string, error) {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return "", err
	}

	taskID := taskbus.NewTaskID()
	s.bus.UpdateState(taskID, models.TaskSnapshot{State: models.TaskStatePending})

	s.dispatcher.Enqueue(func(workCtx context.Context) {
		progress := func(snap models.TaskSnapshot) { s.bus.UpdateState(taskID, snap) }

		draft, err := s.engine.Generate(workCtx, campaignID, campaign.Owner, subreddit, requested, userContext, accountStatus, progress)
		if err != nil {
			s.bus.UpdateState(taskID, models.TaskSnapshot{State: models.TaskStateFailure, Error: err.Error()})
			return
		}

		s.bus.UpdateState(taskID, models.TaskSnapshot{
			State: models.TaskStateSuccess,
			Result: map[string]any{
				"draft_id":             draft.ID,
				"vulnerability_score":  draft.VulnerabilityScore,
				"rhythm_match_score":   draft.RhythmMatchScore,
				"blacklist_violations": draft.BlacklistViolations,
			},
		})
	})

	return taskID, nil
}

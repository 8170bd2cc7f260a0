package application

import (
	"context"

	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/patternengine"
	"github.com/contentforge/conditioncore/internal/taskbus"
	"github.com/contentforge/conditioncore/pkg/models"
)

// AnalysisService implements start_analysis (spec.md §6).
type AnalysisService struct {
	engine     *patternengine.Engine
	profiles   repository.CommunityProfileRepository
	bus        *taskbus.Bus
	dispatcher Dispatcher
}

// NewAnalysisService builds an AnalysisService.
func NewAnalysisService(engine *patternengine.Engine, profiles repository.CommunityProfileRepository, bus *taskbus.Bus, dispatcher Dispatcher) *AnalysisService {
	return &AnalysisService{engine: engine, profiles: profiles, bus: bus, dispatcher: dispatcher}
}

// StartAnalysis mints a task id, enqueues the C4 run, and returns immediately
// (spec.md §6: `start_analysis(campaign_id, force=false) → task_id`).
func (s *AnalysisService) StartAnalysis(ctx context.Context, campaignID string, force bool) (string, error) {
	taskID := taskbus.NewTaskID()
	s.bus.UpdateState(taskID, models.TaskSnapshot{State: models.TaskStatePending})

	s.dispatcher.Enqueue(func(workCtx context.Context) {
		// The engine's own terminal snapshot is not forwarded; the single
		// terminal state is published below.
		progress := func(snap models.TaskSnapshot) {
			if !snap.State.Terminal() {
				s.bus.UpdateState(taskID, snap)
			}
		}

		result, err := s.engine.Analyze(workCtx, campaignID, force, progress)
		if err != nil {
			s.bus.UpdateState(taskID, models.TaskSnapshot{State: models.TaskStateFailure, Error: err.Error()})
			return
		}

		state, errMsg := models.TaskStateSuccess, ""
		if result.ProfilesCreated == 0 {
			if existing, lerr := s.profiles.ListByCampaign(workCtx, campaignID); lerr != nil || len(existing) == 0 {
				state, errMsg = models.TaskStateFailure, "no_profiles_created"
			}
		}

		s.bus.UpdateState(taskID, models.TaskSnapshot{
			State:    state,
			Error:    errMsg,
			Warnings: analysisWarningsToStrings(result.Warnings),
			Result:   map[string]any{"profiles_created": result.ProfilesCreated},
		})
	})

	return taskID, nil
}

// GetCommunityProfile is a plain read, never a recompute-on-read (spec.md §6,
// §9 Open Question: ISC is computed at analysis time and cached).
func (s *AnalysisService) GetCommunityProfile(ctx context.Context, campaignID, subreddit string) (*models.CommunityProfile, error) {
	return s.profiles.GetBySubreddit(ctx, campaignID, subreddit)
}

func analysisWarningsToStrings(warnings []patternengine.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Subreddit + ":" + w.Reason
	}
	return out
}

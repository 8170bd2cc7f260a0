package application

import (
	"context"

	"github.com/contentforge/conditioncore/internal/collection"
	"github.com/contentforge/conditioncore/internal/taskbus"
	"github.com/contentforge/conditioncore/pkg/models"
)

// CollectionService implements start_collection (spec.md §6).
type CollectionService struct {
	engine     *collection.Engine
	bus        *taskbus.Bus
	dispatcher Dispatcher
}

// NewCollectionService builds a CollectionService.
func NewCollectionService(engine *collection.Engine, bus *taskbus.Bus, dispatcher Dispatcher) *CollectionService {
	return &CollectionService{engine: engine, bus: bus, dispatcher: dispatcher}
}

// StartCollection mints a task id, enqueues the C3 run on the worker tier,
// and returns immediately (spec.md §6: `start_collection(campaign_id) → task_id`).
func (s *CollectionService) StartCollection(ctx context.Context, campaignID string) (string, error) {
	taskID := taskbus.NewTaskID()
	s.bus.UpdateState(taskID, models.TaskSnapshot{State: models.TaskStatePending})

	s.dispatcher.Enqueue(func(workCtx context.Context) {
		progress := func(snap models.TaskSnapshot) { s.bus.UpdateState(taskID, snap) }

		result, err := s.engine.RunCollection(workCtx, campaignID, progress)
		if err != nil {
			s.bus.UpdateState(taskID, models.TaskSnapshot{State: models.TaskStateFailure, Error: err.Error()})
			return
		}

		s.bus.UpdateState(taskID, models.TaskSnapshot{
			State:      models.TaskStateSuccess,
			Scraped:    result.Scraped,
			Filtered:   result.Filtered,
			Classified: result.Classified,
			Warnings:   subredditErrorsToWarnings(result.Errors),
			Result:     map[string]any{"status": string(result.Status)},
		})
	})

	return taskID, nil
}

func subredditErrorsToWarnings(errs []collection.SubredditError) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Subreddit + ": " + e.Message
	}
	return out
}

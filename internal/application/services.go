package application

import (
	"github.com/contentforge/conditioncore/internal/audit"
	"github.com/contentforge/conditioncore/internal/collection"
	"github.com/contentforge/conditioncore/internal/domain/repository"
	"github.com/contentforge/conditioncore/internal/generator"
	"github.com/contentforge/conditioncore/internal/patternengine"
	"github.com/contentforge/conditioncore/internal/shadowmonitor"
	"github.com/contentforge/conditioncore/internal/taskbus"
	"github.com/contentforge/conditioncore/pkg/models"
)

// Services bundles every request-handler-tier facade spec.md §6 names, plus
// the two cron-driven monitors that run independently of any direct caller.
type Services struct {
	Campaign  *CampaignService
	Collection *CollectionService
	Analysis  *AnalysisService
	Generator *GeneratorService
	Shadow    *ShadowService
	Bus       *taskbus.Bus

	Monitor *shadowmonitor.Engine
	Audit   *audit.Engine
}

// NewServices wires C1-C13 into the facade. Callers (cmd/server, cmd/worker)
// supply the already-constructed engines and repositories; this function
// only assembles the service layer on top of them.
func NewServices(
	campaigns repository.CampaignRepository,
	collectionEngine *collection.Engine,
	patternEngine *patternengine.Engine,
	profiles repository.CommunityProfileRepository,
	generatorEngine *generator.Engine,
	shadowEntries repository.ShadowEntryRepository,
	monitorEngine *shadowmonitor.Engine,
	auditEngine *audit.Engine,
	dispatcher Dispatcher,
) *Services {
	bus := taskbus.New()

	return &Services{
		Campaign:   NewCampaignService(campaigns),
		Collection: NewCollectionService(collectionEngine, bus, dispatcher),
		Analysis:   NewAnalysisService(patternEngine, profiles, bus, dispatcher),
		Generator:  NewGeneratorService(generatorEngine, campaigns, bus, dispatcher),
		Shadow:     NewShadowService(shadowEntries, profiles),
		Bus:        bus,
		Monitor:    monitorEngine,
		Audit:      auditEngine,
	}
}

// SubscribeTaskProgress implements spec.md §6's
// `subscribe_task_progress(task_id) → stream of state snapshots`: every
// Start* call above returns a task_id from this same Bus, so subscribing is
// a direct passthrough.
func (s *Services) SubscribeTaskProgress(taskID string) (<-chan models.TaskSnapshot, func()) {
	return s.Bus.Subscribe(taskID)
}

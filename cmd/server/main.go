// Content Conditioning Core server - request-handler tier.
package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/contentforge/conditioncore/internal/application"
	"github.com/contentforge/conditioncore/internal/audit"
	"github.com/contentforge/conditioncore/internal/blacklist"
	"github.com/contentforge/conditioncore/internal/collection"
	"github.com/contentforge/conditioncore/internal/config"
	"github.com/contentforge/conditioncore/internal/external"
	"github.com/contentforge/conditioncore/internal/gating"
	"github.com/contentforge/conditioncore/internal/generator"
	"github.com/contentforge/conditioncore/internal/inference"
	"github.com/contentforge/conditioncore/internal/infrastructure/cache"
	"github.com/contentforge/conditioncore/internal/infrastructure/logger"
	"github.com/contentforge/conditioncore/internal/infrastructure/storage"
	"github.com/contentforge/conditioncore/internal/patternengine"
	"github.com/contentforge/conditioncore/internal/shadowmonitor"
	"github.com/contentforge/conditioncore/pkg/models"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(cfg.Logging)
	logger.SetDefault(appLogger)

	appLogger.Info("starting content conditioning core server", "version", "1.0.0")

	// Initialize database
	dbConfig := &storage.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MinConnections,
		ConnMaxLifetime: cfg.Database.MaxConnLifetime,
		ConnMaxIdleTime: cfg.Database.MaxIdleTime,
		Debug:           cfg.Logging.Level == "debug",
	}

	db, err := storage.NewDB(dbConfig)
	if err != nil {
		appLogger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer storage.Close(db)

	appLogger.Info("database connected", "max_conns", cfg.Database.MaxConnections)

	// Initialize Redis cache (backs the collection-pipeline lock, C3)
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		appLogger.Error("failed to initialize Redis cache", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()
	appLogger.Info("redis cache connected")

	// Repositories (Persistence collaborator, spec.md §6)
	campaignRepo := storage.NewCampaignRepository(db)
	rawPostRepo := storage.NewRawPostRepository(db)
	profileRepo := storage.NewCommunityProfileRepository(db)
	draftRepo := storage.NewDraftRepository(db)
	shadowRepo := storage.NewShadowEntryRepository(db)
	blacklistRepo := storage.NewBlacklistRepository(db)
	usageRepo := storage.NewUsageRepository(db)
	planRepo := storage.NewPlanRepository(db)

	// Inference Client (C1): one provider per family, routed by the task's
	// configured model prefix.
	providers := map[string]inference.Provider{
		"openai":    inference.NewOpenAIProvider(cfg.Inference.OpenAIAPIKey, cfg.Inference.OpenAIBaseURL, cfg.Inference.CallTimeout),
		"anthropic": inference.NewAnthropicProvider(cfg.Inference.AnthropicAPIKey, cfg.Inference.AnthropicBaseURL, cfg.Inference.CallTimeout),
	}
	inferenceClient := inference.NewClient(cfg.Inference, providers, usageRepo, planRepo, costPerCall)

	// External boundary: Reddit scrape (feeds C3) + dual-perspective visibility (feeds C11).
	scraper := external.NewRedditScraper(cfg.Scheduler.ScrapeTimeout)
	visibilityChecker := external.NewRedditVisibilityChecker(cfg.Scheduler.HTTPCheckTimeout, nil)

	// Domain engines
	blacklistStore := blacklist.New(blacklistRepo)
	gatingPolicy := gating.NewPolicy()

	collectionEngine := collection.New(scraper, rawPostRepo, campaignRepo, inferenceClient, redisCache).
		WithRetryDelays(cfg.Scheduler.ScrapeRetryDelays, nil)
	patternEngine := patternengine.New(campaignRepo, rawPostRepo, profileRepo, inferenceClient)
	generatorEngine := generator.New(profileRepo, rawPostRepo, blacklistStore, gatingPolicy, inferenceClient, draftRepo)

	auditEngine := audit.New(shadowRepo, draftRepo, profileRepo, blacklistStore)
	monitorEngine := shadowmonitor.New(shadowRepo, campaignRepo, visibilityChecker, auditEngine, func(entry *models.ShadowEntry) {
		appLogger.Warn("shadowban detected", "shadow_entry_id", entry.ID, "post_url", entry.PostURL)
	})

	dispatcher := application.NewWorkerPool(cfg.Server.WorkerPoolSize, cfg.Server.WorkerPoolSize*4)
	defer dispatcher.Stop()

	services := application.NewServices(
		campaignRepo,
		collectionEngine,
		patternEngine,
		profileRepo,
		generatorEngine,
		shadowRepo,
		monitorEngine,
		auditEngine,
		dispatcher,
	)

	appLogger.Info("service facade ready",
		"campaigns", services.Campaign != nil,
		"collection", services.Collection != nil,
		"analysis", services.Analysis != nil,
		"generator", services.Generator != nil,
		"shadow", services.Shadow != nil,
	)

	// No HTTP transport is mounted here: cmd/server constructs the
	// request-handler tier and leaves wiring a router to future,
	// out-of-scope code (spec.md §6.1). It waits for a shutdown signal so
	// the process (and its deferred Close calls) behaves like a real
	// long-running service when run standalone.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	appLogger.Info("shutdown initiated", "signal", sig)
	appLogger.Info("server stopped")
}

// costPerCall is a conservative blended per-1k-token rate used for budget
// checks ahead of the real provider response (spec.md §4.1's can_proceed
// gate runs before token usage is known).
func costPerCall(model string, maxTokens int) float64 {
	perThousand := 0.01
	if strings.Contains(model, "opus") || strings.Contains(model, "gpt-4") {
		perThousand = 0.03
	}
	return perThousand * float64(maxTokens) / 1000
}

// Content Conditioning Core worker - cron-driven monitors (C11/C12) plus the
// in-process task queue backing the request-handler tier's long-running jobs
// (C3/C4/C8).
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
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.Logging)
	logger.SetDefault(appLogger)
	appLogger.Info("starting content conditioning core worker", "version", "1.0.0")

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

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		appLogger.Error("failed to initialize Redis cache", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	campaignRepo := storage.NewCampaignRepository(db)
	rawPostRepo := storage.NewRawPostRepository(db)
	profileRepo := storage.NewCommunityProfileRepository(db)
	draftRepo := storage.NewDraftRepository(db)
	shadowRepo := storage.NewShadowEntryRepository(db)
	blacklistRepo := storage.NewBlacklistRepository(db)
	usageRepo := storage.NewUsageRepository(db)
	planRepo := storage.NewPlanRepository(db)

	providers := map[string]inference.Provider{
		"openai":    inference.NewOpenAIProvider(cfg.Inference.OpenAIAPIKey, cfg.Inference.OpenAIBaseURL, cfg.Inference.CallTimeout),
		"anthropic": inference.NewAnthropicProvider(cfg.Inference.AnthropicAPIKey, cfg.Inference.AnthropicBaseURL, cfg.Inference.CallTimeout),
	}
	inferenceClient := inference.NewClient(cfg.Inference, providers, usageRepo, planRepo, costPerCall)

	scraper := external.NewRedditScraper(cfg.Scheduler.ScrapeTimeout)
	visibilityChecker := external.NewRedditVisibilityChecker(cfg.Scheduler.HTTPCheckTimeout, nil)

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
	appLogger.Info("service facade ready", "campaigns", services.Campaign != nil)

	// C11/C12 run off one shared cron instance (spec.md §5), the worker
	// tier's equivalent of the teacher's CronScheduler driving every
	// trigger off a single *cron.Cron.
	scheduler := shadowmonitor.NewScheduler(appLogger)
	if err := scheduler.Register("shadow-monitor", cfg.Scheduler.ShadowMonitorCron, monitorEngine); err != nil {
		appLogger.Error("failed to register shadow monitor tick", "error", err)
		os.Exit(1)
	}
	if err := scheduler.Register("audit-engine", cfg.Scheduler.AuditEngineCron, auditEngine); err != nil {
		appLogger.Error("failed to register audit engine tick", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	appLogger.Info("cron scheduler started",
		"shadow_monitor_cron", cfg.Scheduler.ShadowMonitorCron,
		"audit_engine_cron", cfg.Scheduler.AuditEngineCron,
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	appLogger.Info("shutdown initiated", "signal", sig)
	appLogger.Info("worker stopped")
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

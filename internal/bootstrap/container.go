package bootstrap

import (
	"log"
	"os"
	"path/filepath"

	"ai-caresupervisor-be/internal/config"
	"ai-caresupervisor-be/internal/controller"
	"ai-caresupervisor-be/internal/dto"
	"ai-caresupervisor-be/internal/pkg/logger"
	"ai-caresupervisor-be/internal/repository/contract"
	"ai-caresupervisor-be/internal/repository/memory"
	"ai-caresupervisor-be/internal/repository/redisrepo"
	"ai-caresupervisor-be/internal/service"
	"ai-caresupervisor-be/pkg/careplan"
	"ai-caresupervisor-be/pkg/database"
	"ai-caresupervisor-be/pkg/llm/factory"
	pktNats "ai-caresupervisor-be/pkg/nats"
	"ai-caresupervisor-be/pkg/redact"
	"ai-caresupervisor-be/pkg/registry"
	"ai-caresupervisor-be/pkg/scores"
	"ai-caresupervisor-be/pkg/sentinel"
	"ai-caresupervisor-be/pkg/supervisor/compose"
	"ai-caresupervisor-be/pkg/supervisor/concordance"
	"ai-caresupervisor-be/pkg/supervisor/pipeline"
	"ai-caresupervisor-be/pkg/supervisor/router"
	"ai-caresupervisor-be/pkg/supervisor/session"
	"ai-caresupervisor-be/pkg/toolselect"

	"ai-caresupervisor-be/internal/constant"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	SupervisorController controller.ISupervisorController

	// Background services (exposed for main.go to run)
	AlertConsumerService service.IAlertConsumerService

	Logger  logger.ILogger
	natsPub *pktNats.Publisher
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Capability registry: static, loaded once, read-only afterwards.
	reg, err := registry.Load(cfg.Supervisor.RegistryPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load capability registry: %v", err)
	}
	log.Printf("[INFO] Capability registry loaded (%d tools)", reg.Len())

	// LLM providers: primary and secondary must be independently configured
	// so dual validation really crosses vendors.
	primary, err := factory.NewProvider(
		cfg.Ai.PrimaryProvider, cfg.Ai.PrimaryModel,
		cfg.Ai.OllamaBaseURL, cfg.Ai.HuggingFaceKey, cfg.Ai.HuggingFaceBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize primary LLM provider: %v", err)
	}
	secondary, err := factory.NewProvider(
		cfg.Ai.SecondaryProvider, cfg.Ai.SecondaryModel,
		cfg.Ai.OllamaBaseURL, cfg.Ai.HuggingFaceKey, cfg.Ai.HuggingFaceBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize secondary LLM provider: %v", err)
	}
	log.Printf("[INFO] Using LLM providers: primary=%s (%s), secondary=%s (%s)",
		cfg.Ai.PrimaryProvider, cfg.Ai.PrimaryModel, cfg.Ai.SecondaryProvider, cfg.Ai.SecondaryModel)

	// Care plan directives: read-only Postgres lookup when configured.
	var directiveSource careplan.Source
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Fatalf("[FATAL] Unable to connect to care plan DB: %v", err)
		}
		directiveSource = careplan.NewGormSource(db)
		log.Printf("[INFO] Care plan directives: postgres")
	} else {
		directiveSource = careplan.NewStaticSource()
		log.Printf("[INFO] Care plan directives: static (no DB configured)")
	}

	// Session ledger backend, chosen by config.
	var sessionRepo contract.ISessionRepository
	if cfg.Supervisor.SessionStore == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Invalid REDIS_URL, falling back to defaults: %v", err)
			opt = &redis.Options{Addr: "localhost:6379"}
		}
		sessionRepo = redisrepo.NewSessionRepository(redis.NewClient(opt), cfg.Supervisor.SessionInactivityWindow)
		log.Printf("[INFO] Session ledger: redis")
	} else {
		sessionRepo = memory.NewSessionRepository(cfg.Supervisor.SessionInactivityWindow)
		log.Printf("[INFO] Session ledger: in-memory")
	}
	ledger := session.NewLedger(sessionRepo)

	// Event bus for fire-and-forget alerting.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS, alerts will be logged only: %v", err)
			natsPub = nil
		}
	}

	pipelineLogger := initPipelineLogger()

	checker := concordance.NewChecker(cfg.Supervisor.ConcordanceSimilarity)
	singlePipeline := pipeline.NewSinglePipeline(primary, cfg.Supervisor.ProviderTimeout, cfg.Supervisor.RetryBackoff, pipelineLogger)
	dualPipeline := pipeline.NewDualPipeline(primary, secondary, checker, cfg.Supervisor.ProviderTimeout,
		constant.ValidationCaveat, constant.SafeFallbackResponse, pipelineLogger)

	pipelineRouter := router.NewRouter(
		singlePipeline,
		dualPipeline,
		reg,
		directiveSource,
		constant.SupervisorSystemPrompt,
		cfg.Ai.PrimaryModel,
		cfg.Ai.SecondaryModel,
		pipelineLogger,
	)

	analyzer := scores.NewAnalyzer(primary, constant.SelfScoreAnalysisPrompt,
		cfg.Supervisor.ProviderTimeout, cfg.Supervisor.RetryBackoff, pipelineLogger)

	alertDispatcher := service.NewAlertDispatcher(pubSub, cfg.Supervisor.AlertTopic, sysLogger)

	supervisorService := service.NewSupervisorService(
		redact.New(),
		sentinel.NewClassifier(),
		toolselect.NewSelector(cfg.Supervisor.ToolMinOverlap),
		reg,
		pipelineRouter,
		compose.NewComposer(),
		ledger,
		alertDispatcher,
		analyzer,
		sysLogger,
		cfg.Supervisor.MaxQueryLength,
	)

	health := dto.HealthResponse{
		Status:            "ok",
		PrimaryProvider:   cfg.Ai.PrimaryProvider,
		SecondaryProvider: cfg.Ai.SecondaryProvider,
		SessionStore:      cfg.Supervisor.SessionStore,
		RegistrySize:      reg.Len(),
	}

	return &Container{
		SupervisorController: controller.NewSupervisorController(supervisorService, health),
		AlertConsumerService: service.NewAlertConsumerService(pubSub, cfg.Supervisor.AlertTopic, natsPub, sysLogger),
		Logger:               sysLogger,
		natsPub:              natsPub,
	}
}

// Close flushes logs and tears down outbound connections.
func (c *Container) Close() {
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	_ = c.Logger.Sync()
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "supervisor_pipeline.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[PIPELINE] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"docqa-be/internal/config"
	"docqa-be/internal/controller"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/pkg/mailer"
	"docqa-be/internal/pkg/payment"
	"docqa-be/internal/pkg/quota"
	"docqa-be/internal/repository/unitofwork"
	"docqa-be/internal/service"
	"docqa-be/pkg/chunking"
	"docqa-be/pkg/embedding"
	embeddingFactory "docqa-be/pkg/embedding/factory"
	"docqa-be/pkg/extract"
	"docqa-be/pkg/llm"
	llmFactory "docqa-be/pkg/llm/factory"
	pktNats "docqa-be/pkg/nats"
	"docqa-be/pkg/rag/engine"
	"docqa-be/pkg/rag/generator"
	"docqa-be/pkg/retry"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	QueryController    controller.IQueryController
	BillingController  controller.IBillingController

	// Background services, started by main
	DocumentService service.IDocumentService
	ConsumerService service.IConsumerService
	ReceiptService  service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	if cfg.App.JwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())
	ragLogger := logger.NewIsolatedLogger(cfg.App.TraceLogFilePath)

	var emailService mailer.IEmailService
	if cfg.SMTP.Enabled() {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			sysLogger,
		)
	} else {
		log.Printf("[INFO] SMTP not configured, charge receipts disabled")
	}

	// 2. In-process bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 3. Providers
	policy := retry.Policy{
		MaxAttempts:     cfg.Rag.MaxRetries,
		InitialInterval: cfg.Rag.RetryBackoff,
		MaxInterval:     retry.DefaultPolicy().MaxInterval,
		AttemptTimeout:  cfg.Rag.ProviderTimeout,
		Limiter:         retry.NewLimiter(cfg.Rag.ProviderRPS, 1),
	}

	baseEmbedder, err := embeddingFactory.NewEmbeddingProvider(embeddingFactory.Config{
		Provider:      cfg.Ai.EmbeddingProvider,
		Model:         cfg.Ai.EmbeddingModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		JinaAPIKey:    cfg.Keys.Jina,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	var embedder embedding.EmbeddingProvider = embedding.WithRetry(baseEmbedder, policy)
	if cfg.Rag.EmbeddingCacheTTL > 0 {
		embedder = embedding.NewCachedProvider(embedder, cfg.Rag.EmbeddingCacheTTL)
	}
	log.Printf("[INFO] Using Embedding Provider: %s", cfg.Ai.EmbeddingProvider)

	llmProvider, err := llmFactory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.LLMAPIKey(),
	)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	ragEngine := engine.New(
		extract.NewExtractor(),
		chunking.New(cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap),
		embedder,
		generator.NewLLMGenerator(llm.WithRetry(llmProvider, policy), llm.WithTemperature(llm.DefaultTemperature)),
		engine.Config{TopK: cfg.Rag.TopK, ContextBudget: cfg.Rag.ContextBudget},
		ragLogger,
	)

	// 4. Infrastructure
	c := &Container{Logger: sysLogger}

	var eventPublisher service.EventPublisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}

	var natsSub *pktNats.Subscriber
	if eventPublisher != nil && emailService != nil {
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Rag.SnapshotTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Rag.SnapshotTopic, uowFactory, ragEngine, sysLogger)

	c.DocumentService = service.NewDocumentService(
		ragEngine,
		uowFactory,
		publisherService,
		eventPublisher,
		cfg.App.UploadFolder,
		cfg.App.MaxFileSize,
		sysLogger,
	)

	inlineMailer := emailService
	if natsSub != nil {
		c.ReceiptService = service.NewReceiptService(natsSub, uowFactory, emailService, sysLogger)
		inlineMailer = nil
	}

	billingService := service.NewBillingService(
		uowFactory,
		payment.NewMidtransGateway(cfg.Billing.MidtransServerKey, cfg.Billing.MidtransIsProduction),
		quota.NewRedisCounter(rdb, cfg.Billing.DailyQuota),
		eventPublisher,
		inlineMailer,
		service.BillingConfig{
			JwtSecret:          cfg.App.JwtSecret,
			TokenTTL:           cfg.App.TokenTTL,
			PricePerCharge:     cfg.Billing.PricePerCharge,
			Currency:           cfg.Billing.Currency,
			QuestionsPerCharge: cfg.Billing.QuestionsPerCharge,
			FinishURL:          cfg.Billing.FinishURL,
		},
		sysLogger,
	)
	queryService := service.NewQueryService(ragEngine, billingService, sysLogger)

	// 6. Controllers
	c.DocumentController = controller.NewDocumentController(c.DocumentService)
	c.QueryController = controller.NewQueryController(queryService, cfg.App.JwtSecret)
	c.BillingController = controller.NewBillingController(billingService, cfg.App.JwtSecret)

	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	c.closers = append(c.closers, func() { _ = ragLogger.Sync(); _ = sysLogger.Sync() })

	return c, nil
}

// Close releases broker and cache connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

package main

import (
	"context"

	"mais/internal/bookings/events"
	"mais/internal/bookings/guard"
	"mais/internal/bookings/handler"
	"mais/internal/bookings/repository"
	"mais/internal/bookings/service"
	"mais/internal/bookings/validator"
	"mais/pkg/app"
	"mais/pkg/cache"
	"mais/pkg/client"
	"mais/pkg/config"
	"mais/pkg/kafka"
	kafka_config "mais/pkg/kafka/config"
	kafka_middleware "mais/pkg/kafka/middleware"
	"mais/pkg/model"
	"mais/pkg/sealer"

	"github.com/google/uuid"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Bookings service")

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer := initProducer(cfg, kafkaCfg)
	defer producer.Close()

	availabilityCache := cache.New(cfg.AvailabilityCacheTTL)
	defer availabilityCache.Stop()

	bookingService := initServices(cfg, producer, availabilityCache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startCacheInvalidator(ctx, cfg, kafkaCfg, availabilityCache)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.SetWebhook(handler.NewPaymentWebhookHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, producer *kafka.Producer, availabilityCache *cache.Cache) service.BookingService {
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingGuard := guard.New(bookingRepo, cfg.Log)
	bookingValidator := validator.NewBookingValidator(cfg.BookingHorizonDays, cfg.Log)
	tenantDirectory := client.NewTenantClient(cfg.TenantServiceURL)

	manageSealer := initSealer(cfg)

	bookingService := service.NewBookingService(
		bookingRepo,
		bookingGuard,
		bookingValidator,
		tenantDirectory,
		manageSealer,
		availabilityCache,
		producer,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

func initSealer(cfg *config.Config) *sealer.Sealer {
	if cfg.ManageTokenKey == "" {
		cfg.Log.Warn("MANAGE_TOKEN_KEY not set; manage tokens disabled")
		return nil
	}

	s, err := sealer.New(cfg.ManageTokenKey)
	if err != nil {
		cfg.Log.Fatal("Invalid manage token key", "error", err)
	}
	return s
}

func initProducer(cfg *config.Config, kafkaCfg *kafka_config.Config) *kafka.Producer {
	producer, err := kafka.NewProducer(kafkaCfg, model.TopicBookingEvents, model.TopicBookingEventsDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware())
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}

	return producer
}

// startCacheInvalidator consumes booking events committed by other
// instances and evicts the tenant's cached availability. The group ID is
// unique per instance so every instance sees every event.
func startCacheInvalidator(ctx context.Context, cfg *config.Config, kafkaCfg *kafka_config.Config, availabilityCache *cache.Cache) {
	groupID := "bookings-cache-" + uuid.NewString()
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		model.TopicBookingEvents,
		groupID,
		"",
		events.NewCacheInvalidator(availabilityCache, cfg.Log),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create cache invalidation consumer", "error", err)
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			cfg.Log.Error("Cache invalidation consumer stopped", "error", err)
		}
	}()

	cfg.Log.Info("Cache invalidation consumer started", "group_id", groupID)
}

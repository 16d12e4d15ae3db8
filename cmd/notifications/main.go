package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mais/internal/notifications"
	"mais/pkg/config"
	"mais/pkg/kafka"
	kafka_config "mais/pkg/kafka/config"
	kafka_middleware "mais/pkg/kafka/middleware"
	"mais/pkg/logger"
	"mais/pkg/model"
)

const (
	ServiceName   = "notifications"
	consumerGroup = "notifications-worker"
)

func main() {
	log := logger.New(logger.Config{
		Level:     config.DefaultLogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   ServiceName,
	})

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(log.Info)

	worker := notifications.NewWorker(notifications.NewLogNotifier(log), log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		model.TopicBookingEvents,
		consumerGroup,
		model.TopicBookingEventsDLQ,
		worker.Handler(),
	)
	if err != nil {
		log.Fatal("Failed to create notifications consumer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware())
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	log.Info("Notifications worker started",
		"topic", model.TopicBookingEvents,
		"group_id", consumerGroup,
	)

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		log.Error("Notifications consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	log.Info("Notifications worker stopped")
}

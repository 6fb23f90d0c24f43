package main

import (
	"context"

	bookingscache "stayhub/internal/bookings/cache"
	"stayhub/internal/bookings/events"
	"stayhub/internal/bookings/handler"
	"stayhub/internal/bookings/repository"
	"stayhub/internal/bookings/service"
	"stayhub/internal/bookings/validator"
	"stayhub/pkg/admission"
	"stayhub/pkg/app"
	"stayhub/pkg/config"
	"stayhub/pkg/kafka"
	kafka_config "stayhub/pkg/kafka/config"
	"stayhub/pkg/metrics"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	registry := metrics.NewRegistry()
	caches := bookingscache.New(cfg, registry)

	controller := admission.New(admission.Config{
		QueueCapacity: cfg.AdmissionQueueCapacity,
		QueueWait:     cfg.AdmissionQueueWait,
		Permits:       int64(cfg.AdmissionPermits),
		PermitWait:    cfg.AdmissionPermitWait,
		Workers:       cfg.AdmissionWorkers,
	}, cfg.Log, registry)
	controller.Start()

	publisher, producer, consumer := initEvents(cfg, caches)

	bookingService := initServices(cfg, caches, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, controller, cfg.Log),
		handler.NewMetricsHandler(registry, cfg.Log),
	)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	if consumer != nil {
		go func() {
			if err := consumer.Start(consumerCtx); err != nil && consumerCtx.Err() == nil {
				cfg.Log.Error("Cache invalidation consumer stopped", "error", err)
			}
		}()
	}

	serverApp.OnShutdown(func() {
		controller.Stop()
		caches.Stop()
		stopConsumer()
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				cfg.Log.Warn("Failed to close Kafka consumer", "error", err)
			}
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				cfg.Log.Warn("Failed to close Kafka producer", "error", err)
			}
		}
		cfg.GracefulShutdown()
	})

	serverApp.Run()
}

func initServices(cfg *config.Config, caches *bookingscache.Caches, publisher events.Publisher) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewMongoRoomLockRepository(cfg)
	catalogRepo := repository.NewMongoCatalogRepository(cfg)
	resolver := service.NewAvailabilityResolver(bookingRepo, caches)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		catalogRepo,
		resolver,
		caches,
		bookingValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// initEvents wires the Kafka publisher and the peer cache-invalidation
// consumer. Each instance consumes with its own group so every peer sees
// every event.
func initEvents(cfg *config.Config, caches *bookingscache.Caches) (events.Publisher, *kafka.Producer, *kafka.Consumer) {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NoopPublisher{}, nil, nil
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	invalidator := events.NewInvalidator(caches, cfg.InstanceID, cfg.Log)
	groupID := ServiceName + "-cache-invalidation-" + cfg.InstanceID
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.EventsTopic, groupID, invalidator.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	cfg.Log.Info("Booking events enabled",
		"topic", cfg.EventsTopic,
		"consumer_group", groupID,
	)
	return events.NewKafkaPublisher(producer, ServiceName), producer, consumer
}

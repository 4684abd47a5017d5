package main

import (
	"github.com/ekpono/booking-platform/internal/bookings/events"
	bookinghandler "github.com/ekpono/booking-platform/internal/bookings/handler"
	bookingrepo "github.com/ekpono/booking-platform/internal/bookings/repository"
	bookingservice "github.com/ekpono/booking-platform/internal/bookings/service"
	bookingvalidator "github.com/ekpono/booking-platform/internal/bookings/validator"
	clienthandler "github.com/ekpono/booking-platform/internal/clients/handler"
	clientrepo "github.com/ekpono/booking-platform/internal/clients/repository"
	clientservice "github.com/ekpono/booking-platform/internal/clients/service"
	clientvalidator "github.com/ekpono/booking-platform/internal/clients/validator"
	"github.com/ekpono/booking-platform/pkg/app"
	"github.com/ekpono/booking-platform/pkg/config"
	kafka_config "github.com/ekpono/booking-platform/pkg/kafka/config"
)

const ServiceName = "booking-platform"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting booking platform")

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		initBookings(cfg, publisher),
		initClients(cfg),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg := kafka_config.Load()
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Event publishing disabled")
		return events.NoopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka publisher", "error", err)
	}
	cfg.Log.Info("Event publishing enabled", "topic", kafkaCfg.Topic, "brokers", kafkaCfg.Brokers)
	return publisher
}

func initBookings(cfg *config.Config, publisher events.Publisher) *bookinghandler.BookingHandler {
	bookingService := bookingservice.NewBookingService(
		bookingrepo.NewMongoBookingRepository(cfg),
		bookingrepo.NewBookingLockRepository(cfg),
		bookingvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookinghandler.NewBookingHandler(bookingService, cfg.Log)
}

func initClients(cfg *config.Config) *clienthandler.ClientHandler {
	clientService := clientservice.NewClientService(
		clientrepo.NewMongoClientRepository(cfg),
		clientvalidator.NewClientValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Client service initialized", "database", cfg.MongoDatabaseName)
	return clienthandler.NewClientHandler(clientService, cfg.Log)
}

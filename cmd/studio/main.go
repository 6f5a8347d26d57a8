package main

import (
	"context"

	bookinghandler "fitstudio/internal/bookings/handler"
	bookingservice "fitstudio/internal/bookings/service"
	bookingvalidator "fitstudio/internal/bookings/validator"
	classhandler "fitstudio/internal/classes/handler"
	classservice "fitstudio/internal/classes/service"
	classvalidator "fitstudio/internal/classes/validator"
	"fitstudio/internal/events"
	"fitstudio/internal/storage"
	"fitstudio/pkg/app"
	"fitstudio/pkg/config"
	"fitstudio/pkg/kafka"
	"fitstudio/pkg/tracing"
)

const ServiceName = "studio"

type services struct {
	classes  classservice.ClassService
	bookings bookingservice.BookingService
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.Connect()

	cfg.Log.Info("Starting studio service", "store_driver", cfg.StoreDriver)

	shutdownTracing, err := tracing.Init(context.Background(), ServiceName, cfg.OTLPEndpoint, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize tracing", "error", err)
	}

	stores, err := storage.Open(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open store", "error", err)
	}

	publisher := initPublisher(cfg)
	svc := initServices(cfg, stores, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(stores.Pinger,
		classhandler.NewClassHandler(svc.classes, cfg.Log),
		bookinghandler.NewBookingHandler(svc.bookings, cfg.Log),
	)
	serverApp.AddWorker(app.Worker{
		Name:     "class-status-refresh",
		Interval: cfg.StatusRefreshInterval,
		Run: func(ctx context.Context) error {
			_, err := svc.classes.RefreshStatuses(ctx)
			return err
		},
	})
	serverApp.OnShutdown(func() error {
		cfg.GracefulShutdown()
		return nil
	})
	serverApp.OnShutdown(publisher.Close)
	serverApp.OnShutdown(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return shutdownTracing(ctx)
	})
	serverApp.Run()
}

// initPublisher fans events out to every configured broker, off the request path.
func initPublisher(cfg *config.Config) events.Publisher {
	var publishers events.Fanout

	if len(cfg.KafkaBrokers) > 0 {
		kafkaCfg, err := kafka.LoadConfig(cfg.KafkaBrokers)
		if err != nil {
			cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
		}
		publisher, err := events.NewKafkaPublisher(kafkaCfg, cfg.BookingEventTopic, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka publisher", "error", err)
		}
		cfg.Log.Info("Kafka publisher initialized", "topic", cfg.BookingEventTopic)
		publishers = append(publishers, publisher)
	}

	if cfg.AMQPURL != "" {
		publisher, err := events.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to create RabbitMQ publisher", "error", err)
		}
		cfg.Log.Info("RabbitMQ publisher initialized", "exchange", cfg.AMQPExchange)
		publishers = append(publishers, publisher)
	}

	switch len(publishers) {
	case 0:
		cfg.Log.Info("No event brokers configured, studio events are disabled")
		return events.NopPublisher{}
	case 1:
		return events.NewAsync(publishers[0], events.DefaultAsyncBuffer, cfg.Log)
	}
	return events.NewAsync(publishers, events.DefaultAsyncBuffer, cfg.Log)
}

func initServices(cfg *config.Config, stores *storage.Stores, publisher events.Publisher) services {
	classService := classservice.NewClassService(
		stores.Classes,
		stores.Tx,
		classvalidator.NewClassValidator(cfg.Studio),
		publisher,
		cfg,
	)
	bookingService := bookingservice.NewBookingService(
		stores.Bookings,
		stores.Classes,
		stores.Tx,
		bookingvalidator.NewBookingValidator(cfg.Studio),
		publisher,
		cfg,
	)

	cfg.Log.Info("Studio services initialized", "store_driver", cfg.StoreDriver)
	return services{classes: classService, bookings: bookingService}
}

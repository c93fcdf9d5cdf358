package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/shrutiikadam/UrbanDepot1/internal/application"
	"github.com/shrutiikadam/UrbanDepot1/internal/config"
	bookingDomain "github.com/shrutiikadam/UrbanDepot1/internal/domain/booking"
	"github.com/shrutiikadam/UrbanDepot1/internal/events"
	"github.com/shrutiikadam/UrbanDepot1/internal/logger"
	"github.com/shrutiikadam/UrbanDepot1/internal/provider"
	"github.com/shrutiikadam/UrbanDepot1/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "parkfinder")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting parkfinder",
		zap.String("provider", cfg.Provider.Name),
		zap.Bool("catalog_enabled", cfg.CatalogEnabled),
		zap.Bool("kafka_enabled", cfg.KafkaConfig.Enabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Geospatial provider
	adapter := buildAdapter(cfg, log)

	// Reservation handoff
	var navigator bookingDomain.Navigator = application.NewLogNavigator(log)
	if cfg.KafkaConfig.Enabled() {
		producer := events.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		navigator = events.NewHandoffPublisher(producer, cfg.KafkaConfig.HandoffTopic, log)

		// Delivery audit: confirms each handoff reached the reservation topic.
		audit := events.NewHandoffConsumer(
			cfg.KafkaConfig.Brokers,
			cfg.KafkaConfig.GroupPrefix+"parkfinder-audit",
			cfg.KafkaConfig.HandoffTopic,
			func(_ context.Context, handoffID string, d bookingDomain.ReservationDraft) error {
				log.Info("reservation handoff delivered",
					zap.String("handoff_id", handoffID),
					zap.String("place", d.PlaceName),
				)
				return nil
			},
			log.Named("handoff-audit"),
		)
		defer func() { _ = audit.Close() }()
		go func() {
			if err := audit.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error("handoff audit consumer stopped", zap.Error(err))
			}
		}()
	}

	out := &lockedWriter{w: os.Stdout}
	sess := application.NewMapSession(adapter, newConsoleView(out), log)
	defer sess.Close()

	a := &app{
		session: sess,
		handoff: application.NewHandoffService(navigator, log),
		fares:   application.NewFareService(bookingDomain.NewParkingPricingStrategy(nil), log),
		out:     out,
		logger:  log,
	}

	// Catalog
	if cfg.CatalogEnabled {
		db, err := repository.Connect(cfg.DBConfig, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if cfg.IsDevelopment() {
			if err := repository.Migrate(db); err != nil {
				log.Fatal("failed to run auto-migration", zap.Error(err))
			}
			log.Info("database migration completed (dev auto-migrate)")
		}
		a.catalog = repository.NewGormPlaceRepository(db)
	}

	if err := a.start(ctx); err != nil {
		log.Fatal("failed to start map session", zap.Error(err))
	}

	if err := a.run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Error("input feed error", zap.Error(err))
	}

	log.Info("parkfinder stopped")
}

// buildAdapter assembles the provider capability set from configuration.
// A provider that cannot be initialized degrades to one that reports
// ErrProviderUnavailable so the session stays usable.
func buildAdapter(cfg *config.ServiceConfig, log *zap.Logger) provider.Adapter {
	locator := provider.NewStaticLocator(cfg.UserLocation)
	google, googleErr := provider.NewGoogleClient(cfg.Provider.GoogleAPIKey, log.Named("google"))

	var adapter provider.Adapter
	switch cfg.Provider.Name {
	case config.ProviderNominatim:
		nominatim := provider.NewNominatimClient(cfg.Provider.NominatimURL, cfg.Provider.NominatimRPS, log.Named("nominatim"))
		var router provider.Router = nominatim
		if googleErr == nil {
			router = google
		}
		adapter = provider.Compose(
			nominatim,
			provider.NewCachedGeocoder(nominatim, cfg.Provider.GeocodeCacheTTL),
			router,
			locator,
		)
	default:
		if googleErr != nil {
			log.Error("google maps client unavailable", zap.Error(googleErr))
			adapter = provider.Unavailable(googleErr, locator)
			break
		}
		adapter = provider.Compose(
			google,
			provider.NewCachedGeocoder(google, cfg.Provider.GeocodeCacheTTL),
			google,
			locator,
		)
	}
	return provider.WithTimeout(adapter, cfg.Provider.Timeout)
}

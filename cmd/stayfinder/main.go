package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stayfinder/internal/app/events"
	authsvc "stayfinder/internal/app/services/auth"
	bookingsvc "stayfinder/internal/app/services/bookings"
	listingsvc "stayfinder/internal/app/services/listings"
	reviewsvc "stayfinder/internal/app/services/reviews"
	domainauth "stayfinder/internal/domain/auth"
	domainbooking "stayfinder/internal/domain/booking"
	domainlistings "stayfinder/internal/domain/listings"
	domainreviews "stayfinder/internal/domain/reviews"
	domainuser "stayfinder/internal/domain/user"
	"stayfinder/internal/infra/broker/kafka"
	"stayfinder/internal/infra/config"
	"stayfinder/internal/infra/db/mongo"
	ginserver "stayfinder/internal/infra/http/gin"
	"stayfinder/internal/infra/obs"
	"stayfinder/internal/infra/security"
	"stayfinder/internal/infra/storage/memory"
	"stayfinder/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	stores, readyCheck, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}

	publisher, closePublisher := buildPublisher(cfg, logger)
	defer closePublisher()

	uploader := buildUploader(cfg, logger)

	authService := &authsvc.Service{
		Users:      stores.users,
		Sessions:   stores.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	bookingService := bookingsvc.NewService(stores.bookings, stores.listings, stores.users, publisher, logger)
	listingService := &listingsvc.Service{
		Listings: stores.listings,
		Bookings: stores.bookings,
		Photos:   uploader,
		Logger:   logger,
	}
	reviewService := &reviewsvc.Service{
		Reviews:  stores.reviews,
		Bookings: stores.bookings,
		Listings: stores.listings,
		Events:   publisher,
		Logger:   logger,
	}

	handlers := ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
		Listing:        ginserver.ListingHandler{Service: listingService, Logger: logger},
		Booking:        ginserver.BookingHandler{Service: bookingService, Logger: logger},
		Review:         ginserver.ReviewHandler{Service: reviewService, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{ReadyCheck: readyCheck}, handlers)

	if cfg.ListingFixtures != "" {
		if err := loadListingFixtures(ctx, cfg.ListingFixtures, stores.listings, logger); err != nil {
			logger.Warn("listing fixtures load failed", "error", err, "path", cfg.ListingFixtures)
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type stores struct {
	users    domainuser.Repository
	sessions domainauth.SessionStore
	listings domainlistings.Repository
	bookings domainbooking.Repository
	reviews  domainreviews.Repository
}

// buildStores wires mongo when MONGO_URI is set and falls back to in-memory
// storage otherwise.
func buildStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (stores, func(context.Context) error, error) {
	if cfg.MongoURI == "" {
		logger.Info("MONGO_URI not set, using in-memory storage")
		return stores{
			users:    memory.NewUserRepository(),
			sessions: memory.NewSessionStore(),
			listings: memory.NewListingRepository(),
			bookings: memory.NewBookingRepository(),
			reviews:  memory.NewReviewRepository(),
		}, nil, nil
	}

	client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return stores{}, nil, err
	}
	indexCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := client.EnsureIndexes(indexCtx); err != nil {
		return stores{}, nil, err
	}
	logger.Info("mongo connected", "database", cfg.MongoDB)
	return stores{
		users:    mongo.NewUserRepository(client.DB),
		sessions: mongo.NewSessionStore(client.DB),
		listings: mongo.NewListingRepository(client.DB),
		bookings: mongo.NewBookingRepository(client.DB),
		reviews:  mongo.NewReviewRepository(client.DB),
	}, client.Ping, nil
}

func buildPublisher(cfg config.Config, logger *slog.Logger) (events.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, event publication disabled")
		return events.NopPublisher{}, func() {}
	}
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix, nil)
	if err != nil {
		logger.Warn("kafka unavailable, event publication disabled", "error", err)
		return events.NopPublisher{}, func() {}
	}
	logger.Info("kafka producer ready", "brokers", cfg.KafkaBrokers)
	return producer, func() {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka close failed", "error", err)
		}
	}
}

func buildUploader(cfg config.Config, logger *slog.Logger) listingsvc.Uploader {
	if cfg.S3Endpoint == "" {
		logger.Info("S3_ENDPOINT not set, photo uploads disabled")
		return s3.NoopUploader{}
	}
	client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("s3 unavailable, photo uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

// loadListingFixtures seeds demo hosts and listings from a JSON file. Invalid
// entries are skipped with a log line rather than aborting startup.
func loadListingFixtures(ctx context.Context, path string, listingRepo domainlistings.Repository, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		listing, err := domainlistings.New(domainlistings.CreateParams{
			ID:           domainlistings.ListingID(fx.ID),
			Host:         domainuser.ID(fx.HostID),
			Title:        fx.Title,
			Description:  fx.Description,
			PropertyType: domainlistings.PropertyType(fx.PropertyType),
			Location: domainlistings.Location{
				Address: fx.Location.Address,
				City:    fx.Location.City,
				State:   fx.Location.State,
				Country: fx.Location.Country,
				ZipCode: fx.Location.ZipCode,
				Lat:     fx.Location.Lat,
				Lon:     fx.Location.Lon,
			},
			NightlyPrice: fx.NightlyPrice,
			Currency:     fx.Currency,
			Capacity: domainlistings.Capacity{
				Guests:    fx.Guests,
				Bedrooms:  fx.Bedrooms,
				Bathrooms: fx.Bathrooms,
				Beds:      fx.Beds,
			},
			Amenities: fx.Amenities,
			Now:       now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := listing.Activate(now); err != nil {
			logger.Error("fixture activation failed", "listing_id", fx.ID, "error", err)
			continue
		}
		listing.Featured = fx.Featured
		for _, url := range fx.Images {
			listing.AddImage(domainlistings.Image{URL: url}, now)
		}
		if err := listingRepo.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

type listingFixture struct {
	ID           string          `json:"id"`
	HostID       string          `json:"host_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	PropertyType string          `json:"property_type"`
	Location     fixtureLocation `json:"location"`
	NightlyPrice int64           `json:"nightly_price"`
	Currency     string          `json:"currency"`
	Guests       int             `json:"guests"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	Beds         int             `json:"beds"`
	Amenities    []string        `json:"amenities"`
	Images       []string        `json:"images"`
	Featured     bool            `json:"featured"`
}

type fixtureLocation struct {
	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	ZipCode string  `json:"zip_code"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

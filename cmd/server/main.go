package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avaluos-co/service-quote/internal/application"
	"github.com/avaluos-co/service-quote/internal/catalogdata"
	"github.com/avaluos-co/service-quote/internal/common/auth"
	"github.com/avaluos-co/service-quote/internal/common/database"
	"github.com/avaluos-co/service-quote/internal/common/health"
	"github.com/avaluos-co/service-quote/internal/common/kafka"
	"github.com/avaluos-co/service-quote/internal/common/logger"
	"github.com/avaluos-co/service-quote/internal/common/middleware"
	"github.com/avaluos-co/service-quote/internal/config"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	quoteEvents "github.com/avaluos-co/service-quote/internal/events"
	"github.com/avaluos-co/service-quote/internal/geocoding"
	"github.com/avaluos-co/service-quote/internal/handler"
	"github.com/avaluos-co/service-quote/internal/live"
	"github.com/avaluos-co/service-quote/internal/repository"
	"github.com/avaluos-co/service-quote/internal/routing"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "service-quote"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-quote",
		zap.String("port", cfg.Port),
		zap.String("routing_provider", cfg.Routing.Provider),
		zap.String("route_dispatch", cfg.Routing.Dispatch),
		zap.String("session_store", cfg.Session.Store),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.QuoteModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Connect to Redis. Only the redis session store requires it; the route
	// cache is skipped when Redis is down.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL, log)
		if err != nil {
			if cfg.Session.Store == "redis" {
				log.Fatal("failed to connect to Redis", zap.Error(err))
			}
			log.Warn("redis unavailable, route cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	quoteRepo := repository.NewGormQuoteRepository(db)
	var sessionRepo quoteDomain.SessionRepository
	if cfg.Session.Store == "redis" {
		sessionRepo = repository.NewRedisSessionRepository(redisClient, cfg.Session.TTL)
	} else {
		sessionRepo = repository.NewMemorySessionRepository(cfg.Session.TTL)
	}

	// Initialize routing and geocoding
	routeProvider, err := newRouteProvider(cfg.Routing, redisClient, log)
	if err != nil {
		log.Fatal("failed to create routing provider", zap.Error(err))
	}
	geocoder, err := newGeocoder(cfg, log)
	if err != nil {
		log.Fatal("failed to create geocoder", zap.Error(err))
	}

	office := quoteDomain.Location{Lat: cfg.Routing.OfficeLat, Lng: cfg.Routing.OfficeLng}
	if err := office.Validate(); err != nil {
		log.Fatal("invalid office location", zap.Error(err))
	}

	// Initialize application services
	pricingStrategy := quoteDomain.NewStandardPricingStrategy()
	fetcher := application.NewRouteFetcher(routeProvider, sessionRepo, office, log)

	var dispatcher application.RouteDispatcher
	if cfg.Routing.Dispatch == "kafka" {
		dispatcher = application.NewKafkaDispatcher(kafkaProducer, log)

		// Route worker consuming location picks
		groupID := cfg.KafkaConfig.GroupPrefix + cfg.Routing.ConsumerGroup
		locationConsumer := quoteEvents.NewLocationEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			fetcher,
			log,
		)
		defer func() { _ = locationConsumer.Close() }()

		go func() {
			log.Info("starting location event consumer", zap.String("group_id", groupID))
			if err := locationConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("location event consumer error", zap.Error(err))
			}
		}()
	} else {
		dispatcher = application.NewInlineDispatcher(fetcher)
	}

	quoteService := application.NewQuoteService(
		sessionRepo,
		quoteRepo,
		pricingStrategy,
		kafkaProducer,
		log,
	)
	pickerService := application.NewPickerService(
		sessionRepo,
		pricingStrategy,
		dispatcher,
		fetcher,
		geocoder,
		application.MapSettings{
			Office:          office,
			OfficeLabel:     cfg.Routing.OfficeLabel,
			TileURL:         cfg.Map.TileURL,
			Attribution:     cfg.Map.Attribution,
			Zoom:            cfg.Map.Zoom,
			GeocoderCountry: cfg.Geocoder.CountryCodes,
			MaxRadiusKm:     cfg.Routing.MaxRadiusKm,
		},
		log,
	)

	services, err := catalogdata.Load()
	if err != nil {
		log.Fatal("failed to load service catalog", zap.Error(err))
	}
	catalogService := application.NewCatalogService(services)
	liveServer := live.NewServer(catalogService, cfg.SearchDebounce, log)

	// Initialize HTTP handlers
	quoteHandler := handler.NewQuoteHandler(quoteService)
	mapHandler := handler.NewMapHandler(pickerService)
	catalogHandler := handler.NewCatalogHandler(catalogService, liveServer)
	adminHandler := handler.NewAdminQuoteHandler(quoteService)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	checks := []health.Check{health.GormCheck(db)}
	if redisClient != nil {
		checks = append(checks, health.RedisCheck(redisClient))
	}
	health.NewHandler(serviceName, checks...).RegisterRoutes(router)

	// Register routes
	quoteHandler.RegisterRoutes(&router.RouterGroup)
	mapHandler.RegisterRoutes(&router.RouterGroup)
	catalogHandler.RegisterRoutes(&router.RouterGroup)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server. WriteTimeout must cover an inline route fetch.
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Routing.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-quote...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-quote stopped")
}

func newRouteProvider(cfg config.RoutingConfig, redisClient *redis.Client, log *zap.Logger) (routing.Provider, error) {
	var provider routing.Provider
	switch cfg.Provider {
	case "google":
		p, err := routing.NewGoogleProvider(cfg.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		provider = routing.NewOSRMProvider(cfg.OSRMBaseURL, cfg.Timeout)
	}

	if redisClient == nil || cfg.CacheTTL <= 0 {
		return provider, nil
	}
	return routing.NewCachedProvider(provider, routing.NewRedisCache(redisClient), cfg.CacheTTL, log), nil
}

func newGeocoder(cfg *config.ServiceConfig, log *zap.Logger) (geocoding.Geocoder, error) {
	if cfg.Geocoder.Provider == "google" {
		g, err := geocoding.NewGoogleGeocoder(cfg.Routing.GoogleAPIKey, cfg.Geocoder.CountryCodes)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	log.Debug("using nominatim geocoder", zap.String("base_url", cfg.Geocoder.NominatimBaseURL))
	return geocoding.NewNominatimGeocoder(geocoding.NominatimConfig{
		BaseURL:      cfg.Geocoder.NominatimBaseURL,
		CountryCodes: cfg.Geocoder.CountryCodes,
		UserAgent:    cfg.Geocoder.UserAgent,
		Limit:        cfg.Geocoder.Limit,
		Timeout:      cfg.Routing.Timeout,
	}), nil
}

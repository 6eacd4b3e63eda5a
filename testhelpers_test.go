//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/avaluos-co/service-quote/internal/application"
	"github.com/avaluos-co/service-quote/internal/common/kafka"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	quoteEvents "github.com/avaluos-co/service-quote/internal/events"
	"github.com/avaluos-co/service-quote/internal/geocoding"
	"github.com/avaluos-co/service-quote/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testOffice = quoteDomain.Location{Lat: 4.601955010311332, Lng: -74.07203983933485}

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	Redis        *redis.Client
	KafkaBrokers []string
	Cleanup      func()
}

// quoteStack holds wired-up quote service components.
type quoteStack struct {
	Sessions        *repository.RedisSessionRepository
	Quotes          *application.QuoteService
	Picker          *application.PickerService
	Consumer        *quoteEvents.LocationEventConsumer
	CleanupProducer func()
}

// fixedProvider returns the same route for every destination.
type fixedProvider struct {
	route quoteDomain.Route
}

func (p fixedProvider) Route(_ context.Context, origin, destination quoteDomain.Location) (quoteDomain.Route, error) {
	r := p.route
	r.Path = []quoteDomain.Location{origin, destination}
	return r, nil
}

type noGeocoder struct{}

func (noGeocoder) Search(context.Context, string) ([]geocoding.Place, error) {
	return nil, geocoding.ErrNoResults
}

// setupContainers starts PostgreSQL, Redis and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start PostgreSQL container with log-based wait strategy.
	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_quotes",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_quotes sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(&repository.QuoteModel{}))

	// Start Redis container.
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	redisClient := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(redisHost, redisPort.Port())})
	require.Eventually(t, func() bool {
		return redisClient.Ping(ctx).Err() == nil
	}, 15*time.Second, 500*time.Millisecond, "Redis not ready for connections")

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, quoteDomain.TopicQuoteEvents)

	cleanup := func() {
		_ = redisClient.Close()
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		Redis:        redisClient,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupQuoteStack wires up the quote service with Kafka route dispatch.
func setupQuoteStack(t *testing.T, infra *testInfra) *quoteStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	sessions := repository.NewRedisSessionRepository(infra.Redis, time.Hour)
	quoteRepo := repository.NewGormQuoteRepository(infra.DB)
	pricing := quoteDomain.NewStandardPricingStrategy()
	producer := kafka.NewProducer(infra.KafkaBrokers, logger)

	provider := fixedProvider{route: quoteDomain.Route{DistanceKm: 10, DurationMinutes: 14}}
	fetcher := application.NewRouteFetcher(provider, sessions, testOffice, logger)
	dispatcher := application.NewKafkaDispatcher(producer, logger)

	picker := application.NewPickerService(sessions, pricing, dispatcher, fetcher, noGeocoder{},
		application.MapSettings{Office: testOffice, Zoom: 13, GeocoderCountry: "co", MaxRadiusKm: 300}, logger)
	quotes := application.NewQuoteService(sessions, quoteRepo, pricing, producer, logger)

	groupID := fmt.Sprintf("test-route-%s", uuid.New().String()[:8])
	consumer := quoteEvents.NewLocationEventConsumer(infra.KafkaBrokers, groupID, fetcher, logger)

	return &quoteStack{
		Sessions:        sessions,
		Quotes:          quotes,
		Picker:          picker,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// waitForRouteStatus polls the session store until the route status matches.
func waitForRouteStatus(t *testing.T, sessions quoteDomain.SessionRepository, id uuid.UUID, expected quoteDomain.RouteStatus, timeout time.Duration) *quoteDomain.Session {
	t.Helper()
	var result *quoteDomain.Session
	require.Eventually(t, func() bool {
		s, err := sessions.FindByID(context.Background(), id)
		if err != nil {
			return false
		}
		if s.RouteStatus() == expected {
			result = s
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "session route did not reach %s", expected)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

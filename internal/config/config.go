package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/avaluos-co/service-quote/internal/common/database"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "QUOTE"

// RoutingConfig selects and configures the driving-route provider.
type RoutingConfig struct {
	Provider      string
	OSRMBaseURL   string
	GoogleAPIKey  string
	Timeout       time.Duration
	CacheTTL      time.Duration
	Dispatch      string
	MaxRadiusKm   float64
	OfficeLat     float64
	OfficeLng     float64
	OfficeLabel   string
	ConsumerGroup string
}

// GeocoderConfig selects and configures address search.
type GeocoderConfig struct {
	Provider         string
	NominatimBaseURL string
	CountryCodes     string
	UserAgent        string
	Limit            int
}

// MapConfig is handed to the browser map as-is.
type MapConfig struct {
	TileURL     string
	Attribution string
	Zoom        int
}

// KafkaConfig lists brokers and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds the signing secret for admin tokens.
type JWTConfig struct {
	Secret string
}

// SessionConfig selects where picker sessions live.
type SessionConfig struct {
	Store string
	TTL   time.Duration
}

// ServiceConfig holds all configuration for the quote service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	RedisURL       string
	SearchDebounce time.Duration
	DBConfig       database.PostgresConfig
	JWTConfig      JWTConfig
	KafkaConfig    KafkaConfig
	Routing        RoutingConfig
	Geocoder       GeocoderConfig
	Map            MapConfig
	Session        SessionConfig
}

// Load reads configuration from an optional .env file and QUOTE_* environment variables.
func Load() (*ServiceConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:           normalizePort(v.GetString("SERVICE_PORT")),
		AppEnv:         v.GetString("APP_ENV"),
		RedisURL:       v.GetString("REDIS_URL"),
		SearchDebounce: v.GetDuration("SEARCH_DEBOUNCE"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{Secret: v.GetString("JWT_SECRET")},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		Routing: RoutingConfig{
			Provider:      strings.ToLower(v.GetString("ROUTING_PROVIDER")),
			OSRMBaseURL:   v.GetString("OSRM_BASE_URL"),
			GoogleAPIKey:  v.GetString("GOOGLE_MAPS_API_KEY"),
			Timeout:       v.GetDuration("ROUTING_TIMEOUT"),
			CacheTTL:      v.GetDuration("ROUTE_CACHE_TTL"),
			Dispatch:      strings.ToLower(v.GetString("ROUTE_DISPATCH")),
			MaxRadiusKm:   v.GetFloat64("MAX_SERVICE_RADIUS_KM"),
			OfficeLat:     v.GetFloat64("OFFICE_LAT"),
			OfficeLng:     v.GetFloat64("OFFICE_LNG"),
			OfficeLabel:   v.GetString("OFFICE_LABEL"),
			ConsumerGroup: v.GetString("ROUTE_CONSUMER_GROUP"),
		},
		Geocoder: GeocoderConfig{
			Provider:         strings.ToLower(v.GetString("GEOCODER_PROVIDER")),
			NominatimBaseURL: v.GetString("NOMINATIM_BASE_URL"),
			CountryCodes:     v.GetString("GEOCODER_COUNTRY_CODES"),
			UserAgent:        v.GetString("GEOCODER_USER_AGENT"),
			Limit:            v.GetInt("GEOCODER_LIMIT"),
		},
		Map: MapConfig{
			TileURL:     v.GetString("MAP_TILE_URL"),
			Attribution: v.GetString("MAP_ATTRIBUTION"),
			Zoom:        v.GetInt("MAP_ZOOM"),
		},
		Session: SessionConfig{
			Store: strings.ToLower(v.GetString("SESSION_STORE")),
			TTL:   v.GetDuration("SESSION_TTL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("SEARCH_DEBOUNCE", "300ms")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "quotes")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "avaluos-")

	v.SetDefault("ROUTING_PROVIDER", "osrm")
	v.SetDefault("OSRM_BASE_URL", "https://router.project-osrm.org")
	v.SetDefault("ROUTING_TIMEOUT", "8s")
	v.SetDefault("ROUTE_CACHE_TTL", "24h")
	v.SetDefault("ROUTE_DISPATCH", "inline")
	v.SetDefault("MAX_SERVICE_RADIUS_KM", 300.0)
	v.SetDefault("OFFICE_LAT", 4.601955010311332)
	v.SetDefault("OFFICE_LNG", -74.07203983933485)
	v.SetDefault("OFFICE_LABEL", "Oficina del Avaluador")
	v.SetDefault("ROUTE_CONSUMER_GROUP", "route-fetcher")

	v.SetDefault("GEOCODER_PROVIDER", "nominatim")
	v.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODER_COUNTRY_CODES", "co")
	v.SetDefault("GEOCODER_USER_AGENT", "service-quote/1.0")
	v.SetDefault("GEOCODER_LIMIT", 5)

	v.SetDefault("MAP_TILE_URL", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("MAP_ATTRIBUTION", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`)
	v.SetDefault("MAP_ZOOM", 13)

	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("SESSION_TTL", "2h")
}

func (c *ServiceConfig) validate() error {
	switch c.Routing.Provider {
	case "osrm", "google":
	default:
		return fmt.Errorf("unsupported routing provider %q", c.Routing.Provider)
	}
	if c.Routing.Provider == "google" && c.Routing.GoogleAPIKey == "" {
		return fmt.Errorf("%s_GOOGLE_MAPS_API_KEY is required for the google routing provider", envPrefix)
	}
	switch c.Routing.Dispatch {
	case "inline", "kafka":
	default:
		return fmt.Errorf("unsupported route dispatch %q", c.Routing.Dispatch)
	}
	switch c.Geocoder.Provider {
	case "nominatim", "google":
	default:
		return fmt.Errorf("unsupported geocoder provider %q", c.Geocoder.Provider)
	}
	if c.Geocoder.Provider == "google" && c.Routing.GoogleAPIKey == "" {
		return fmt.Errorf("%s_GOOGLE_MAPS_API_KEY is required for the google geocoder", envPrefix)
	}
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}
	if c.Routing.Dispatch == "kafka" && c.Session.Store != "redis" {
		return fmt.Errorf("kafka route dispatch requires the redis session store")
	}
	if c.AppEnv == "production" && c.JWTConfig.Secret == "change-me" {
		return fmt.Errorf("%s_JWT_SECRET must be set in production", envPrefix)
	}
	return nil
}

func normalizePort(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

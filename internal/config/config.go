package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shrutiikadam/UrbanDepot1/internal/domain/geo"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "PARKING"

const (
	ProviderGoogle    = "google"
	ProviderNominatim = "nominatim"
)

// ServiceConfig holds all configuration for the parking finder.
type ServiceConfig struct {
	AppEnv         string
	Provider       ProviderConfig
	UserLocation   *geo.Coordinate
	KafkaConfig    KafkaConfig
	DBConfig       DatabaseConfig
	CatalogEnabled bool
}

// ProviderConfig selects and tunes the geospatial provider.
type ProviderConfig struct {
	Name            string
	GoogleAPIKey    string
	Timeout         time.Duration
	NominatimURL    string
	NominatimRPS    float64
	GeocodeCacheTTL time.Duration
}

// KafkaConfig holds the broker settings of the reservation handoff.
type KafkaConfig struct {
	Brokers      []string
	HandoffTopic string
	GroupPrefix  string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// DatabaseConfig holds the Postgres connection settings of the catalog.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the connection string for the GORM postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads configuration from environment variables, after loading an
// optional .env file from the working directory.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("provider", ProviderGoogle)
	v.SetDefault("provider_timeout", "10s")
	v.SetDefault("nominatim_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim_rps", 1.0)
	v.SetDefault("geocode_cache_ttl", "10m")
	v.SetDefault("handoff_topic", "reservation.events")
	v.SetDefault("kafka_group_prefix", "urbandepot-")
	v.SetDefault("catalog_enabled", false)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "urbandepot")
	v.SetDefault("db_sslmode", "disable")
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		AppEnv: v.GetString("app_env"),
		Provider: ProviderConfig{
			Name:            strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
			GoogleAPIKey:    v.GetString("google_maps_api_key"),
			Timeout:         v.GetDuration("provider_timeout"),
			NominatimURL:    v.GetString("nominatim_url"),
			NominatimRPS:    v.GetFloat64("nominatim_rps"),
			GeocodeCacheTTL: v.GetDuration("geocode_cache_ttl"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:      splitCSV(v.GetString("kafka_brokers")),
			HandoffTopic: v.GetString("handoff_topic"),
			GroupPrefix:  v.GetString("kafka_group_prefix"),
		},
		DBConfig: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		CatalogEnabled: v.GetBool("catalog_enabled"),
	}

	switch cfg.Provider.Name {
	case ProviderGoogle, ProviderNominatim:
	default:
		return nil, fmt.Errorf("config: unknown provider %q", cfg.Provider.Name)
	}
	if cfg.Provider.Timeout <= 0 {
		return nil, fmt.Errorf("config: provider timeout must be positive, got %s", cfg.Provider.Timeout)
	}

	lat, lng := v.GetString("user_lat"), v.GetString("user_lng")
	switch {
	case lat == "" && lng == "":
	case lat == "" || lng == "":
		return nil, fmt.Errorf("config: USER_LAT and USER_LNG must be set together")
	default:
		loc := geo.Coordinate{Lat: v.GetFloat64("user_lat"), Lng: v.GetFloat64("user_lng")}
		if !loc.Valid() {
			return nil, fmt.Errorf("config: invalid user location %s", loc)
		}
		cfg.UserLocation = &loc
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

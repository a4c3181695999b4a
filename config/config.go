package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port           int
	Environment    string
	Domain         string
	CORSOrigins    []string
	RequestTimeout time.Duration

	StoreDriver       string
	MongoURI          string
	MongoDatabase     string
	MongoTransactions bool

	RedisAddress     string
	RedisPassword    string
	IssueLimitPrefix string
	IssueDailyLimit  int

	JWTSecret string
}

// Production reports whether cookies must be marked secure.
func (c Config) Production() bool {
	return c.Environment == "production"
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("go_env", "development")
	v.SetDefault("domain", "")
	v.SetDefault("cors_origin", "http://localhost:5173")
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("store_driver", DriverMongo)
	v.SetDefault("mongodb_uri", "")
	v.SetDefault("mongodb_database", "gramsetu")
	v.SetDefault("mongodb_transactions", false)
	v.SetDefault("redis_address", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_queue_for_issue_limit", "issue-limit")
	v.SetDefault("issue_daily_limit", 10)
	v.SetDefault("jwt_secret", "")
}

// Load reads .env (if present) and the environment into a Config.
func Load(v *viper.Viper) (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from values already present in v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:              v.GetInt("port"),
		Environment:       v.GetString("go_env"),
		Domain:            v.GetString("domain"),
		CORSOrigins:       splitList(v.GetString("cors_origin")),
		RequestTimeout:    v.GetDuration("request_timeout"),
		StoreDriver:       strings.ToLower(v.GetString("store_driver")),
		MongoURI:          v.GetString("mongodb_uri"),
		MongoDatabase:     v.GetString("mongodb_database"),
		MongoTransactions: v.GetBool("mongodb_transactions"),
		RedisAddress:      v.GetString("redis_address"),
		RedisPassword:     v.GetString("redis_password"),
		IssueLimitPrefix:  v.GetString("redis_queue_for_issue_limit"),
		IssueDailyLimit:   v.GetInt("issue_daily_limit"),
		JWTSecret:         v.GetString("jwt_secret"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("please define the JWT_SECRET environment variable"))
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("please define the MONGODB_URI environment variable"))
		}
	case DriverMemory:
	default:
		errs = append(errs, errors.New("STORE_DRIVER must be mongo or memory"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

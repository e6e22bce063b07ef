package config

import (
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	AppName string `mapstructure:"APPNAME"`
	AppEnv  string `mapstructure:"APPENV"`
	AppPort uint16 `mapstructure:"APPPORT"`
	GinMode string `mapstructure:"GINMODE"`

	PostgresURL      string `mapstructure:"POSTGRES_URL"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string `mapstructure:"POSTGRES_PORT"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`

	MongoURI string `mapstructure:"MONGO_URI"`
	MongoDB  string `mapstructure:"MONGO_DB"`

	ModelDir       string `mapstructure:"MODEL_DIR"`
	ModelFile      string `mapstructure:"MODEL_FILE"`
	ScalerFile     string `mapstructure:"SCALER_FILE"`
	ModelVersion   string `mapstructure:"MODEL_VERSION"`
	ArtifactSource string `mapstructure:"ARTIFACT_SOURCE"`

	MinIOEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket    string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	MinIORegion    string `mapstructure:"MINIO_REGION"`

	RedisEnabled bool   `mapstructure:"REDIS_ENABLED"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	RedisPass    string `mapstructure:"REDIS_PASS"`
	RedisDB      int    `mapstructure:"REDIS_DB"`

	PredictRateLimit  int           `mapstructure:"PREDICT_RATE_LIMIT"`
	PredictRateWindow time.Duration `mapstructure:"PREDICT_RATE_WINDOW"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var config *Config
var once sync.Once

var configKeys = []string{
	"APPNAME", "APPENV", "APPPORT", "GINMODE",
	"POSTGRES_URL", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB",
	"MONGO_URI", "MONGO_DB",
	"MODEL_DIR", "MODEL_FILE", "SCALER_FILE", "MODEL_VERSION", "ARTIFACT_SOURCE",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL", "MINIO_REGION",
	"REDIS_ENABLED", "REDIS_ADDR", "REDIS_PASS", "REDIS_DB",
	"PREDICT_RATE_LIMIT", "PREDICT_RATE_WINDOW",
	"LOG_LEVEL", "LOG_FORMAT",
}

// LoadConfig loads the environment variables (and a .env file when one exists),
// and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Debugf("no .env file loaded: %v", err)
		}

		cfg, err := readConfig()
		if err != nil {
			log.Fatalf("Error reading configuration: %v", err)
		}
		config = cfg
	})
	return config
}

func readConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APPNAME", "ml-pipeline-api")
	v.SetDefault("APPENV", "development")
	v.SetDefault("APPPORT", 8000)
	v.SetDefault("GINMODE", "release")
	v.SetDefault("MONGO_DB", "healthcare_ml")
	v.SetDefault("MODEL_DIR", "models")
	v.SetDefault("MODEL_FILE", "model_exp5.json")
	v.SetDefault("SCALER_FILE", "scaler.json")
	v.SetDefault("MODEL_VERSION", "model_exp5")
	v.SetDefault("ARTIFACT_SOURCE", "local")
	v.SetDefault("MINIO_BUCKET", "models")
	v.SetDefault("MINIO_REGION", "us-east-1")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PREDICT_RATE_LIMIT", 30)
	v.SetDefault("PREDICT_RATE_WINDOW", time.Minute)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	// Unmarshal only sees keys viper knows about, so bind the ones without defaults.
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// IsTest reports whether the application runs with APPENV=test.
func (c *Config) IsTest() bool {
	return c != nil && c.AppEnv == "test"
}

// PostgresDSN returns the PostgreSQL connection string, preferring POSTGRES_URL
// and otherwise building it from the individual components.
func (c *Config) PostgresDSN() (string, error) {
	if c.PostgresURL != "" {
		return c.PostgresURL, nil
	}
	if c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresHost == "" || c.PostgresDB == "" {
		return "", fmt.Errorf("postgres connection URL or components must be provided")
	}
	port := c.PostgresPort
	if port == "" {
		port = "5432"
	}
	dsn := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   net.JoinHostPort(c.PostgresHost, port),
		Path:   "/" + c.PostgresDB,
	}
	return dsn.String(), nil
}

// ResetForTest drops the cached configuration so the next LoadConfig call re-reads the environment.
func ResetForTest() {
	config = nil
	once = sync.Once{}
}

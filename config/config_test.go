package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// reload forces LoadConfig to read the environment set up by the caller.
func reload(t *testing.T) *Config {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)
	return LoadConfig()
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APPENV", "test")

	cfg := reload(t)
	assert.Equal(t, "ml-pipeline-api", cfg.AppName)
	assert.Equal(t, uint16(8000), cfg.AppPort)
	assert.Equal(t, "healthcare_ml", cfg.MongoDB)
	assert.Equal(t, "model_exp5", cfg.ModelVersion)
	assert.Equal(t, "local", cfg.ArtifactSource)
	assert.Equal(t, "us-east-1", cfg.MinIORegion)
	assert.Equal(t, 30, cfg.PredictRateLimit)
	assert.Equal(t, time.Minute, cfg.PredictRateWindow)
	assert.True(t, cfg.IsTest())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APPENV", "production")
	t.Setenv("APPPORT", "9090")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("PREDICT_RATE_WINDOW", "30s")

	cfg := reload(t)
	assert.Equal(t, uint16(9090), cfg.AppPort)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, 30*time.Second, cfg.PredictRateWindow)
	assert.False(t, cfg.IsTest())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{PostgresURL: "postgresql://u:p@db:5432/app"}
	dsn, err := cfg.PostgresDSN()
	assert.NoError(t, err)
	assert.Equal(t, "postgresql://u:p@db:5432/app", dsn)

	cfg = &Config{PostgresUser: "u", PostgresPassword: "p", PostgresHost: "db", PostgresDB: "app"}
	dsn, err = cfg.PostgresDSN()
	assert.NoError(t, err)
	assert.Equal(t, "postgresql://u:p@db:5432/app", dsn)

	cfg.PostgresPort = "6543"
	dsn, _ = cfg.PostgresDSN()
	assert.Equal(t, "postgresql://u:p@db:6543/app", dsn)

	_, err = (&Config{PostgresUser: "u"}).PostgresDSN()
	assert.Error(t, err)
}

func TestPostgresDSN_EscapesCredentials(t *testing.T) {
	cfg := &Config{PostgresUser: "ml user", PostgresPassword: "p@ss:w/rd?", PostgresHost: "db", PostgresDB: "app"}
	dsn, err := cfg.PostgresDSN()
	assert.NoError(t, err)
	assert.Equal(t, "postgresql://ml%20user:p%40ss%3Aw%2Frd%3F@db:5432/app", dsn)

	parsed, err := url.Parse(dsn)
	assert.NoError(t, err)
	password, _ := parsed.User.Password()
	assert.Equal(t, "p@ss:w/rd?", password)
	assert.Equal(t, "ml user", parsed.User.Username())
	assert.Equal(t, "db:5432", parsed.Host)
}

func TestConnectPostgres_TestEnvUsesSQLite(t *testing.T) {
	t.Setenv("APPENV", "test")
	reload(t)

	db, err := ConnectPostgres()
	assert.NoError(t, err)
	if assert.NotNil(t, db) {
		assert.Equal(t, "sqlite", db.Dialector.Name())
		assert.NoError(t, PingDB(db))
	}
}

func TestPingDB_Nil(t *testing.T) {
	assert.Error(t, PingDB(nil))
}

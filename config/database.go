package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectPostgres opens the relational database using the configuration values.
// With APPENV=test it opens a fresh in-memory SQLite database instead.
func ConnectPostgres() (*gorm.DB, error) {
	cfg := LoadConfig()
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	if cfg.IsTest() {
		// A unique name per call keeps parallel test databases apart while
		// cache=shared lets every pooled connection see the same tables.
		dsn := fmt.Sprintf("file:mlpipeline_%d?mode=memory&cache=shared", time.Now().UnixNano())
		return gorm.Open(sqlite.Open(dsn), gormConfig)
	}

	dsn, err := cfg.PostgresDSN()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(15)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.WithField("dialect", db.Dialector.Name()).Info("Connected to relational database")
	return db, nil
}

// PingDB verifies that the relational connection is alive.
func PingDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("relational database not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug", "trace":
		return logger.Info
	case "error", "fatal", "panic":
		return logger.Error
	default:
		return logger.Warn
	}
}

package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RodrigoTechieX/MedCore-Sistema/internal/config"
)

// Opener opens a gorm handle for a DSN. Tests replace it to simulate an
// unreachable store.
type Opener func(dsn string, gormCfg *gorm.Config) (*gorm.DB, error)

func openPostgres(dsn string, gormCfg *gorm.Config) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormCfg)
}

func Connect(ctx context.Context, cfg config.Config, appLogger *log.Logger) (*gorm.DB, error) {
	return connect(ctx, cfg, appLogger, openPostgres)
}

// connect retries open+ping with a constant delay, up to cfg.ConnectAttempts
// attempts in total.
func connect(ctx context.Context, cfg config.Config, appLogger *log.Logger, open Opener) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(cfg.ConnectDelay), uint64(attempts-1)),
		ctx,
	)

	var (
		database *gorm.DB
		attempt  int
	)
	operation := func() error {
		attempt++
		conn, err := open(cfg.DSN(), &gorm.Config{Logger: gormLogger})
		if err != nil {
			// gorm.Open returns its handle even when the initial ping fails.
			closeHandle(conn)
			return err
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("unwrap sql.DB: %w", err))
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)

		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}

		database = conn
		return nil
	}
	notify := func(err error, wait time.Duration) {
		appLogger.Printf("database connection failed (%d/%d): %v; retrying in %s", attempt, attempts, err, wait)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", attempt, err)
	}

	return database, nil
}

func closeHandle(conn *gorm.DB) {
	if conn == nil {
		return
	}
	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

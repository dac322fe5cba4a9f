package state

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sellerdesk/backend/internal/infrastructure/config"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open creates the Store selected by cfg.State.Driver
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, error) {
	switch cfg.State.Driver {
	case config.StateDriverMemory:
		return NewMemoryStore(), nil
	case config.StateDriverSQLite, config.StateDriverPostgres:
		db, err := openDatabase(cfg.State.Driver, cfg.State.DSN, log)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := telemetry.RegisterDBTracing(db, cfg.State.Driver); err != nil {
				return nil, fmt.Errorf("failed to enable state store tracing: %w", err)
			}
		}
		return NewGormStore(db)
	case config.StateDriverRedis:
		return NewRedisStore(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.State.KeyPrefix)
	default:
		return nil, fmt.Errorf("state: unsupported driver %q", cfg.State.Driver)
	}
}

func openDatabase(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if driver == config.StateDriverPostgres {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(log, gormlogger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if driver == config.StateDriverSQLite {
		// sqlite allows one writer at a time
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/groupbook/internal/app/store/mongostore"
	"github.com/dalemusser/groupbook/internal/app/store/sqlstore"
	"github.com/dalemusser/groupbook/internal/app/system/indexes"
	"github.com/dalemusser/groupbook/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the configured entity store.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	switch appCfg.StoreType {
	case StoreSQLite:
		st, err := sqlstore.Open(appCfg.SQLitePath)
		if err != nil {
			return DBDeps{}, fmt.Errorf("open sqlite %q: %w", appCfg.SQLitePath, err)
		}
		logger.Info("connected to SQLite", zap.String("path", appCfg.SQLitePath))
		return DBDeps{Store: st, Backend: StoreSQLite, SQL: st}, nil

	default:
		opts := options.Client().
			ApplyURI(appCfg.MongoURI).
			SetMaxPoolSize(appCfg.MongoMaxPoolSize).
			SetMinPoolSize(appCfg.MongoMinPoolSize).
			SetServerSelectionTimeout(10 * time.Second)
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, appCfg.Timeouts.WithDefaults().Medium)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
		}
		db := client.Database(appCfg.MongoDatabase)
		logger.Info("connected to MongoDB",
			zap.String("database", appCfg.MongoDatabase),
			zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))
		return DBDeps{
			Store:         mongostore.New(client, db, logger),
			Backend:       StoreMongo,
			MongoClient:   client,
			MongoDatabase: db,
		}, nil
	}
}

// EnsureSchema brings the store's schema up to date: collection validators
// and indexes for MongoDB, migrations for SQLite. Both are idempotent.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	switch {
	case deps.SQL != nil:
		if err := deps.SQL.MigrateUp(); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
		if v, dirty, err := deps.SQL.Version(); err == nil {
			logger.Info("sqlite schema ready", zap.Uint("version", v), zap.Bool("dirty", dirty))
		}
	case deps.MongoDatabase != nil:
		if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
			return fmt.Errorf("ensure validators: %w", err)
		}
		if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return nil
}

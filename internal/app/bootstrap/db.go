// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	sessionstore "github.com/dalemusser/liderplan/internal/app/store/sessions"
	"github.com/dalemusser/liderplan/internal/app/system/filestore"
	"github.com/dalemusser/liderplan/internal/app/system/indexes"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"github.com/dalemusser/liderplan/internal/app/system/validators"
	"github.com/dalemusser/liderplan/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and opens the evidence file store. A
// failed ping aborts startup.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	files, closeFiles, err := openFileStore(ctx, appCfg)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}
	deps.Files = files
	deps.closeFiles = closeFiles
	logger.Info("file storage ready", zap.String("type", appCfg.StorageType))

	deps.sessionSweeper = workers.NewSessionSweeper(
		sessionstore.New(deps.MongoDatabase),
		appCfg.SessionIdleTimeout, appCfg.SessionSweepInterval, logger)

	return deps, nil
}

func openFileStore(ctx context.Context, appCfg AppConfig) (filestore.Store, func() error, error) {
	switch appCfg.StorageType {
	case "gcs":
		g, err := filestore.NewGCS(ctx, appCfg.StorageGCSBucket, appCfg.StorageGCSPrefix, appCfg.StorageGCSCredentials)
		if err != nil {
			return nil, nil, fmt.Errorf("open gcs storage: %w", err)
		}
		return g, g.Close, nil
	default:
		l, err := filestore.NewLocal(appCfg.StorageLocalPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open local storage: %w", err)
		}
		return l, nil, nil
	}
}

// EnsureSchema creates collections with their JSON-schema validators and
// reconciles indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure validators failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	logger.Info("schema ensured")
	return nil
}

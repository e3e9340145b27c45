package main

import (
	"context"
	"fmt"
	"log/slog"

	"goal-tracker-backend/internal/config"
	"goal-tracker-backend/internal/db"
	"goal-tracker-backend/internal/goals"
	"goal-tracker-backend/internal/users"
)

type storeSet struct {
	users users.Repository
	goals goals.Repository
	close func()
}

// openStores connects the backend named by cfg.StoreDriver.
func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storeSet, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on exit")
		return &storeSet{
			users: users.NewMemoryRepository(),
			goals: goals.NewMemoryRepository(),
			close: func() {},
		}, nil

	case config.StorePostgres:
		sqlDB, err := db.Connect(ctx, cfg.DBDriver, cfg.ConnString())
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		log.Info("connected to PostgreSQL", "driver", cfg.DBDriver)

		if cfg.Migrate {
			if err := db.Migrate(ctx, sqlDB); err != nil {
				_ = sqlDB.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}

		return &storeSet{
			users: users.NewPostgresRepository(sqlDB),
			goals: goals.NewPostgresRepository(sqlDB),
			close: func() { _ = sqlDB.Close() },
		}, nil

	case config.StoreMongo:
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		log.Info("connected to MongoDB", "database", cfg.MongoDatabase)

		userRepo := users.NewMongoRepository(database)
		if err := userRepo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}

		return &storeSet{
			users: userRepo,
			goals: goals.NewMongoRepository(database),
			close: func() { _ = client.Disconnect(context.Background()) },
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

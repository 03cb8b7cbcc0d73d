//go:build !no_mongodb

package providers

import (
	"context"

	"vitamend-data/internal/donation/adapter/persistence/mongodb"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	"vitamend-data/internal/shared/logger"
)

func init() {
	register(model.ProviderMongoDB, newMongoDB)
}

func newMongoDB(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error) {
	a, err := mongodb.New(cfg.MongoClient, log)
	if err != nil {
		return nil, err
	}
	return a, nil
}

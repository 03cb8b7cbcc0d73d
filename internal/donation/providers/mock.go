//go:build !no_mock

package providers

import (
	"context"

	"vitamend-data/internal/donation/adapter/persistence/mock"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	"vitamend-data/internal/shared/logger"
)

func init() {
	register(model.ProviderMock, func(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error) {
		return mock.New(log), nil
	})
}

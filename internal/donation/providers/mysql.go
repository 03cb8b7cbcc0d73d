//go:build !no_mysql

package providers

import (
	"context"

	"vitamend-data/internal/donation/adapter/persistence/mysql"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	"vitamend-data/internal/shared/logger"
)

func init() {
	register(model.ProviderMySQL, func(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error) {
		return mysql.New(cfg.MySQL, log), nil
	})
}

//go:build !no_firebase

package providers

import (
	"context"

	"vitamend-data/internal/donation/adapter/persistence/firebase"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	"vitamend-data/internal/shared/logger"
)

func init() {
	register(model.ProviderFirebase, newFirebase)
}

func newFirebase(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error) {
	a, err := firebase.New(ctx, cfg.Firebase, log)
	if err != nil {
		return nil, err
	}
	return a, nil
}

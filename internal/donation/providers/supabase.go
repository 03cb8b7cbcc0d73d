//go:build !no_supabase

package providers

import (
	"context"

	"vitamend-data/internal/donation/adapter/persistence/supabase"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	"vitamend-data/internal/shared/logger"
)

func init() {
	register(model.ProviderSupabase, newSupabase)
}

func newSupabase(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.DatabaseAdapter, error) {
	a, err := supabase.New(ctx, cfg.Supabase, log)
	if err != nil {
		return nil, err
	}
	return a, nil
}

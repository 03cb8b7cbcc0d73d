package providers

import (
	"context"
	"testing"

	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/loader"
	apperrors "vitamend-data/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable_AllBackendsByDefault(t *testing.T) {
	assert.ElementsMatch(t, model.Providers(), Available())
}

func TestFactories_MockAndMySQL(t *testing.T) {
	ctx := context.Background()

	for _, p := range []model.Provider{model.ProviderMock, model.ProviderMySQL} {
		cfg, err := config.LoadFromMap(map[string]string{"DB_PROVIDER": string(p)})
		require.NoError(t, err)

		a, err := loader.New(cfg, nil).Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, p, a.Provider())
	}
}

func TestFactories_MissingConfiguration(t *testing.T) {
	ctx := context.Background()
	cases := map[model.Provider]string{
		model.ProviderSupabase: "SUPABASE_DB_URL",
		model.ProviderFirebase: "FIREBASE_PROJECT_ID",
	}

	for p, variable := range cases {
		cfg, err := config.LoadFromMap(map[string]string{"DB_PROVIDER": string(p)})
		require.NoError(t, err)

		a, err := loader.New(cfg, nil).Get(ctx)
		require.Error(t, err, p)
		assert.Nil(t, a)
		assert.True(t, apperrors.IsConfiguration(err))
		assert.Contains(t, err.Error(), variable)
	}
}

func TestFactories_MongoDBClientNeedsNoSecret(t *testing.T) {
	cfg, err := config.LoadFromMap(map[string]string{"DB_PROVIDER": "mongodb"})
	require.NoError(t, err)

	a, err := loader.New(cfg, nil).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ProviderMongoDB, a.Provider())
}

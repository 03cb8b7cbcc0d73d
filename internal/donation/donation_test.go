package donation

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"vitamend-data/internal/donation/adapter/persistence/mongostore/storetest"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	apperrors "vitamend-data/internal/shared/errors"
	"vitamend-data/internal/shared/eventbus"
	"vitamend-data/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule(t *testing.T, vars map[string]string, opts ...ModuleOption) (*DonationModule, *fiber.App) {
	t.Helper()
	cfg, err := config.LoadFromMap(vars)
	require.NoError(t, err)

	opts = append([]ModuleOption{WithStore(storetest.NewMemoryStore()), WithoutDefaultLoader()}, opts...)
	m, err := NewDonationModule(cfg, logger.NewTestLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Stop(context.Background()) })

	app := fiber.New()
	m.RegisterRoutes(app)
	return m, app
}

func TestDonationModule_InitThroughBridgeNotifiesFeed(t *testing.T) {
	m, app := newTestModule(t, map[string]string{"DB_PROVIDER": "mock"})
	ctx := context.Background()

	var latest atomic.Int32
	unsubscribe, err := m.Medicines.Subscribe(ctx, func(medicines []model.Medicine) {
		latest.Store(int32(len(medicines)))
	})
	require.NoError(t, err)
	defer unsubscribe()
	assert.Equal(t, int32(0), latest.Load())

	resp, err := app.Test(httptest.NewRequest("POST", "/api/db/init", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result model.InitResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "Mock database initialized with sample data!", result.Message)

	assert.Eventually(t, func() bool {
		return latest.Load() == int32(len(model.SeedMedicines(time.Now())))
	}, time.Second, 5*time.Millisecond)

	resp, err = app.Test(httptest.NewRequest("POST", "/api/db/init", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.AlreadyInitialized)
}

func TestDonationModule_StatsRoute(t *testing.T) {
	m, app := newTestModule(t, map[string]string{"DB_PROVIDER": "mock"})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res := m.Donations.SubmitWithFiles(ctx, model.DonationInput{MedicineName: "Aspirin", DonorEmail: "d@example.com"}, nil)
		require.True(t, res.Success)
		if i == 0 {
			require.True(t, m.Donations.UpdateStatus(ctx, res.Data.ID, model.DonationStatusDistributed).Success)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/db/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var stats model.DonationStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, model.DonationStats{TotalDonations: 2, MedicinesVerified: 1, LivesHelped: 3}, stats)
}

func TestDonationModule_MetricsRoute(t *testing.T) {
	m, app := newTestModule(t, map[string]string{"DB_PROVIDER": "mock"})

	state := m.Donations.UpdateStatus(context.Background(), "missing", model.DonationStatusVerified)
	assert.Equal(t, model.MsgDonationNotFound, state.Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `vitamend_db_operations_total{operation="UpdateDonationStatus",outcome="failure",provider="mock"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestDonationModule_MetricsDisabled(t *testing.T) {
	m, app := newTestModule(t, map[string]string{"DB_PROVIDER": "mock", "METRICS_ENABLED": "false"})
	assert.Nil(t, m.Registry)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestDonationModule_InvalidStatusPolicy(t *testing.T) {
	cfg, err := config.LoadFromMap(map[string]string{"DB_PROVIDER": "mock", "DONATION_STATUS_POLICY": "from =="})
	require.NoError(t, err)

	_, err = NewDonationModule(cfg, nil, WithStore(storetest.NewMemoryStore()), WithoutDefaultLoader())
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestDonationModule_StatusPolicyApplied(t *testing.T) {
	m, _ := newTestModule(t, map[string]string{
		"DB_PROVIDER":            "mock",
		"DONATION_STATUS_POLICY": `to != "pending"`,
	})
	ctx := context.Background()

	created := m.Donations.SubmitWithFiles(ctx, model.DonationInput{MedicineName: "Aspirin", Quantity: 1}, nil)
	require.True(t, created.Success)

	res := m.Donations.UpdateStatus(ctx, created.Data.ID, model.DonationStatusPending)
	assert.Equal(t, "status transition from pending to pending is not allowed", res.Error)
	assert.True(t, m.Donations.UpdateStatus(ctx, created.Data.ID, model.DonationStatusVerified).Success)
}

func TestDonationModule_MissingProviderConfiguration(t *testing.T) {
	m, _ := newTestModule(t, map[string]string{"DB_PROVIDER": "supabase"})
	log := m.Logger.(*logger.TestLogger)

	m.Start(context.Background())
	assert.True(t, log.Logged(logrus.WarnLevel, "SUPABASE_DB_URL"))

	err := m.HealthCheck(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsConfiguration(err))
}

func TestDonationModule_AdminTokens(t *testing.T) {
	_, app := newTestModule(t, map[string]string{
		"DB_PROVIDER":       "mock",
		"BRIDGE_JWT_SECRET": "module-secret",
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/db/init", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestDonationModule_CloudinaryConfigured(t *testing.T) {
	_, app := newTestModule(t, map[string]string{
		"DB_PROVIDER":           "mock",
		"CLOUDINARY_CLOUD_NAME": "demo",
		"CLOUDINARY_API_KEY":    "key",
		"CLOUDINARY_API_SECRET": "secret",
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/db/images", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestDonationModule_CacheFallsThroughWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	m, _ := newTestModule(t, map[string]string{
		"DB_PROVIDER":   "mock",
		"REDIS_ENABLED": "true",
	}, WithRedisClient(client))
	ctx := context.Background()

	result, err := m.InitializeDatabase(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)

	adapter, err := m.Loader.Get(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, adapter.GetMedicines(ctx))

	err = m.HealthCheck(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")

	// Bridge writes bypass the decorated adapter, so the cache listens on the bus.
	assert.Equal(t, 1, m.EventBus.GetSubscriberCount(eventbus.EventTypeVolunteerSubmitted))
	_ = m.Stop(ctx)
	assert.Zero(t, m.EventBus.GetSubscriberCount(eventbus.EventTypeVolunteerSubmitted))
}

func TestDonationModule_BridgeHealth(t *testing.T) {
	store := storetest.NewMemoryStore()
	_, app := newTestModule(t, map[string]string{"DB_PROVIDER": "mongodb"}, WithStore(store))

	resp, err := app.Test(httptest.NewRequest("GET", "/health/db", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	store.SetDown(true)
	resp, err = app.Test(httptest.NewRequest("GET", "/health/db", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

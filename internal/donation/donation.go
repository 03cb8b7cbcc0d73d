// Package donation assembles the data layer: the adapter loader with its
// decorators, the /api/db bridge routes and the consumer use cases.
package donation

import (
	"context"
	"fmt"
	"time"

	"vitamend-data/internal/donation/adapter/cache"
	httpadapter "vitamend-data/internal/donation/adapter/http"
	"vitamend-data/internal/donation/adapter/metrics"
	"vitamend-data/internal/donation/adapter/persistence/mongostore"
	"vitamend-data/internal/donation/adapter/security"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/domain/model"
	"vitamend-data/internal/donation/domain/repository"
	"vitamend-data/internal/donation/loader"
	_ "vitamend-data/internal/donation/providers"
	"vitamend-data/internal/donation/usecase"
	"vitamend-data/internal/shared/eventbus"
	"vitamend-data/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// shutdownTimeout bounds Stop when ctx has no deadline.
const shutdownTimeout = 10 * time.Second

// DonationModule owns every long-lived component of the data layer.
type DonationModule struct {
	Config    *config.Config
	Loader    *loader.Loader
	EventBus  eventbus.EventBusInterface
	Store     mongostore.Store
	Bridge    *httpadapter.BridgeHandler
	Donations *usecase.DonationUsecase
	Medicines *usecase.MedicineFeed
	Stats     *usecase.StatsUsecase
	Logger    logger.Logger

	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	// RedisClient is nil when the read cache is disabled.
	RedisClient *redis.Client

	stopInvalidation func()
}

// ModuleOption customises NewDonationModule.
type ModuleOption func(*moduleOptions)

type moduleOptions struct {
	store      mongostore.Store
	redis      *redis.Client
	factories  map[model.Provider]loader.Factory
	setDefault bool
}

// WithStore replaces the MongoDB-backed bridge store.
func WithStore(store mongostore.Store) ModuleOption {
	return func(o *moduleOptions) { o.store = store }
}

// WithRedisClient replaces the client built from the cache configuration.
func WithRedisClient(client *redis.Client) ModuleOption {
	return func(o *moduleOptions) { o.redis = client }
}

// WithFactory overrides the adapter factory of one provider.
func WithFactory(p model.Provider, f loader.Factory) ModuleOption {
	return func(o *moduleOptions) { o.factories[p] = f }
}

// WithoutDefaultLoader keeps the process-wide loader untouched.
func WithoutDefaultLoader() ModuleOption {
	return func(o *moduleOptions) { o.setDefault = false }
}

// NewDonationModule wires the data layer for cfg. Nothing connects to a
// backend here; adapters resolve on first use.
func NewDonationModule(cfg *config.Config, log logger.Logger, opts ...ModuleOption) (*DonationModule, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	o := &moduleOptions{factories: map[model.Provider]loader.Factory{}, setDefault: true}
	for _, opt := range opts {
		opt(o)
	}

	log.Infof("Initializing donation data layer with provider %s...", cfg.Provider)

	policy, err := usecase.NewStatusPolicy(cfg.StatusPolicy)
	if err != nil {
		return nil, err
	}

	m := &DonationModule{
		Config:   cfg,
		EventBus: eventbus.NewEventBus(log),
		Logger:   log,
	}

	m.Loader = loader.New(cfg, log)
	for p, f := range o.factories {
		m.Loader.Register(p, f)
	}

	if cfg.Cache.Enabled {
		m.RedisClient = o.redis
		if m.RedisClient == nil {
			m.RedisClient = config.NewRedisClient(cfg.Cache.Redis)
		}
		store := cache.NewRedisStore(m.RedisClient)
		m.Loader.Use(func(a repository.DatabaseAdapter) repository.DatabaseAdapter {
			return cache.Wrap(a, store, cfg.Cache.TTL, log)
		})
		m.stopInvalidation = cache.InvalidateOnEvents(m.EventBus, store, func() model.Provider {
			return m.Loader.Config().Provider
		}, log)
		log.Infof("Redis read cache enabled at %s", cfg.Cache.Redis.GetAddr())
	}

	if cfg.MetricsEnabled {
		m.Registry = prometheus.NewRegistry()
		m.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector := metrics.NewCollector(m.Registry)
		m.Loader.Use(func(a repository.DatabaseAdapter) repository.DatabaseAdapter {
			return metrics.Wrap(a, collector)
		})
	}

	if o.setDefault {
		loader.SetDefault(m.Loader)
	}

	m.Store = o.store
	if m.Store == nil {
		m.Store = mongostore.NewMongoStore(cfg.Mongo, log)
	}

	m.Donations = usecase.NewDonationUsecase(m.Loader, policy, log)
	m.Medicines = usecase.NewMedicineFeed(m.Loader, m.EventBus, log)
	m.Stats = usecase.NewStatsUsecase(m.Loader, log)

	deps := httpadapter.BridgeDeps{
		Store:    m.Store,
		Stats:    m.Stats,
		Provider: cfg.Provider,
		Limiter:  httpadapter.NewSubmissionLimiter(cfg.Bridge.RateLimitPerMinute),
		Bus:      m.EventBus,
		Log:      log,
	}
	if cfg.Provider != model.ProviderMongoDB {
		deps.Initializer = m
		deps.Medicines = m.Medicines
	}
	if cfg.Bridge.Cloudinary.Enabled() {
		images, err := httpadapter.NewCloudinaryImages(cfg.Bridge.Cloudinary)
		if err != nil {
			return nil, fmt.Errorf("failed to configure image storage: %w", err)
		}
		deps.Images = images
	}
	if cfg.Bridge.JWTSecret != "" {
		tokens, err := security.NewTokenService(cfg.Bridge.JWTSecret, cfg.Bridge.JWTIssuer, cfg.Bridge.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure bridge tokens: %w", err)
		}
		deps.Tokens = tokens
	}
	m.Bridge = httpadapter.NewBridgeHandler(deps)

	log.Info("Donation data layer initialized successfully.")
	return m, nil
}

// InitializeDatabase provisions the active provider and announces the new
// catalog when something was created.
func (m *DonationModule) InitializeDatabase(ctx context.Context) (model.InitResult, error) {
	result, err := m.Loader.InitializeDatabase(ctx)
	if err != nil {
		return result, err
	}
	if result.Success && !result.AlreadyInitialized {
		ctx = context.WithoutCancel(ctx)
		m.EventBus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeDatabaseInitialized, m.Config.Provider, "loader"))
		m.EventBus.PublishAndForget(ctx, eventbus.NewBasicEventWithSource(eventbus.EventTypeMedicineChanged, nil, "loader"))
	}
	return result, nil
}

// Start resolves the configured adapter so configuration problems surface at
// boot. A failure is logged, not returned; the next Get retries.
func (m *DonationModule) Start(ctx context.Context) {
	if _, err := m.Loader.Get(ctx); err != nil {
		m.Logger.Warnf("Database adapter not ready: %v", err)
		return
	}
	m.Logger.Infof("Database adapter %s ready", m.Config.Provider)
}

// RegisterRoutes mounts the bridge under /api/db and, when enabled, /metrics.
func (m *DonationModule) RegisterRoutes(app fiber.Router) {
	m.Bridge.RegisterRoutes(app.Group("/api/db"))
	app.Get("/health/db", m.Bridge.Health)
	if m.Registry != nil {
		app.Get("/metrics", metrics.Handler(m.Registry))
	}
}

// HealthCheck reports whether the adapter resolves and the cache answers.
func (m *DonationModule) HealthCheck(ctx context.Context) error {
	if _, err := m.Loader.Get(ctx); err != nil {
		return fmt.Errorf("database adapter: %w", err)
	}
	if m.RedisClient != nil {
		if err := m.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Stop releases the adapter, the bridge store and the cache connection.
func (m *DonationModule) Stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	if m.stopInvalidation != nil {
		m.stopInvalidation()
	}

	var errs []error
	if err := m.Loader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("loader: %w", err))
	}
	if err := m.Store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("bridge store: %w", err))
	}
	if m.RedisClient != nil {
		if err := m.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("donation module shutdown: %v", errs)
	}
	m.Logger.Info("Donation data layer stopped")
	return nil
}

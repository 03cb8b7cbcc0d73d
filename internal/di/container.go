package di

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"vitamend-data/internal/donation"
	"vitamend-data/internal/donation/config"
	"vitamend-data/internal/donation/loader"
	"vitamend-data/internal/shared/eventbus"
	"vitamend-data/internal/shared/logger"
)

// Container holds the application's modules and any extra services
// registered by type.
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]func() (interface{}, error)
	// Module instances
	DonationModule *donation.DonationModule
	// Configuration
	Config *config.Config
	// Logger
	Logger logger.Logger
}

// NewContainer creates an empty container.
func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]func() (interface{}, error)),
		Logger:    log,
	}
}

// InitializeDonation builds the donation module and registers its main
// components as services.
func (c *Container) InitializeDonation(cfg *config.Config, opts ...donation.ModuleOption) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.DonationModule != nil {
		return fmt.Errorf("donation module already initialized")
	}

	module, err := donation.NewDonationModule(cfg, c.Logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create donation module: %w", err)
	}

	c.Config = cfg
	c.DonationModule = module
	c.services[reflect.TypeOf(module.Loader)] = module.Loader
	c.services[reflect.TypeOf((*eventbus.EventBusInterface)(nil)).Elem()] = module.EventBus
	return nil
}

// Register registers a service instance under its dynamic type.
func (c *Container) Register(service interface{}) error {
	if service == nil {
		return fmt.Errorf("cannot register a nil service")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[reflect.TypeOf(service)] = service
	return nil
}

// RegisterFactory registers a factory function for a service
func (c *Container) RegisterFactory(serviceType reflect.Type, factory func() (interface{}, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[serviceType] = factory
	return nil
}

// Resolve resolves a service by type
func (c *Container) Resolve(serviceType reflect.Type) (interface{}, error) {
	c.mu.RLock()

	// Check if service instance exists
	if service, exists := c.services[serviceType]; exists {
		c.mu.RUnlock()
		return service, nil
	}

	factory, exists := c.factories[serviceType]
	c.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("service of type %v not registered", serviceType)
	}

	service, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.services[serviceType]; ok {
		return existing, nil
	}
	c.services[serviceType] = service
	return service, nil
}

// GetService is a generic helper for resolving services
func GetService[T any](c *Container) (T, error) {
	var zero T
	serviceType := reflect.TypeOf((*T)(nil)).Elem()

	service, err := c.Resolve(serviceType)
	if err != nil {
		return zero, err
	}

	if typedService, ok := service.(T); ok {
		return typedService, nil
	}

	return zero, fmt.Errorf("service is not of expected type %T", zero)
}

// GetDonationModule returns the donation module instance
func (c *Container) GetDonationModule() *donation.DonationModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DonationModule
}

// GetLoader returns the adapter loader, or nil before InitializeDonation.
func (c *Container) GetLoader() *loader.Loader {
	l, err := GetService[*loader.Loader](c)
	if err != nil {
		return nil
	}
	return l
}

// HealthCheck performs health check on all registered modules
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.DonationModule == nil {
		return fmt.Errorf("donation module not initialized")
	}
	return c.DonationModule.HealthCheck(ctx)
}

// Cleanup performs cleanup of registered services with proper shutdown order
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.DonationModule != nil {
		if err := c.DonationModule.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
		c.DonationModule = nil
	}

	for _, service := range c.services {
		if cleaner, ok := service.(interface{ Cleanup(context.Context) error }); ok {
			if err := cleaner.Cleanup(ctx); err != nil {
				errs = append(errs, fmt.Errorf("failed to cleanup service: %w", err))
			}
		}
	}

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]func() (interface{}, error))

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	c.Logger.Info("Closing DI container resources...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("Cleanup errors occurred: %v", err)
		return err
	}

	c.Logger.Info("DI container resources closed.")
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"vitamend-data/internal/donation/domain/model"
	apperrors "vitamend-data/internal/shared/errors"

	"github.com/caarlos0/env/v6"
)

// SupabaseConfig holds the relational BaaS connection and storage settings.
type SupabaseConfig struct {
	// DBURL is the Postgres connection string of the Supabase project.
	DBURL string `env:"SUPABASE_DB_URL"`
	// URL is the project's public URL, used to build public object URLs.
	URL             string `env:"SUPABASE_URL"`
	StorageBucket   string `env:"SUPABASE_STORAGE_BUCKET" envDefault:"medicine-images"`
	S3Endpoint      string `env:"SUPABASE_S3_ENDPOINT"`
	S3Region        string `env:"SUPABASE_S3_REGION" envDefault:"us-east-1"`
	S3AccessKeyID   string `env:"SUPABASE_S3_ACCESS_KEY_ID"`
	S3SecretKey     string `env:"SUPABASE_S3_SECRET_ACCESS_KEY"`
	MaxOpenConns    int    `env:"SUPABASE_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime string `env:"SUPABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// Validate reports missing required values as configuration errors.
func (c SupabaseConfig) Validate() error {
	if c.DBURL == "" {
		return apperrors.NewConfigurationError("SUPABASE_DB_URL", "SUPABASE_DB_URL environment variable is not set").
			WithComponent("supabase-adapter")
	}
	return nil
}

// StorageEnabled reports whether object storage is configured.
func (c SupabaseConfig) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKeyID != "" && c.S3SecretKey != ""
}

// PublicObjectURL returns the public URL of an object in the storage bucket.
func (c SupabaseConfig) PublicObjectURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimRight(c.URL, "/"), c.StorageBucket, objectPath)
}

// FirebaseConfig holds the document BaaS settings.
type FirebaseConfig struct {
	ProjectID       string `env:"FIREBASE_PROJECT_ID"`
	StorageBucket   string `env:"FIREBASE_STORAGE_BUCKET"`
	CredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
}

func (c FirebaseConfig) Validate() error {
	if c.ProjectID == "" {
		return apperrors.NewConfigurationError("FIREBASE_PROJECT_ID", "FIREBASE_PROJECT_ID environment variable is not set").
			WithComponent("firebase-adapter")
	}
	return nil
}

// MongoClientConfig configures the adapter that talks to the bridge routes.
type MongoClientConfig struct {
	BaseURL   string        `env:"DB_API_BASE_URL" envDefault:"http://localhost:3000/api/db"`
	Timeout   time.Duration `env:"DB_API_TIMEOUT" envDefault:"15s"`
	JWTSecret string        `env:"BRIDGE_JWT_SECRET"`
	// JWTIssuer must match the bridge's BRIDGE_JWT_ISSUER.
	JWTIssuer string `env:"BRIDGE_JWT_ISSUER" envDefault:"vitamend-bridge"`
}

func (c MongoClientConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.NewConfigurationError("DB_API_BASE_URL", "DB_API_BASE_URL must be an absolute URL").
			WithComponent("mongodb-adapter")
	}
	return nil
}

// MongoConfig configures the bridge's document store.
type MongoConfig struct {
	URI          string `env:"MONGODB_URI"`
	DatabaseName string `env:"MONGODB_DB_NAME" envDefault:"vitamend"`
}

func (c MongoConfig) Validate() error {
	if c.URI == "" {
		return apperrors.NewConfigurationError("MONGODB_URI", "MONGODB_URI environment variable is not set").
			WithComponent("bridge-store")
	}
	return nil
}

// MySQLConfig is accepted for completeness; the placeholder adapter never connects.
type MySQLConfig struct {
	Host     string `env:"MYSQL_HOST" envDefault:"localhost"`
	Port     int    `env:"MYSQL_PORT" envDefault:"3306"`
	User     string `env:"MYSQL_USER"`
	Password string `env:"MYSQL_PASSWORD"`
	Database string `env:"MYSQL_DATABASE"`
}

// CloudinaryConfig configures the bridge's image routes.
type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
}

// Enabled reports whether every Cloudinary credential is present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// BridgeConfig configures the bridge route surface.
type BridgeConfig struct {
	JWTSecret          string        `env:"BRIDGE_JWT_SECRET"`
	JWTIssuer          string        `env:"BRIDGE_JWT_ISSUER" envDefault:"vitamend-bridge"`
	TokenTTL           time.Duration `env:"BRIDGE_TOKEN_TTL" envDefault:"5m"`
	RateLimitPerMinute int           `env:"BRIDGE_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	Cloudinary         CloudinaryConfig
}

// CacheConfig enables the Redis read cache.
type CacheConfig struct {
	Enabled bool          `env:"REDIS_ENABLED" envDefault:"false"`
	TTL     time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	Redis   RedisConfig
}

// ServerConfig is the bridge HTTP listener.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port            int           `env:"SERVER_PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// TrustedProxies are the addresses whose X-Forwarded-For is believed.
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES" envSeparator:","`
}

// Addr returns host:port for the listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Config is the whole data-layer configuration, read once per process.
type Config struct {
	ProviderName string `env:"DB_PROVIDER"`
	// Provider is ProviderName resolved against the known providers.
	Provider model.Provider

	// StatusPolicy is an optional CEL expression over from and to.
	StatusPolicy   string `env:"DONATION_STATUS_POLICY"`
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`

	Supabase    SupabaseConfig
	Firebase    FirebaseConfig
	MongoClient MongoClientConfig
	Mongo       MongoConfig
	MySQL       MySQLConfig
	Bridge      BridgeConfig
	Cache       CacheConfig
	Server      ServerConfig
}

// Load reads the configuration from the process environment. Provider-specific
// required values are checked by Validate at first use, not here.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFromMap reads the configuration from vars instead of the process environment.
func LoadFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg, opts); err != nil {
		return nil, apperrors.NewConfigurationError("", "failed to load database configuration from environment").WithCause(err)
	}
	cfg.Provider = model.ParseProvider(cfg.ProviderName)
	return cfg, nil
}

// Validate checks the required values of the selected provider.
func (c *Config) Validate() error {
	switch c.Provider {
	case model.ProviderSupabase:
		return c.Supabase.Validate()
	case model.ProviderFirebase:
		return c.Firebase.Validate()
	case model.ProviderMongoDB:
		return c.MongoClient.Validate()
	}
	return nil
}

// WithProvider returns a copy of c targeting p.
func (c *Config) WithProvider(p model.Provider) *Config {
	cp := *c
	cp.Provider = p
	cp.ProviderName = string(p)
	return &cp
}

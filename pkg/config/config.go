package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Orders       OrdersConfig
	Restock      RestockConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Restock.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"BACKOFFICE_APP_ENV" required:"true"`
	Port         string   `envconfig:"BACKOFFICE_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"BACKOFFICE_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"BACKOFFICE_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"BACKOFFICE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"BACKOFFICE_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BACKOFFICE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"BACKOFFICE_DB_DSN"`

	Host     string `envconfig:"BACKOFFICE_DB_HOST"`
	Port     int    `envconfig:"BACKOFFICE_DB_PORT" default:"5432"`
	User     string `envconfig:"BACKOFFICE_DB_USER"`
	Password string `envconfig:"BACKOFFICE_DB_PASSWORD"`
	Name     string `envconfig:"BACKOFFICE_DB_NAME"`
	SSLMode  string `envconfig:"BACKOFFICE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BACKOFFICE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BACKOFFICE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BACKOFFICE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BACKOFFICE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BACKOFFICE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BACKOFFICE_REDIS_ADDR"`
	Password     string        `envconfig:"BACKOFFICE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BACKOFFICE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BACKOFFICE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BACKOFFICE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BACKOFFICE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BACKOFFICE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BACKOFFICE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BACKOFFICE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BACKOFFICE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BACKOFFICE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RateLimitConfig throttles mutating order and restock endpoints per caller.
type RateLimitConfig struct {
	Window      time.Duration `envconfig:"BACKOFFICE_RATE_LIMIT_WINDOW" default:"1m"`
	WriteLimit  int           `envconfig:"BACKOFFICE_RATE_LIMIT_WRITES" default:"120"`
	RestockRuns int           `envconfig:"BACKOFFICE_RATE_LIMIT_RESTOCK_RUNS" default:"6"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BACKOFFICE_AUTO_MIGRATE" default:"false"`
}

// OrdersConfig carries order validation policy.
type OrdersConfig struct {
	// EnforceCustomerAllowlist restricts order lines to admin items granted to
	// the customer's inventory. Off by default: the customer inventory record
	// must exist, but any admin item may be ordered.
	EnforceCustomerAllowlist bool `envconfig:"BACKOFFICE_ORDERS_ENFORCE_CUSTOMER_ALLOWLIST" default:"false"`
}

// RestockConfig tunes the low-stock planner and its scheduled run.
type RestockConfig struct {
	TargetMultiplier string        `envconfig:"BACKOFFICE_RESTOCK_TARGET_MULTIPLIER" default:"2"`
	Interval         time.Duration `envconfig:"BACKOFFICE_RESTOCK_INTERVAL" default:"1h"`
	LockTTL          time.Duration `envconfig:"BACKOFFICE_RESTOCK_LOCK_TTL" default:"10m"`
}

// Multiplier returns the parsed restock target multiplier. Callers should rely on
// Load having validated the raw value.
func (r RestockConfig) Multiplier() decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(r.TargetMultiplier))
	if err != nil || value.LessThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(DefaultRestockMultiplier)
	}
	return value
}

func (r RestockConfig) validate() error {
	raw := strings.TrimSpace(r.TargetMultiplier)
	if raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%s must be numeric: %w", EnvRestockMultiplier, err)
	}
	if value.LessThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be greater than 1", EnvRestockMultiplier)
	}
	return nil
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BACKOFFICE_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"BACKOFFICE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"BACKOFFICE_PUBSUB_ORDERS_TOPIC" default:"backoffice-order-events"`
	ProviderOrderTopic string `envconfig:"BACKOFFICE_PUBSUB_PROVIDER_ORDERS_TOPIC" default:"backoffice-provider-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BACKOFFICE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BACKOFFICE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BACKOFFICE_OUTBOX_MAX_ATTEMPTS" default:"10"`

	PublishTimeout time.Duration `envconfig:"BACKOFFICE_OUTBOX_PUBLISH_TIMEOUT" default:"15s"`

	Retention time.Duration `envconfig:"BACKOFFICE_OUTBOX_RETENTION" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Stripe       StripeConfig
	Checkout     CheckoutConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Eventing     EventingConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRAILHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"TRAILHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TRAILHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRAILHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TRAILHOP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TRAILHOP_DB_DSN"`
	Driver string `envconfig:"TRAILHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TRAILHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"TRAILHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TRAILHOP_DB_USER"`
	LegacyPassword string `envconfig:"TRAILHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"TRAILHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"TRAILHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TRAILHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TRAILHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TRAILHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TRAILHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TRAILHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TRAILHOP_REDIS_ADDR"`
	Password     string        `envconfig:"TRAILHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"TRAILHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TRAILHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TRAILHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TRAILHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TRAILHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TRAILHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type StripeConfig struct {
	APIKey         string `envconfig:"TRAILHOP_STRIPE_API_KEY"`
	PublishableKey string `envconfig:"TRAILHOP_STRIPE_PUBLISHABLE_KEY"`
	Env            string `envconfig:"TRAILHOP_STRIPE_ENV" default:"test"`
	Country        string `envconfig:"TRAILHOP_STRIPE_ACCOUNT_COUNTRY" default:"US"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Configured reports whether the processor can be used at all. Payment
// endpoints fail fast with CONFIG_ERROR when this is false.
func (s StripeConfig) Configured() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type CheckoutConfig struct {
	SettingsURL string `envconfig:"TRAILHOP_CHECKOUT_SETTINGS_URL" required:"true"`
	CallbackURL string `envconfig:"TRAILHOP_CHECKOUT_CALLBACK_URL" required:"true"`
	ReturnURL   string `envconfig:"TRAILHOP_CHECKOUT_RETURN_URL" required:"true"`
	SuccessURL  string `envconfig:"TRAILHOP_CHECKOUT_SUCCESS_URL" required:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TRAILHOP_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"TRAILHOP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TRAILHOP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"TRAILHOP_PUBSUB_NOTIFICATION_TOPIC" default:"th-booking-events"`
	NotificationSubscription string `envconfig:"TRAILHOP_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TRAILHOP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TRAILHOP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TRAILHOP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"TRAILHOP_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TRAILHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TRAILHOP_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}

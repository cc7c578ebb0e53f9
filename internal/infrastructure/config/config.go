package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session store backends.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Port         string `env:"PORT,           default=8080"`
	Env          string `env:"ENV,            default=development"`
	LogLevel     string `env:"LOG_LEVEL,      default=info"`
	APIURL       string `env:"API_URL,        default=http://localhost:5000"`
	PaymentKeyID string `env:"PAYMENT_KEY_ID"`

	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	MockAPI MockAPIConfig
}

type SessionConfig struct {
	Store   string `env:"SESSION_STORE,   default=file"`
	File    string `env:"SESSION_FILE,    default=.pulsepr/session.json"`
	Profile string `env:"SESSION_PROFILE, default=default"`
}

// MongoConfig is optional: without a URI the attempt journal stays in memory.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=pulsepr_storefront"`
}

// RedisConfig is optional unless SESSION_STORE=redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// MockAPIConfig configures the backend emulator binary.
type MockAPIConfig struct {
	Port          string        `env:"MOCKAPI_PORT,           default=5000"`
	JWTSecret     string        `env:"MOCKAPI_JWT_SECRET,     default=dev-secret"`
	PaymentSecret string        `env:"MOCKAPI_PAYMENT_SECRET, default=dev-payment-secret"`
	AdminEmail    string        `env:"MOCKAPI_ADMIN_EMAIL,    default=admin@pulsepr.test"`
	AdminPassword string        `env:"MOCKAPI_ADMIN_PASSWORD, default=admin123"`
	TokenTTL      time.Duration `env:"MOCKAPI_TOKEN_TTL,      default=24h"`
	Seed          bool          `env:"MOCKAPI_SEED,           default=true"`
}

// IsDevelopment enables pretty logs and the swagger UI.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks the combinations envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Session.Store {
	case StoreFile:
		if c.Session.File == "" {
			return fmt.Errorf("config: SESSION_FILE is required for the file session store")
		}
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for the redis session store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.Session.Store)
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(err)
	}
	return cfg
}

package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrMissingSigningKey is returned when neither JWT_SECRET nor JWT_PRIVATE_KEY is set.
var ErrMissingSigningKey = errors.New("either JWT_SECRET or JWT_PRIVATE_KEY must be set")

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	Version        string `envconfig:"VERSION" default:"dev"`
	BcryptCost     int    `envconfig:"BCRYPT_COST" default:"12"`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"true"`

	DBMaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int32         `envconfig:"DB_MIN_CONNS" default:"0"`
	DBMaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	DBConnectTimeout  time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`

	JWTSecret     string        `envconfig:"JWT_SECRET" default:""`
	JWTPrivateKey string        `envconfig:"JWT_PRIVATE_KEY" default:""`
	JWTIssuer     string        `envconfig:"JWT_ISSUER" default:"MinimalAPI"`
	JWTAudience   string        `envconfig:"JWT_AUDIENCE" default:"https://localhost"`
	JWTExpiration time.Duration `envconfig:"JWT_EXPIRATION" default:"2h"`

	LockoutMaxFailedAttempts int           `envconfig:"LOCKOUT_MAX_FAILED_ATTEMPTS" default:"5"`
	LockoutDuration          time.Duration `envconfig:"LOCKOUT_DURATION" default:"5m"`

	LoginRatePerSecond float64 `envconfig:"LOGIN_RATE_PER_SECOND" default:"5"`
	LoginRateBurst     int     `envconfig:"LOGIN_RATE_BURST" default:"10"`

	// Optional administrator seeded at startup with the ExcludeSupplier claim.
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:""`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:""`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" && cfg.JWTPrivateKey == "" {
		return nil, ErrMissingSigningKey
	}
	return &cfg, nil
}

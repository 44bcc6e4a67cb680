package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string `env:"PORT,            default=8080"`
	Env           string `env:"ENV,             default=development"`
	LogLevel      string `env:"LOG_LEVEL,       default=info"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`

	JWT      JWTConfig
	Security SecurityConfig
	Upload   UploadConfig
	HTTP     HTTPConfig
	Audit    AuditConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type JWTConfig struct {
	Secret   string        `env:"JWT_SECRET"`
	Issuer   string        `env:"JWT_ISSUER,   default=identity-service"`
	Audience string        `env:"JWT_AUDIENCE, default=identity-clients"`
	TTL      time.Duration `env:"JWT_TTL,      default=1h"`
}

type SecurityConfig struct {
	PasswordMinLength   int           `env:"PASSWORD_MIN_LENGTH,   default=6"`
	BcryptCost          int           `env:"BCRYPT_COST,           default=10"`
	UsernameMaxAttempts int           `env:"USERNAME_MAX_ATTEMPTS, default=5"`
	ResetTokenTTL       time.Duration `env:"RESET_TOKEN_TTL,       default=15m"`
}

type UploadConfig struct {
	Dir      string `env:"UPLOAD_DIR,       default=./uploads"`
	MaxBytes int64  `env:"UPLOAD_MAX_BYTES, default=524288000"`
}

type HTTPConfig struct {
	RateLimitRPS       float64  `env:"RATE_LIMIT_RPS,       default=5"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "local")
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		errs = append(errs, errors.New("MONGO_URI and MONGO_DB are required"))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required"))
	}
	if c.Upload.Dir == "" {
		errs = append(errs, errors.New("UPLOAD_DIR is required"))
	}
	return errors.Join(errs...)
}

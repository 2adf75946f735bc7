package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "starter"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Provider      ProviderConfig
	Frontend      FrontendConfig
	CORS          CORSConfig
	Metrics       MetricsConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STARTER_APP_ENV" default:"development"`
	Port         string `envconfig:"STARTER_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"STARTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STARTER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STARTER_DB_DSN"`
	Driver string `envconfig:"STARTER_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"STARTER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STARTER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STARTER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STARTER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STARTER_REDIS_URL"`
	Address      string        `envconfig:"STARTER_REDIS_ADDR"`
	Password     string        `envconfig:"STARTER_REDIS_PASSWORD"`
	DB           int           `envconfig:"STARTER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STARTER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STARTER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STARTER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STARTER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STARTER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured at all. The API can
// run without redis; auth rate limiting is simply skipped.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STARTER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STARTER_JWT_ISSUER" default:"starter-api"`
	ExpirationMinutes int    `envconfig:"STARTER_ACCESS_TOKEN_EXPIRE_MINUTES" default:"30"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STARTER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STARTER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STARTER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STARTER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STARTER_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"STARTER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"STARTER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"STARTER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"STARTER_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"STARTER_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"STARTER_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

// ProviderConfig describes the delegated identity provider boundary. All fields
// are optional; an unconfigured provider makes delegated flows answer 501 and
// the identity resolver fall straight through to local token decoding.
type ProviderConfig struct {
	BaseURL     string        `envconfig:"STARTER_PROVIDER_URL"`
	APIKey      string        `envconfig:"STARTER_PROVIDER_KEY"`
	JWTSecret   string        `envconfig:"STARTER_PROVIDER_JWT_SECRET"`
	RedirectURL string        `envconfig:"STARTER_OAUTH_REDIRECT_URL" default:"http://localhost:8000/auth/callback"`
	Scopes      string        `envconfig:"STARTER_PROVIDER_SCOPES" default:"email profile"`
	Timeout     time.Duration `envconfig:"STARTER_PROVIDER_TIMEOUT" default:"5s"`
}

// Configured reports whether the provider can be reached at all.
func (p ProviderConfig) Configured() bool {
	return p.BaseURL != "" && p.APIKey != ""
}

type FrontendConfig struct {
	URL string `envconfig:"STARTER_FRONTEND_URL" default:"http://localhost:5000"`
}

type CORSConfig struct {
	Origins []string `envconfig:"STARTER_CORS_ORIGINS" default:"http://localhost:5000,http://localhost:3000"`
}

type MetricsConfig struct {
	Port string `envconfig:"STARTER_METRICS_PORT" default:"9090"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STARTER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STARTER_AUTO_MIGRATE" default:"false"`
}

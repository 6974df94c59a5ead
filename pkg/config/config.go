package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Shipping      ShippingConfig
	Cart          CartConfig
	Sendgrid      SendgridConfig
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
	Env          string `envconfig:"SHNJADE_APP_ENV" required:"true"`
	Port         string `envconfig:"SHNJADE_APP_PORT" required:"true"`
	SiteURL      string `envconfig:"SHNJADE_SITE_URL" required:"true"`
	LogLevel     string `envconfig:"SHNJADE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHNJADE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHNJADE_DB_DSN"`
	Driver string `envconfig:"SHNJADE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHNJADE_DB_HOST"`
	LegacyPort     int    `envconfig:"SHNJADE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHNJADE_DB_USER"`
	LegacyPassword string `envconfig:"SHNJADE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHNJADE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHNJADE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHNJADE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHNJADE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHNJADE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHNJADE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHNJADE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHNJADE_REDIS_ADDR"`
	Password     string        `envconfig:"SHNJADE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHNJADE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHNJADE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHNJADE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHNJADE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHNJADE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHNJADE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHNJADE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHNJADE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHNJADE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SHNJADE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
	CookieName             string `envconfig:"SHNJADE_SESSION_COOKIE" default:"shn_session"`
	AdminCookieName        string `envconfig:"SHNJADE_ADMIN_SESSION_COOKIE" default:"shn_admin_session"`
	CookieSecure           bool   `envconfig:"SHNJADE_SESSION_COOKIE_SECURE" default:"true"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHNJADE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHNJADE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHNJADE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHNJADE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHNJADE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHNJADE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHNJADE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHNJADE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHNJADE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHNJADE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHNJADE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHNJADE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"SHNJADE_STRIPE_API_KEY"`
	Secret string `envconfig:"SHNJADE_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"SHNJADE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// ShippingConfig holds the two-tier flat-rate shipping policy: orders at or
// above the free threshold ship free, everything else pays the flat rate.
type ShippingConfig struct {
	FreeThresholdCents int `envconfig:"SHNJADE_SHIPPING_FREE_THRESHOLD_CENTS" default:"30000"`
	FlatRateCents      int `envconfig:"SHNJADE_SHIPPING_FLAT_RATE_CENTS" default:"1500"`
}

// CartConfig holds the anonymous cookie-cart settings.
type CartConfig struct {
	CookieName   string        `envconfig:"SHNJADE_CART_COOKIE" default:"shn_cart"`
	CookieMaxAge time.Duration `envconfig:"SHNJADE_CART_COOKIE_MAX_AGE" default:"720h"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"SHNJADE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"SHNJADE_SENDGRID_FROM_EMAIL"`
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

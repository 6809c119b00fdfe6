package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "MALPRA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "MALPRA_DB_DSN"
	EnvDBHost = "MALPRA_DB_HOST"
	EnvDBUser = "MALPRA_DB_USER"
	EnvDBName = "MALPRA_DB_NAME"

	HelaPayModeSandbox = "sandbox"
	HelaPayModeLive    = "live"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	HelaPay  HelaPayConfig
	Platform PlatformConfig
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
	Env          string `envconfig:"MALPRA_APP_ENV" required:"true"`
	Port         string `envconfig:"MALPRA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MALPRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MALPRA_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"MALPRA_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MALPRA_DB_DSN"`
	Driver string `envconfig:"MALPRA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MALPRA_DB_HOST"`
	LegacyPort     int    `envconfig:"MALPRA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MALPRA_DB_USER"`
	LegacyPassword string `envconfig:"MALPRA_DB_PASSWORD"`
	LegacyName     string `envconfig:"MALPRA_DB_NAME"`
	LegacySSLMode  string `envconfig:"MALPRA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MALPRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MALPRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MALPRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MALPRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MALPRA_REDIS_URL"`
	Address      string        `envconfig:"MALPRA_REDIS_ADDR"`
	Password     string        `envconfig:"MALPRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MALPRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MALPRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MALPRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MALPRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MALPRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MALPRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MALPRA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MALPRA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MALPRA_JWT_EXPIRATION_MINUTES" default:"60"`
}

// HelaPayConfig carries the hosted-checkout gateway credentials. Sandbox and
// live credentials are both present; Mode selects which pair is active.
type HelaPayConfig struct {
	Mode string `envconfig:"MALPRA_HELAPAY_MODE" default:"sandbox"`

	MerchantIDSandbox  string `envconfig:"MALPRA_HELAPAY_MERCHANT_ID_SANDBOX"`
	MerchantIDLive     string `envconfig:"MALPRA_HELAPAY_MERCHANT_ID_LIVE"`
	SecretSandbox      string `envconfig:"MALPRA_HELAPAY_SECRET_SANDBOX"`
	SecretLive         string `envconfig:"MALPRA_HELAPAY_SECRET_LIVE"`
	CheckoutURLSandbox string `envconfig:"MALPRA_HELAPAY_CHECKOUT_URL_SANDBOX"`
	CheckoutURLLive    string `envconfig:"MALPRA_HELAPAY_CHECKOUT_URL_LIVE"`

	ReturnURL string `envconfig:"MALPRA_HELAPAY_RETURN_URL"`
	CancelURL string `envconfig:"MALPRA_HELAPAY_CANCEL_URL"`
	NotifyURL string `envconfig:"MALPRA_HELAPAY_NOTIFY_URL"`

	Currency string `envconfig:"MALPRA_HELAPAY_CURRENCY" default:"LKR"`
}

// Environment returns the normalized gateway mode (sandbox/live).
func (h HelaPayConfig) Environment() string {
	mode := strings.TrimSpace(strings.ToLower(h.Mode))
	if mode == "" {
		return HelaPayModeSandbox
	}
	return mode
}

// IsLive reports whether the live credential pair is active.
func (h HelaPayConfig) IsLive() bool {
	return h.Environment() == HelaPayModeLive
}

// MerchantID returns the merchant id for the active mode.
func (h HelaPayConfig) MerchantID() string {
	if h.IsLive() {
		return h.MerchantIDLive
	}
	return h.MerchantIDSandbox
}

// Secret returns the shared HMAC secret for the active mode.
func (h HelaPayConfig) Secret() string {
	if h.IsLive() {
		return h.SecretLive
	}
	return h.SecretSandbox
}

// CheckoutURL returns the hosted checkout endpoint for the active mode.
func (h HelaPayConfig) CheckoutURL() string {
	if h.IsLive() {
		return h.CheckoutURLLive
	}
	return h.CheckoutURLSandbox
}

type PlatformConfig struct {
	DefaultCommissionPct int    `envconfig:"MALPRA_DEFAULT_COMMISSION_PCT" default:"10"`
	CountryCode          string `envconfig:"MALPRA_COUNTRY_CODE" default:"LK"`
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

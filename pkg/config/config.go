package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "QUICKTECH"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Drawer       DrawerConfig
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
	Env          string `envconfig:"QUICKTECH_APP_ENV" default:"dev"`
	Port         string `envconfig:"QUICKTECH_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"QUICKTECH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUICKTECH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"QUICKTECH_DB_DSN"`

	Host     string `envconfig:"QUICKTECH_DB_HOST"`
	Port     int    `envconfig:"QUICKTECH_DB_PORT" default:"5432"`
	User     string `envconfig:"QUICKTECH_DB_USER"`
	Password string `envconfig:"QUICKTECH_DB_PASSWORD"`
	Name     string `envconfig:"QUICKTECH_DB_NAME"`
	SSLMode  string `envconfig:"QUICKTECH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUICKTECH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUICKTECH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUICKTECH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUICKTECH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a Postgres DSN from the discrete fields when no DSN was
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("database config incomplete: set QUICKTECH_DB_DSN or host/user/name")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"QUICKTECH_REDIS_URL"`
	Address      string        `envconfig:"QUICKTECH_REDIS_ADDR"`
	Password     string        `envconfig:"QUICKTECH_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUICKTECH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUICKTECH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUICKTECH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUICKTECH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUICKTECH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUICKTECH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DrawerConfig struct {
	LockTTL time.Duration `envconfig:"QUICKTECH_DRAWER_LOCK_TTL" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"QUICKTECH_AUTO_MIGRATE" default:"false"`
}

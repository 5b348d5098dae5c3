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
	DB           DBConfig
	Redis        RedisConfig
	PayOS        PayOSConfig
	Payment      PaymentConfig
	Notify       NotifyConfig
	Reminder     ReminderConfig
	Cron         CronConfig
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
	Env          string `envconfig:"BATCOM_APP_ENV" required:"true"`
	Port         string `envconfig:"BATCOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BATCOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BATCOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BATCOM_DB_DSN"`
	Driver string `envconfig:"BATCOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BATCOM_DB_HOST"`
	LegacyPort     int    `envconfig:"BATCOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BATCOM_DB_USER"`
	LegacyPassword string `envconfig:"BATCOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"BATCOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"BATCOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BATCOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BATCOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BATCOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BATCOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BATCOM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BATCOM_REDIS_ADDR"`
	Password     string        `envconfig:"BATCOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"BATCOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BATCOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BATCOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BATCOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BATCOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BATCOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PayOSConfig carries credentials for the hosted payment-link gateway.
type PayOSConfig struct {
	ClientID    string        `envconfig:"BATCOM_PAYOS_CLIENT_ID" required:"true"`
	APIKey      string        `envconfig:"BATCOM_PAYOS_API_KEY" required:"true"`
	ChecksumKey string        `envconfig:"BATCOM_PAYOS_CHECKSUM_KEY" required:"true"`
	BaseURL     string        `envconfig:"BATCOM_PAYOS_BASE_URL" default:"https://api-merchant.payos.vn"`
	ReturnURL   string        `envconfig:"BATCOM_PAYOS_RETURN_URL" required:"true"`
	CancelURL   string        `envconfig:"BATCOM_PAYOS_CANCEL_URL" required:"true"`
	HTTPTimeout time.Duration `envconfig:"BATCOM_PAYOS_HTTP_TIMEOUT" default:"15s"`
}

// PaymentConfig tunes tracking codes and intent lifecycle.
type PaymentConfig struct {
	CodePrefix string        `envconfig:"BATCOM_PAYMENT_CODE_PREFIX" default:"BCM"`
	MinAmount  int64         `envconfig:"BATCOM_PAYMENT_MIN_AMOUNT" default:"2000"`
	IntentTTL  time.Duration `envconfig:"BATCOM_PAYMENT_INTENT_TTL" default:"15m"`
}

type NotifyConfig struct {
	ChatWebhookURL string        `envconfig:"BATCOM_NOTIFY_CHAT_WEBHOOK_URL"`
	HTTPTimeout    time.Duration `envconfig:"BATCOM_NOTIFY_HTTP_TIMEOUT" default:"10s"`
}

// ReminderConfig bounds the unpaid-order reminder sweep to a local-time
// window so reminders never go out at night.
type ReminderConfig struct {
	Secret          string `envconfig:"BATCOM_REMINDER_SECRET"`
	WindowStartHour int    `envconfig:"BATCOM_REMINDER_WINDOW_START_HOUR" default:"14"`
	WindowEndHour   int    `envconfig:"BATCOM_REMINDER_WINDOW_END_HOUR" default:"18"`
	Timezone        string `envconfig:"BATCOM_REMINDER_TIMEZONE" default:"Asia/Ho_Chi_Minh"`
}

// Location resolves the configured timezone, falling back to UTC.
func (r ReminderConfig) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type CronConfig struct {
	Interval time.Duration `envconfig:"BATCOM_CRON_INTERVAL" default:"30m"`
	LockTTL  time.Duration `envconfig:"BATCOM_CRON_LOCK_TTL" default:"25m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BATCOM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BATCOM_AUTO_MIGRATE" default:"false"`
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

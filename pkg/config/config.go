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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Seed          SeedConfig
	FeatureFlags  FeatureFlagsConfig
	Company       CompanyConfig
	Folio         FolioConfig
	Quotes        QuotesConfig
	WhatsApp      WhatsAppConfig
	Reminder      ReminderConfig
	Audit         AuditConfig
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
	Env          string `envconfig:"COTIZADOR_APP_ENV" required:"true"`
	Port         string `envconfig:"COTIZADOR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COTIZADOR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COTIZADOR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"COTIZADOR_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"COTIZADOR_DB_DSN"`
	Driver string `envconfig:"COTIZADOR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COTIZADOR_DB_HOST"`
	LegacyPort     int    `envconfig:"COTIZADOR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COTIZADOR_DB_USER"`
	LegacyPassword string `envconfig:"COTIZADOR_DB_PASSWORD"`
	LegacyName     string `envconfig:"COTIZADOR_DB_NAME"`
	LegacySSLMode  string `envconfig:"COTIZADOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COTIZADOR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COTIZADOR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COTIZADOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COTIZADOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COTIZADOR_REDIS_URL" required:"true"`
	Password     string        `envconfig:"COTIZADOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"COTIZADOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COTIZADOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COTIZADOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COTIZADOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COTIZADOR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COTIZADOR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COTIZADOR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COTIZADOR_JWT_ISSUER" default:"cotizador"`
	ExpirationMinutes int    `envconfig:"COTIZADOR_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"COTIZADOR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COTIZADOR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COTIZADOR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COTIZADOR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COTIZADOR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"COTIZADOR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit int           `envconfig:"COTIZADOR_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit   int           `envconfig:"COTIZADOR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// SeedConfig bootstraps the first admin account on an empty database.
// Seeding is skipped entirely when the name or password is unset.
type SeedConfig struct {
	AdminName     string `envconfig:"COTIZADOR_SEED_ADMIN_NAME"`
	AdminPassword string `envconfig:"COTIZADOR_SEED_ADMIN_PASSWORD"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"COTIZADOR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"COTIZADOR_AUTO_MIGRATE" default:"false"`
}

// CompanyConfig carries the letterhead data stamped on exported documents.
type CompanyConfig struct {
	Name           string `envconfig:"COTIZADOR_COMPANY_NAME" default:"Poliutech"`
	Slogan         string `envconfig:"COTIZADOR_COMPANY_SLOGAN" default:"Recubrimientos Especializados"`
	Address        string `envconfig:"COTIZADOR_COMPANY_ADDRESS" default:""`
	Phone          string `envconfig:"COTIZADOR_COMPANY_PHONE" default:""`
	Email          string `envconfig:"COTIZADOR_COMPANY_EMAIL" default:""`
	Website        string `envconfig:"COTIZADOR_COMPANY_WEBSITE" default:""`
	Signatory      string `envconfig:"COTIZADOR_COMPANY_SIGNATORY" default:""`
	SignatoryTitle string `envconfig:"COTIZADOR_COMPANY_SIGNATORY_TITLE" default:"DIRECTOR GENERAL"`
}

type FolioConfig struct {
	Prefix string `envconfig:"COTIZADOR_FOLIO_PREFIX" default:"PTCH"`
}

type QuotesConfig struct {
	DefaultTaxRate  float64 `envconfig:"COTIZADOR_DEFAULT_TAX_RATE" default:"16"`
	DefaultCurrency string  `envconfig:"COTIZADOR_DEFAULT_CURRENCY" default:"MXN"`
	ValidityDays    int     `envconfig:"COTIZADOR_QUOTE_VALIDITY_DAYS" default:"30"`
}

type WhatsAppConfig struct {
	AccountSID       string        `envconfig:"COTIZADOR_TWILIO_ACCOUNT_SID"`
	AuthToken        string        `envconfig:"COTIZADOR_TWILIO_AUTH_TOKEN"`
	From             string        `envconfig:"COTIZADOR_WHATSAPP_FROM"`
	Recipients       []string      `envconfig:"COTIZADOR_WHATSAPP_RECIPIENTS"`
	PrimaryRecipient string        `envconfig:"COTIZADOR_WHATSAPP_PRIMARY_RECIPIENT"`
	SendTimeout      time.Duration `envconfig:"COTIZADOR_WHATSAPP_SEND_TIMEOUT" default:"10s"`
}

// Enabled reports whether outbound messaging is fully configured.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccountSID != "" && w.AuthToken != "" && w.From != "" && len(w.Recipients) > 0
}

type ReminderConfig struct {
	MinAge   time.Duration `envconfig:"COTIZADOR_REMINDER_MIN_AGE" default:"24h"`
	Cooldown time.Duration `envconfig:"COTIZADOR_REMINDER_COOLDOWN" default:"24h"`
	Interval time.Duration `envconfig:"COTIZADOR_REMINDER_INTERVAL" default:"1h"`
}

type AuditConfig struct {
	RetentionDays int           `envconfig:"COTIZADOR_AUDIT_RETENTION_DAYS" default:"90"`
	CleanupEvery  time.Duration `envconfig:"COTIZADOR_AUDIT_CLEANUP_EVERY" default:"24h"`
}

// Retention returns the audit retention window as a duration.
func (a AuditConfig) Retention() time.Duration {
	if a.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(a.RetentionDays) * 24 * time.Hour
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

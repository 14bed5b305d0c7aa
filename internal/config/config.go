package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Exports     ExportsConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
	Reports     ReportsConfig
}

type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxConn       int
	EnablePprof   bool
	EnableMetrics bool
}

// Database drivers supported by the snapshot store.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver          string
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
	SQLitePath      string
	TablePrefix     string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// JWTConfig covers the session tokens this service issues and the identity
// assertions it accepts from the upstream identity provider.
type JWTConfig struct {
	Secret           string
	Issuer           string
	SessionTTL       time.Duration
	IdentitySecret   string
	IdentityIssuer   string
	IdentityAudience string
}

type ExportsConfig struct {
	Path            string
	Retention       time.Duration
	CleanupSchedule string
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// ReportsConfig overrides the business constants of the reports. A nil field
// keeps the built-in default; zero is a valid override.
type ReportsConfig struct {
	CommissionRate     *float64
	CLVMultiplier      *float64
	VIPMinPremium      *float64
	VIPMinTenureDays   *int
	ChurnWindowDays    *int
	HighRiskDays       *int
	MediumRiskDays     *int
	GeoLimit           *int
	CLVLimit           *int
	MarketMinCustomers *int
}

// Load reads configuration from environment variables (optionally .env)
// and applies sane defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "crm-reports"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "0.0.0.0"),
			Port:          getString("SERVER_PORT", "8080"),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:       getInt("SERVER_MAX_CONN", 0),
			EnablePprof:   getBool("SERVER_ENABLE_PPROF", false),
			EnableMetrics: getBool("SERVER_ENABLE_METRICS", false),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getString("DB_DRIVER", DriverPostgres)),
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "crm_db"),
			User:            getString("DB_USER", "crm_user"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
			SQLitePath:      getString("SQLITE_PATH", "./data/crm.db"),
			TablePrefix:     getString("DB_TABLE_PREFIX", "crm_"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Issuer:     getString("JWT_ISSUER", "crm-reports"),
			SessionTTL: getDuration("SESSION_TTL", time.Hour),

			IdentitySecret:   os.Getenv("IDENTITY_JWT_SECRET"),
			IdentityIssuer:   os.Getenv("IDENTITY_JWT_ISSUER"),
			IdentityAudience: getString("IDENTITY_JWT_AUDIENCE", "crm-reports"),
		},
		Exports: ExportsConfig{
			Path:            getString("EXPORTS_BOLTDB_PATH", "./data/exports.db"),
			Retention:       getDuration("EXPORTS_RETENTION", 24*time.Hour),
			CleanupSchedule: getString("EXPORTS_CLEANUP_SCHEDULE", "@every 10m"),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
		Reports: ReportsConfig{
			CommissionRate:     lookupFloat("REPORT_COMMISSION_RATE"),
			CLVMultiplier:      lookupFloat("REPORT_CLV_MULTIPLIER"),
			VIPMinPremium:      lookupFloat("REPORT_VIP_MIN_PREMIUM"),
			VIPMinTenureDays:   lookupInt("REPORT_VIP_MIN_TENURE_DAYS"),
			ChurnWindowDays:    lookupInt("REPORT_CHURN_WINDOW_DAYS"),
			HighRiskDays:       lookupInt("REPORT_HIGH_RISK_DAYS"),
			MediumRiskDays:     lookupInt("REPORT_MEDIUM_RISK_DAYS"),
			GeoLimit:           lookupInt("REPORT_GEO_LIMIT"),
			CLVLimit:           lookupInt("REPORT_CLV_LIMIT"),
			MarketMinCustomers: lookupInt("REPORT_MARKET_MIN_CUSTOMERS"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.Secret == "" && c.Environment == "production" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.JWT.IdentitySecret == "" && c.Environment == "production" {
		return fmt.Errorf("IDENTITY_JWT_SECRET is required in production")
	}
	if c.JWT.IdentitySecret != "" && c.JWT.IdentitySecret == c.JWT.Secret {
		return fmt.Errorf("IDENTITY_JWT_SECRET must differ from JWT_SECRET")
	}
	if r := c.Reports.CommissionRate; r != nil && (*r < 0 || *r >= 1) {
		return fmt.Errorf("REPORT_COMMISSION_RATE must be in [0, 1)")
	}
	return nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

// lookupFloat returns nil when key is unset or not a number.
func lookupFloat(key string) *float64 {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return &parsed
		}
	}
	return nil
}

func lookupInt(key string) *int {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return &parsed
		}
	}
	return nil
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

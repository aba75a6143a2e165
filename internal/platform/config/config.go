package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"ishemalink/pkg/platform/fieldcipher"
	platformstrings "ishemalink/pkg/platform/strings"
)

// Config is the full process configuration, built from environment variables.
type Config struct {
	Environment string
	LogLevel    string
	Server      Server
	Postgres    PostgresConfig
	Redis       RedisConfig
	Auth        AuthConfig
	Cipher      CipherConfig
	OTP         OTPConfig
	Tariff      TariffConfig
	Notify      NotifyConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// PostgresConfig points at the system-of-record database. An empty DSN runs
// the service on in-memory stores (development only).
type PostgresConfig struct {
	DSN           string
	MigrateOnBoot bool
}

// RedisConfig configures the expiring key-value cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig holds token, session and login throttle settings.
type AuthConfig struct {
	JWTSigningKey   string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SessionTTL      time.Duration
	CookieSecure    bool
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// CipherConfig holds the base64-encoded field encryption key.
type CipherConfig struct {
	Key string
}

// OTPConfig controls one-time passcode behaviour.
type OTPConfig struct {
	TTL time.Duration
	// MaxVerifyAttempts caps failed verifies per challenge window. Zero disables the cap.
	MaxVerifyAttempts int
}

// TariffConfig controls the tariff cache.
type TariffConfig struct {
	CacheTTL time.Duration
}

// NotifyConfig selects and configures the SMS channel.
type NotifyConfig struct {
	// Driver is "log" or "kafka".
	Driver       string
	KafkaBrokers []string
	KafkaTopic   string
	SendTimeout  time.Duration
	// SimulatedLatency delays the log driver to mimic a gateway round-trip.
	SimulatedLatency time.Duration
}

const devJWTKey = "dev-secret-key-change-in-production"

// devCipherKey is a fixed development key so local data survives restarts.
// Production must set FIELD_ENCRYPTION_KEY.
const devCipherKey = "aXNoZW1hbGluay1kZXYtZmllbGQta2V5LTMyYnl0ZXM="

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	env := getEnv("APP_ENV", "development")
	return Config{
		Environment: env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: Server{
			Addr:            getEnv("ISHEMALINK_ADDR", ":8080"),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:           os.Getenv("DATABASE_URL"),
			MigrateOnBoot: getBool("DB_MIGRATE_ON_BOOT", true),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			JWTSigningKey:   getEnv("JWT_SIGNING_KEY", devJWTKey),
			JWTIssuer:       getEnv("JWT_ISSUER", "ishemalink"),
			AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
			SessionTTL:      getDuration("SESSION_TTL", 14*24*time.Hour),
			CookieSecure:    getBool("SESSION_COOKIE_SECURE", env == "production"),
			LoginRateLimit:  getInt("LOGIN_RATE_LIMIT", 5),
			LoginRateWindow: getDuration("LOGIN_RATE_WINDOW", time.Minute),
		},
		Cipher: CipherConfig{
			Key: getEnv("FIELD_ENCRYPTION_KEY", devCipherKeyFor(env)),
		},
		OTP: OTPConfig{
			TTL:               getDuration("OTP_TTL", 5*time.Minute),
			MaxVerifyAttempts: getInt("OTP_MAX_VERIFY_ATTEMPTS", 0),
		},
		Tariff: TariffConfig{
			CacheTTL: getDuration("TARIFF_CACHE_TTL", 24*time.Hour),
		},
		Notify: NotifyConfig{
			Driver:           getEnv("NOTIFY_DRIVER", "log"),
			KafkaBrokers:     platformstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			KafkaTopic:       getEnv("KAFKA_SMS_TOPIC", "notifications.sms"),
			SendTimeout:      getDuration("NOTIFY_TIMEOUT", 5*time.Second),
			SimulatedLatency: getDuration("NOTIFY_SIMULATED_LATENCY", 2*time.Second),
		},
	}
}

// Validate fails fast on settings that would corrupt data or weaken auth.
// An unusable cipher key is always fatal: a substitute key would strand every
// value sealed under the configured one.
func (c Config) Validate() error {
	var errs []error
	if _, err := fieldcipher.DecodeKey(c.Cipher.Key); err != nil {
		errs = append(errs, fmt.Errorf("FIELD_ENCRYPTION_KEY: %w", err))
	}
	if c.IsProduction() {
		if c.Auth.JWTSigningKey == devJWTKey || len(c.Auth.JWTSigningKey) < 32 {
			errs = append(errs, errors.New("JWT_SIGNING_KEY must be set to at least 32 characters in production"))
		}
		if c.Cipher.Key == devCipherKey {
			errs = append(errs, errors.New("FIELD_ENCRYPTION_KEY must not use the development key in production"))
		}
	}
	if c.Notify.Driver != "log" && c.Notify.Driver != "kafka" {
		errs = append(errs, fmt.Errorf("NOTIFY_DRIVER must be log or kafka, got %q", c.Notify.Driver))
	}
	if c.Notify.Driver == "kafka" && len(c.Notify.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when NOTIFY_DRIVER=kafka"))
	}
	if c.OTP.MaxVerifyAttempts < 0 {
		errs = append(errs, errors.New("OTP_MAX_VERIFY_ATTEMPTS must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func devCipherKeyFor(env string) string {
	if env == "production" {
		return ""
	}
	return devCipherKey
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

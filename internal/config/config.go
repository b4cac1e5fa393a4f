// Package config loads application configuration from environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// DefaultCalcomAPIBaseURL is used when CALCOM_API_BASE_URL is unset.
const DefaultCalcomAPIBaseURL = "https://api.cal.com/v2"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Port       int
	ListenHost string

	FirebaseProjectID    string
	FirebaseClientEmail  string
	FirebasePrivateKey   []byte // PEM
	FirebaseCheckRevoked bool

	CalcomAPIBaseURL string

	StoreBackend  string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// SecretKey is the AES-256 key for credentials at rest, or nil when
	// CREDENTIALS_SECRET_KEY is unset.
	SecretKey []byte

	CORSAllowedOrigins []string

	LogLevel  slog.Level
	LogFormat string
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.Port))
}

// Load reads configuration from environment variables and returns a validated Config.
// FIREBASE_PROJECT_ID, FIREBASE_CLIENT_EMAIL and FIREBASE_PRIVATE_KEY are required;
// the process must not start without them. Literal "\n" sequences in the private
// key are expanded so the key can be passed on a single line.
func Load() (*Config, error) {
	cfg := defaults()

	if err := loadFirebase(cfg); err != nil {
		return nil, err
	}
	if err := loadServer(cfg); err != nil {
		return nil, err
	}
	if err := loadStore(cfg); err != nil {
		return nil, err
	}
	if err := loadLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStore reads only the storage and logging settings. The operator CLI
// uses it so it can run without the identity provider credentials.
func LoadStore() (*Config, error) {
	cfg := defaults()

	if err := loadStore(cfg); err != nil {
		return nil, err
	}
	if err := loadLogging(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:               4000,
		CalcomAPIBaseURL:   DefaultCalcomAPIBaseURL,
		StoreBackend:       BackendSQLite,
		DBPath:             "calcom-server.db",
		RedisAddr:          "127.0.0.1:6379",
		CORSAllowedOrigins: []string{"*"},
		LogLevel:           slog.LevelInfo,
		LogFormat:          "text",
	}
}

func loadServer(cfg *Config) error {
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("PORT has invalid value %q", v)
		}
		cfg.Port = port
	}
	cfg.ListenHost = os.Getenv("LISTEN_HOST")

	if v, ok := os.LookupEnv("CALCOM_API_BASE_URL"); ok && v != "" {
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("CALCOM_API_BASE_URL must be an absolute http(s) URL, got %q", v)
		}
		cfg.CalcomAPIBaseURL = strings.TrimRight(v, "/")
	}

	if origins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS")); len(origins) > 0 {
		cfg.CORSAllowedOrigins = origins
	}
	return nil
}

func loadStore(cfg *Config) error {
	if v, ok := os.LookupEnv("STORE_BACKEND"); ok && v != "" {
		switch v = strings.ToLower(v); v {
		case BackendSQLite, BackendRedis:
			cfg.StoreBackend = v
		default:
			return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendRedis, v)
		}
	}
	if v, ok := os.LookupEnv("DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok && v != "" {
		cfg.RedisAddr = v
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v, ok := os.LookupEnv("REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil || db < 0 {
			return fmt.Errorf("REDIS_DB has invalid value %q", v)
		}
		cfg.RedisDB = db
	}

	if v, ok := os.LookupEnv("CREDENTIALS_SECRET_KEY"); ok && v != "" {
		key, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return fmt.Errorf("CREDENTIALS_SECRET_KEY is not valid base64: %w", err)
		}
		if len(key) != 32 {
			return fmt.Errorf("CREDENTIALS_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		cfg.SecretKey = key
	}
	return nil
}

func loadLogging(cfg *Config) error {
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("LOG_LEVEL has invalid value %q: %w", v, err)
		}
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok && v != "" {
		switch v = strings.ToLower(v); v {
		case "text", "json":
			cfg.LogFormat = v
		default:
			return fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", v)
		}
	}
	return nil
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadFirebase reads the service account settings. All three are required.
func loadFirebase(cfg *Config) error {
	cfg.FirebaseProjectID = strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID"))
	cfg.FirebaseClientEmail = strings.TrimSpace(os.Getenv("FIREBASE_CLIENT_EMAIL"))
	privateKey := strings.ReplaceAll(os.Getenv("FIREBASE_PRIVATE_KEY"), `\n`, "\n")

	var missing []string
	if cfg.FirebaseProjectID == "" {
		missing = append(missing, "FIREBASE_PROJECT_ID")
	}
	if cfg.FirebaseClientEmail == "" {
		missing = append(missing, "FIREBASE_CLIENT_EMAIL")
	}
	if strings.TrimSpace(privateKey) == "" {
		missing = append(missing, "FIREBASE_PRIVATE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKey)); err != nil {
		return errors.Join(errors.New("FIREBASE_PRIVATE_KEY is not a PEM-encoded RSA private key"), err)
	}
	cfg.FirebasePrivateKey = []byte(privateKey)

	if v, ok := os.LookupEnv("FIREBASE_CHECK_REVOKED"); ok && v != "" {
		revoked, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FIREBASE_CHECK_REVOKED has invalid value %q: %w", v, err)
		}
		cfg.FirebaseCheckRevoked = revoked
	}

	return nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

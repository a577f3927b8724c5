package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ProductionAPI is the backend used when the client does not run on a local
// or private-network host.
const ProductionAPI = "https://dial-in-production-0132.up.railway.app"

// LocalAPIPort is the port of a backend running next to the client.
const LocalAPIPort = "5000"

// Config aggregates all runtime settings required by the client.
type Config struct {
	AppName     string
	Environment string
	API         APIConfig
	Identity    IdentityConfig
	Redis       RedisConfig
	Refresh     RefreshConfig
	Monitor     MonitorConfig
	DevServer   DevServerConfig
	Context     ContextConfig
	Logger      LoggerConfig
}

type APIConfig struct {
	// Host is the name the client considers itself to run on. It selects the
	// backend when BaseURL is not set explicitly.
	Host    string
	BaseURL string
	Timeout time.Duration
}

// IdentityConfig selects where the signed-in identity is persisted.
type IdentityConfig struct {
	Backend      string
	KeystorePath string
	Bucket       string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	TTL      time.Duration
}

type RefreshConfig struct {
	Enabled  bool
	Schedule string
}

type MonitorConfig struct {
	Interval time.Duration
}

type DevServerConfig struct {
	Host       string
	Port       string
	BcryptCost int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level      string
	Encoding   string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

const (
	IdentityBackendBolt  = "bolt"
	IdentityBackendRedis = "redis"
)

// Load reads configuration from environment variables (optionally .env)
// and applies defaults suitable for a local development backend.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "dialin"),
		Environment: getString("APP_ENV", "development"),
		API: APIConfig{
			Host:    getString("DIALIN_HOST", "localhost"),
			BaseURL: os.Getenv("DIALIN_API_URL"),
			Timeout: getDuration("HTTP_TIMEOUT", 10*time.Second),
		},
		Identity: IdentityConfig{
			Backend:      strings.ToLower(getString("IDENTITY_BACKEND", IdentityBackendBolt)),
			KeystorePath: getString("KEYSTORE_PATH", defaultKeystorePath()),
			Bucket:       getString("KEYSTORE_BUCKET", "dialin"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			TTL:      getDuration("REDIS_IDENTITY_TTL", 30*24*time.Hour),
		},
		Refresh: RefreshConfig{
			Enabled:  getBool("REFRESH_ENABLED", true),
			Schedule: getString("REFRESH_SCHEDULE", "@every 5m"),
		},
		Monitor: MonitorConfig{
			Interval: getDuration("MONITOR_INTERVAL", 30*time.Second),
		},
		DevServer: DevServerConfig{
			Host:       getString("DEVSERVER_HOST", "127.0.0.1"),
			Port:       getString("DEVSERVER_PORT", LocalAPIPort),
			BcryptCost: getInt("DEVSERVER_BCRYPT_COST", 10),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:      getString("LOG_LEVEL", "info"),
			Encoding:   getString("LOG_ENCODING", "console"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 3),
		},
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = ResolveBaseURL(cfg.API.Host)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	switch cfg.Identity.Backend {
	case IdentityBackendBolt, IdentityBackendRedis:
	default:
		return nil, fmt.Errorf("config: unknown IDENTITY_BACKEND %q", cfg.Identity.Backend)
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// ResolveBaseURL maps the host the client runs on to a backend base URL.
// Loopback and private-network hosts talk to a backend on the same host.
func ResolveBaseURL(hostname string) string {
	if isLocalHost(hostname) {
		return fmt.Sprintf("http://%s:%s", hostname, LocalAPIPort)
	}
	return ProductionAPI
}

func isLocalHost(hostname string) bool {
	switch {
	case hostname == "localhost", hostname == "127.0.0.1":
		return true
	case strings.HasPrefix(hostname, "192.168."),
		strings.HasPrefix(hostname, "10."),
		strings.HasPrefix(hostname, "172."):
		return true
	}
	return false
}

func defaultKeystorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/dialin/keystore.db"
	}
	return "./data/keystore.db"
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

// DevServerAddress returns the listen address of the development backend.
func (c *Config) DevServerAddress() string {
	return fmt.Sprintf("%s:%s", c.DevServer.Host, c.DevServer.Port)
}

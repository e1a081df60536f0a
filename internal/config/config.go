package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends
const (
	StoreBackendMemory   = "memory"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendSQLite   = "sqlite"
)

// Wallet backends
const (
	WalletBackendRPC  = "rpc"
	WalletBackendStub = "stub"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Wallet    WalletConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Catalog   CatalogConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type StoreConfig struct {
	Backend   string
	KeyPrefix string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type WalletConfig struct {
	Backend    string
	RPCURL     string
	Timeout    time.Duration
	MaxRetries int
	// StubAccounts are the addresses the stub wallet accepts on connect
	StubAccounts []string
}

type JWTConfig struct {
	Secret        string
	SessionExpiry int // in minutes
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type CatalogConfig struct {
	Seed bool
}

// IsDevelopment reports whether the server runs outside production
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func Load() *Config {
	// .env.local wins over .env; neither overrides real environment variables
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil {
			log.Printf("Warning: Could not load %s: %v", f, err)
		}
	}

	v := viper.New()
	v.SetConfigName("codemarket")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_BACKEND", StoreBackendMemory)
	v.SetDefault("STORE_KEY_PREFIX", "codemarket")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("SQLITE_PATH", "codemarket.db")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("WALLET_BACKEND", WalletBackendStub)
	v.SetDefault("WALLET_RPC_URL", "http://localhost:8545")
	v.SetDefault("WALLET_RPC_TIMEOUT", "30s")
	v.SetDefault("WALLET_RPC_MAX_RETRIES", 3)
	v.SetDefault("WALLET_STUB_ACCOUNTS", "")
	v.SetDefault("JWT_SESSION_EXPIRY", 60)
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("CATALOG_SEED", true)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:     v.GetString("SERVER_PORT"),
			Env:      v.GetString("SERVER_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			Backend:   strings.ToLower(v.GetString("STORE_BACKEND")),
			KeyPrefix: v.GetString("STORE_KEY_PREFIX"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			Schema:   v.GetString("DB_SCHEMA"),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Wallet: WalletConfig{
			Backend:      strings.ToLower(v.GetString("WALLET_BACKEND")),
			RPCURL:       v.GetString("WALLET_RPC_URL"),
			Timeout:      v.GetDuration("WALLET_RPC_TIMEOUT"),
			MaxRetries:   v.GetInt("WALLET_RPC_MAX_RETRIES"),
			StubAccounts: splitList(v.GetString("WALLET_STUB_ACCOUNTS")),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			SessionExpiry: v.GetInt("JWT_SESSION_EXPIRY"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Catalog: CatalogConfig{
			Seed: v.GetBool("CATALOG_SEED"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted in STORAGE_TYPE.
const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Env      string
	LogLevel string
	Port     string

	MongoURI string
	MongoDB  string

	JWTSecret string
	TokenTTL  time.Duration

	StorageType    string
	UploadDir      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	RedisAddr     string
	RedisPassword string
	PostgresDSN   string

	AuthRatePerMinute int
	CORSOrigins       []string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool
}

// Load reads the optional .env files and then the process environment.
// Variables already present in the environment win over .env values.
func Load() *Config {
	if files := envFiles(); len(files) > 0 {
		_ = godotenv.Load(files...)
	}

	return &Config{
		Env:               getenv("APP_ENV", "development"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		Port:              getenv("PORT", "5000"),
		MongoURI:          getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getenv("MONGO_DB", "socialfeed"),
		JWTSecret:         getenv("JWT_SECRET", ""),
		TokenTTL:          getDuration("TOKEN_TTL", 72*time.Hour),
		StorageType:       strings.ToLower(getenv("STORAGE_TYPE", StorageLocal)),
		UploadDir:         getenv("UPLOAD_DIR", "./uploads"),
		MinioEndpoint:     getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey:    getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:    getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:       getenv("MINIO_BUCKET", "socialfeed-uploads"),
		MinioUseSSL:       getenv("MINIO_USE_SSL", "false") == "true",
		RedisAddr:         getenv("REDIS_ADDR", ""),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		PostgresDSN:       getenv("POSTGRES_DSN", ""),
		AuthRatePerMinute: getInt("AUTH_RATE_PER_MIN", 20),
		CORSOrigins:       splitList(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		TrustProxy:        getenv("TRUST_PROXY", "false") == "true",
	}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	switch c.StorageType {
	case StorageLocal, StorageMinio:
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_TYPE must be %q or %q, got %q", StorageLocal, StorageMinio, c.StorageType))
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	if c.AuthRatePerMinute <= 0 {
		problems = append(problems, "AUTH_RATE_PER_MIN must be positive")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// envFiles lists the .env files that exist, in load order.
func envFiles() []string {
	var files []string
	for _, f := range []string{".env", "config/.env"} {
		if _, err := os.Stat(f); err == nil {
			files = append(files, f)
		}
	}
	return files
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
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

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

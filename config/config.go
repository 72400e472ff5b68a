package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Port          string
	DBUrl         string
	StorageDriver string
	// Apply the embedded schema on start
	DBMigrate   bool
	FrontendURL string
	// Comma separated; FrontendURL is always allowed
	AllowedOrigins []string
	LogLevel       string
	GinMode        string
	// Auth
	JWTSecret          string
	JWTExpirationHours int
	BcryptCost         int
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	FailedLoginBlockMinutes  int
	FailedLoginMaxAttempts   int
	// Resume uploads
	UploadsPerMinute int
	UploadsPerDay    int
	MaxResumeBytes   int64
	ClamAVAddress    string
}

func LoadConfig() (*Config, error) {
	// Only effective locally; production sets real env vars
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBUrl:              getEnv("DATABASE_URL", ""),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", "")),
		DBMigrate:          getEnvBool("DB_MIGRATE", true),
		FrontendURL:        strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpirationHours: getEnvInt("JWT_EXPIRATION_HOURS", 24),
		BcryptCost:         getEnvInt("BCRYPT_COST", 10),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),    // 1 minute window
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),   // 10 auth attempts per window
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100), // 100 requests per window
		FailedLoginBlockMinutes:  getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),   // 15 minute block
		FailedLoginMaxAttempts:   getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),     // 5 failed attempts before block
		// Resume uploads
		UploadsPerMinute: getEnvInt("UPLOADS_PER_MINUTE", 10),
		UploadsPerDay:    getEnvInt("UPLOADS_PER_DAY", 50),
		MaxResumeBytes:   int64(getEnvInt("MAX_RESUME_BYTES", 5*1024*1024)),
		ClamAVAddress:    getEnv("CLAMAV_ADDRESS", ""),
	}

	if cfg.StorageDriver == "" {
		if cfg.DBUrl == "" {
			cfg.StorageDriver = StorageMemory
		} else {
			cfg.StorageDriver = StoragePostgres
		}
	}

	if cfg.StorageDriver == StoragePostgres && cfg.DBUrl == "" {
		log.Println("WARNING: STORAGE_DRIVER=postgres but DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET not configured. Using an insecure development secret.")
		cfg.JWTSecret = "dev-secret-change-me"
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// Origins returns the CORS allow list, always including FrontendURL.
func (c *Config) Origins() []string {
	origins := []string{c.FrontendURL}
	for _, o := range c.AllowedOrigins {
		if o != c.FrontendURL {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimRight(strings.TrimSpace(part), "/"); part != "" {
			out = append(out, part)
		}
	}
	return out
}

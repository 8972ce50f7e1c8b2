package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Remote REST backend
	APIBaseURL    string
	APITimeout    time.Duration
	APIMaxRetries int

	// Session. JWTSecret is optional: tokens are issued elsewhere and only
	// decoded unless a secret is configured.
	JWTSecret     string
	SessionCookie string
	UserCacheTTL  time.Duration

	AllowedOrigin string

	// Product drafts
	DraftStore      string // memory | redis
	DraftTTL        time.Duration
	MaxCombinations int
	SubmitTimeout   time.Duration
	PlaceholderRows bool

	// Redis (DraftStore=redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	POSOpenAccess bool

	// Image storage
	StorageDriver        string // local | r2
	LocalUploadDir       string
	LocalUploadURLPrefix string
	R2AccountID          string
	R2AccessKeyID        string
	R2AccessKeySecret    string
	R2BucketName         string
	R2PublicURL          string
	MaxUploadSizeMB      int64
	R2UploadTimeout      time.Duration

	CacheCategoryTTL time.Duration
	CacheProductTTL  time.Duration

	MaxCartQuantity int

	RateLimitRPS   float64
	RateLimitBurst int
}

func LoadConfig() *Config {
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// .env is optional; containers rely on the process environment.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIBaseURL:    strings.TrimSuffix(getEnv("API_BASE_URL", ""), "/"),
		APITimeout:    getDurationEnv("API_TIMEOUT", 10*time.Second),
		APIMaxRetries: getIntEnv("API_MAX_RETRIES", 2),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		SessionCookie: getEnv("SESSION_COOKIE", "accessToken"),
		UserCacheTTL:  getDurationEnv("USER_CACHE_TTL", 15*time.Minute),

		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		DraftStore:      getEnv("DRAFT_STORE", "memory"),
		DraftTTL:        getDurationEnv("DRAFT_TTL", 12*time.Hour),
		MaxCombinations: getIntEnv("MAX_COMBINATIONS", 500),
		SubmitTimeout:   getDurationEnv("SUBMIT_TIMEOUT", 30*time.Second),
		PlaceholderRows: getBoolEnv("PLACEHOLDER_ROWS", true),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		POSOpenAccess: getBoolEnv("POS_OPEN_ACCESS", false),

		StorageDriver:        getEnv("STORAGE_DRIVER", "local"),
		LocalUploadDir:       getEnv("LOCAL_UPLOAD_DIR", "./storage/uploads"),
		LocalUploadURLPrefix: getEnv("LOCAL_UPLOAD_URL_PREFIX", "/uploads"),
		R2AccountID:          getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:        getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret:    getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:         getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:          getEnv("R2_PUBLIC_URL", ""),
		MaxUploadSizeMB:      getInt64Env("MAX_UPLOAD_SIZE_MB", 10),
		R2UploadTimeout:      getDurationEnv("R2_UPLOAD_TIMEOUT", 30*time.Second),

		// 30m categories/brands, 10m product detail
		CacheCategoryTTL: getDurationEnv("CACHE_CATEGORY_TTL", 30*time.Minute),
		CacheProductTTL:  getDurationEnv("CACHE_PRODUCT_TTL", 10*time.Minute),

		MaxCartQuantity: getIntEnv("MAX_CART_QUANTITY", 1000),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

// Validate reports the first configuration problem that prevents startup.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL environment variable is required")
	}
	switch c.DraftStore {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when DRAFT_STORE=redis")
		}
	default:
		return fmt.Errorf("unknown DRAFT_STORE %q", c.DraftStore)
	}
	switch c.StorageDriver {
	case "local":
	case "r2":
		if c.R2AccountID == "" || c.R2BucketName == "" || c.R2PublicURL == "" {
			return fmt.Errorf("R2_ACCOUNT_ID, R2_BUCKET_NAME and R2_PUBLIC_URL are required when STORAGE_DRIVER=r2")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.MaxCombinations <= 0 {
		return fmt.Errorf("MAX_COMBINATIONS must be positive")
	}
	if c.JWTSecret == "" {
		// Unsigned tokens would let anyone claim the admin role.
		if !c.IsDevelopment() {
			return fmt.Errorf("JWT_SECRET is required when ENV=%s", c.Env)
		}
		log.Println("WARNING: JWT_SECRET not set, session tokens are decoded without signature verification")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev" || c.Env == ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}

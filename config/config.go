package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string
	Env  string

	MongoURI          string
	DatabaseName      string
	MongoTransactions bool

	JWTSecret string

	B2ApplicationKeyID string
	B2ApplicationKey   string
	B2BucketName       string

	MaxFileSize       int64
	StorageLimitBytes int64
	StoragePrefixes   []string

	FanOutBatchSize   int
	FanOutDedupe      bool
	AudienceQueryMode string

	StorageReportInterval time.Duration

	AllowedOrigins []string
}

var AppConfig *Config

// LoadConfig reads the environment into AppConfig and exits when it is unusable.
func LoadConfig() {
	cfg, err := FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	AppConfig = cfg

	logConfig()
	validateConfig()
}

// FromEnv builds a Config from environment variables without side effects.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		MongoURI:     getMongoURI(),
		DatabaseName: getEnv("DATABASE_NAME", "coaching_portal"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		B2ApplicationKeyID: firstEnv("B2_APPLICATION_KEY_ID", "B2_KEY_ID", "BACKBLAZE_KEY_ID"),
		B2ApplicationKey:   firstEnv("B2_APPLICATION_KEY", "B2_APP_KEY", "BACKBLAZE_APP_KEY"),
		B2BucketName:       firstEnv("B2_BUCKET_NAME", "B2_BUCKET", "BACKBLAZE_BUCKET"),

		StoragePrefixes:   parseStringSlice(getEnv("STORAGE_PREFIXES", "Gallery,pdfs,Results")),
		AudienceQueryMode: getEnv("AUDIENCE_QUERY_MODE", "compound"),

		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}

	var err error
	if cfg.MongoTransactions, err = parseBool(getEnv("MONGO_TRANSACTIONS", "true")); err != nil {
		return nil, fmt.Errorf("MONGO_TRANSACTIONS: %w", err)
	}
	if cfg.MaxFileSize, err = parseInt64(getEnv("MAX_FILE_SIZE", "26214400")); err != nil {
		return nil, fmt.Errorf("MAX_FILE_SIZE: %w", err)
	}
	if cfg.StorageLimitBytes, err = parseInt64(getEnv("STORAGE_LIMIT_BYTES", "5368709120")); err != nil {
		return nil, fmt.Errorf("STORAGE_LIMIT_BYTES: %w", err)
	}
	if cfg.FanOutBatchSize, err = strconv.Atoi(getEnv("FANOUT_BATCH_SIZE", "500")); err != nil {
		return nil, fmt.Errorf("FANOUT_BATCH_SIZE: %w", err)
	}
	if cfg.FanOutDedupe, err = parseBool(getEnv("FANOUT_DEDUPE", "false")); err != nil {
		return nil, fmt.Errorf("FANOUT_DEDUPE: %w", err)
	}
	if cfg.StorageReportInterval, err = time.ParseDuration(getEnv("STORAGE_REPORT_INTERVAL", "6h")); err != nil {
		return nil, fmt.Errorf("STORAGE_REPORT_INTERVAL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges; required secrets are checked by validateConfig.
func (c *Config) Validate() error {
	if c.FanOutBatchSize < 1 {
		return fmt.Errorf("FANOUT_BATCH_SIZE must be at least 1, got %d", c.FanOutBatchSize)
	}
	switch c.AudienceQueryMode {
	case "compound", "scan":
	default:
		return fmt.Errorf("AUDIENCE_QUERY_MODE must be compound or scan, got %q", c.AudienceQueryMode)
	}
	if c.StorageLimitBytes <= 0 {
		return fmt.Errorf("STORAGE_LIMIT_BYTES must be positive")
	}
	if len(c.StoragePrefixes) == 0 {
		return fmt.Errorf("STORAGE_PREFIXES cannot be empty")
	}
	return nil
}

func getMongoURI() string {
	if uri := firstEnv("MONGO_URI", "MONGODB_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func logConfig() {
	log.Println("Configuration loaded:")
	log.Printf("  Port: %s", AppConfig.Port)
	log.Printf("  Environment: %s", AppConfig.Env)
	log.Printf("  Database: %s", AppConfig.DatabaseName)
	log.Printf("  MongoDB URI: %s", maskConnectionString(AppConfig.MongoURI))
	log.Printf("  Mongo Transactions: %t", AppConfig.MongoTransactions)
	log.Printf("  JWT Secret: %s", maskSecret(AppConfig.JWTSecret))
	log.Printf("  B2 Key ID: %s", maskSecret(AppConfig.B2ApplicationKeyID))
	log.Printf("  B2 Bucket: %s", AppConfig.B2BucketName)
	log.Printf("  Max File Size: %d bytes", AppConfig.MaxFileSize)
	log.Printf("  Storage Limit: %d bytes over %v", AppConfig.StorageLimitBytes, AppConfig.StoragePrefixes)
	log.Printf("  Fan-out Batch Size: %d (dedupe: %t, audience: %s)", AppConfig.FanOutBatchSize, AppConfig.FanOutDedupe, AppConfig.AudienceQueryMode)
	log.Printf("  Storage Report Interval: %v", AppConfig.StorageReportInterval)
	log.Printf("  Allowed Origins: %v", AppConfig.AllowedOrigins)
}

func maskSecret(secret string) string {
	if secret == "" {
		return "[NOT SET]"
	}
	if len(secret) <= 8 {
		return "[HIDDEN]"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}

func maskConnectionString(uri string) string {
	if uri == "" {
		return "[NOT SET]"
	}
	if strings.Contains(uri, "@") {
		parts := strings.Split(uri, "@")
		if len(parts) >= 2 {
			scheme := ""
			if i := strings.Index(parts[0], "://"); i >= 0 {
				scheme = parts[0][:i+3]
			}
			return scheme + "[CREDENTIALS_HIDDEN]@" + parts[len(parts)-1]
		}
	}
	return uri
}

func validateConfig() {
	var missingVars []string

	required := map[string]string{
		"MONGO_URI/MONGODB_URI": AppConfig.MongoURI,
		"JWT_SECRET":            AppConfig.JWTSecret,
		"B2_APPLICATION_KEY_ID": AppConfig.B2ApplicationKeyID,
		"B2_APPLICATION_KEY":    AppConfig.B2ApplicationKey,
		"B2_BUCKET_NAME":        AppConfig.B2BucketName,
	}

	for key, value := range required {
		if value == "" {
			missingVars = append(missingVars, key)
		}
	}

	if len(missingVars) > 0 {
		log.Printf("Missing required environment variables: %v", missingVars)
		log.Fatal("Please set all required environment variables")
	}

	log.Println("All required environment variables are set")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

func CreateContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	var result []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

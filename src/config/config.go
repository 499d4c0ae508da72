package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
// The values are loaded from environment variables.
type AppConfig struct {
	// Core settings
	Port         string
	DatabasePath string
	LogLevel     string

	// Security settings
	JWTSecret            string
	AccessTokenExpiry    time.Duration
	MaxUploadSizeBytes   int64
	OperatorUsername     string
	OperatorPasswordHash string
	AllowedOrigins       []string

	// Data file paths
	DatasetPath string
	CutoffPath  string

	// Dashboard defaults
	DefaultEmployees int
	CacheExpiration  time.Duration
}

// Cfg is a global instance of the AppConfig.
var Cfg *AppConfig

// LoadConfig loads configuration from environment variables or a .env file.
func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		errEnv = godotenv.Load("../.env")
	}

	if errEnv != nil {
		if os.IsNotExist(errEnv) {
			log.Println("Info: No .env file found in current or parent directory. Relying on OS environment variables.")
		} else {
			log.Printf("Warning: Error loading .env file: %v. Relying on OS environment variables.", errEnv)
		}
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getRequiredEnv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		log.Fatalf("FATAL: JWT_SECRET must be at least 32 characters long, got %d.", len(jwtSecret))
	}
	operatorHash := getRequiredEnv("OPERATOR_PASSWORD_HASH")

	maxUploadSizeBytes := getEnvAsInt64("MAX_UPLOAD_SIZE_BYTES", 50*1024*1024)
	if maxUploadSizeBytes <= 0 {
		log.Printf("WARNING: MAX_UPLOAD_SIZE_BYTES must be positive, got %d. Using default 50MB.", maxUploadSizeBytes)
		maxUploadSizeBytes = 50 * 1024 * 1024
	}

	employees := getEnvAsInt("DEFAULT_EMPLOYEES", 5)
	if employees < 1 {
		log.Printf("WARNING: DEFAULT_EMPLOYEES must be at least 1, got %d. Using 5.", employees)
		employees = 5
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./faturamento.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret:            jwtSecret,
		AccessTokenExpiry:    getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 12*time.Hour),
		MaxUploadSizeBytes:   maxUploadSizeBytes,
		OperatorUsername:     getEnv("OPERATOR_USERNAME", "admin"),
		OperatorPasswordHash: operatorHash,
		AllowedOrigins:       getEnvAsList("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatasetPath: getEnv("DATASET_PATH", "Datasets/ESFT/ESFT0100_atual.parquet"),
		CutoffPath:  getEnv("CUTOFF_PATH", "cutoff_marcas.json"),

		DefaultEmployees: employees,
		CacheExpiration:  getEnvAsDuration("CACHE_EXPIRATION", 15*time.Minute),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, DatasetPath=%s, CutoffPath=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.DatasetPath, Cfg.CutoffPath)
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

// getRequiredEnv retrieves an environment variable or terminates the application if not set.
func getRequiredEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set or is empty. Application cannot start securely.", key)
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}

// getEnvAsList splits a comma-separated variable, dropping blank entries.
func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the reservations service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port string

	// Auth configuration
	JWTSecret string

	// Upstream provider configuration
	PrimaryProviderURL   string
	PrimaryProviderKey   string
	SecondaryProviderURL string
	SecondaryProviderKey string

	// Compliance configuration
	GraceDays         int
	DueSoonDays       int
	LookbackDays      int
	MetricsWindowDays int

	// Billing configuration
	CleaningVATRate float64
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "reservations"),

		// Server defaults
		Port: getEnv("PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		// Provider defaults
		PrimaryProviderURL:   getEnv("PRIMARY_PROVIDER_URL", "http://primary-provider:8080"),
		PrimaryProviderKey:   getEnv("PRIMARY_PROVIDER_KEY", ""),
		SecondaryProviderURL: getEnv("SECONDARY_PROVIDER_URL", "http://secondary-provider:8080"),
		SecondaryProviderKey: getEnv("SECONDARY_PROVIDER_KEY", ""),

		// Compliance defaults
		GraceDays:         getIntEnv("COMPLIANCE_GRACE_DAYS", 7),
		DueSoonDays:       getIntEnv("COMPLIANCE_DUE_SOON_DAYS", 7),
		LookbackDays:      getIntEnv("COMPLIANCE_LOOKBACK_DAYS", 90),
		MetricsWindowDays: getIntEnv("COMPLIANCE_METRICS_WINDOW_DAYS", 30),

		// Billing defaults
		CleaningVATRate: getFloatEnv("CLEANING_VAT_RATE", 0.23),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnv gets a float environment variable or returns a default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// Package config loads process configuration from the environment, with
// optional .env support for local development. Missing required variables
// are collected and reported together so a misconfigured deployment fails
// with one complete message.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port        int
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	SheetCSVURL string // legacy spreadsheet import source; empty disables the route
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	// Ignore the error: no .env file is the normal production case.
	_ = godotenv.Load()

	var missing []string

	cfg := &Config{
		Port:        getOptionalInt("PORT", 8080, &missing),
		MongoURI:    getRequired("MONGO_URI", &missing),
		MongoDB:     getOptional("MONGO_DB", "drivetrack"),
		JWTSecret:   getRequired("JWT_SECRET", &missing),
		TokenTTL:    getOptionalDuration("TOKEN_TTL", 24*time.Hour, &missing),
		BcryptCost:  getOptionalInt("BCRYPT_COST", 10, &missing),
		SheetCSVURL: getOptional("SHEET_CSV_URL", ""),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("config: %s", strings.Join(missing, "; "))
	}

	return cfg, nil
}

func getRequired(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptional(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getOptionalInt(key string, defaultValue int, errs *[]string) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid integer for %s: %q", key, value))
		return defaultValue
	}
	return n
}

func getOptionalDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid duration for %s: %q", key, value))
		return defaultValue
	}
	return d
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Storage drivers understood by STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port              string
	StorageDriver     string
	DatabaseURL       string
	CORSOrigins       []string
	BcryptCost        int
	PasswordMinLength int
	LogLevel          string
	LogFormat         string
	Admin             AdminConfig
}

// AdminConfig describes the optional bootstrap administrator created at startup.
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// Enabled reports whether all bootstrap admin fields were supplied.
func (a AdminConfig) Enabled() bool {
	return a.Username != "" && a.Email != "" && a.Password != ""
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "8000"),
		StorageDriver: strings.ToLower(fallback(os.Getenv("STORAGE_DRIVER"), DriverPostgres)),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		LogLevel:      strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
		LogFormat:     strings.ToLower(fallback(os.Getenv("LOG_FORMAT"), "json")),
		Admin: AdminConfig{
			Username: strings.TrimSpace(os.Getenv("ADMIN_USERNAME")),
			Email:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	cfg.BcryptCost = parseInt(os.Getenv("BCRYPT_COST"), bcrypt.DefaultCost)
	if cfg.BcryptCost < bcrypt.MinCost {
		cfg.BcryptCost = bcrypt.MinCost
	}
	if cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.MaxCost
	}

	cfg.PasswordMinLength = parseInt(os.Getenv("PASSWORD_MIN_LENGTH"), 8)
	if cfg.PasswordMinLength <= 0 {
		cfg.PasswordMinLength = 8
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	a := cfg.Admin
	if (a.Username != "" || a.Email != "" || a.Password != "") && !a.Enabled() {
		return Config{}, errors.New("ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

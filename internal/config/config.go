// Package config loads and validates application configuration from
// environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFile, when set, adds a size-rotated JSON log file next to stdout.
	LogFile string

	// LogFileMaxMB is the size in megabytes at which LogFile is rotated. Defaults to 50.
	LogFileMaxMB int

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"]. Set CORS_ORIGINS to a
	// comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps JSON request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// UploadDir is where cover photos are written. Defaults to "./uploads".
	UploadDir string

	// UploadBaseURL is the URL prefix uploaded files are served under. Defaults to "/uploads".
	UploadBaseURL string

	// MaxUploadBytes caps a single cover upload. Defaults to 5 MiB.
	MaxUploadBytes int64

	// Auth*Header name the headers the auth gateway sets for the caller.
	AuthUserHeader  string
	AuthEmailHeader string
	AuthNameHeader  string
}

// Load reads configuration from environment variables and returns a Config.
// The given dotenv files (".env" when none are given) are read first; a
// missing file is skipped and variables already in the environment win.
// Returns an error listing every required variable that is not set and every
// value that does not parse.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", f, err)
		}
	}

	var problems []string
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         os.Getenv("LOG_FILE"),
		LogFileMaxMB:    int(getInt("LOG_FILE_MAX_MB", 50, &problems)),
		CORSOrigins:     splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		MaxBodyBytes:    getInt("MAX_BODY_BYTES", 1<<20, &problems),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL:   getEnv("UPLOAD_BASE_URL", "/uploads"),
		MaxUploadBytes:  getInt("MAX_UPLOAD_BYTES", 5<<20, &problems),
		AuthUserHeader:  getEnv("AUTH_USER_HEADER", "X-User-Id"),
		AuthEmailHeader: getEnv("AUTH_EMAIL_HEADER", "X-User-Email"),
		AuthNameHeader:  getEnv("AUTH_NAME_HEADER", "X-User-Name"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		problems = append([]string{"required environment variables not set: " + strings.Join(missing, ", ")}, problems...)
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getInt parses a positive integer variable, recording a problem when the
// value is malformed.
func getInt(key string, fallback int64, problems *[]string) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		*problems = append(*problems, fmt.Sprintf("%s must be a positive integer, got %q", key, v))
		return fallback
	}
	return n
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Package config provides configuration loading from environment
// variables, with per-environment limit profiles.
package config

import (
	"os"
	"strconv"

	"github.com/usestring/strictjson/pkg/parser"
	"github.com/usestring/strictjson/pkg/types"
)

// Profile names recognized in STRICTJSON_PROFILE.
const (
	ProfileDevelopment = "development"
	ProfileStaging     = "staging"
	ProfileProduction  = "production"
)

// Config holds all configuration for the decoder and the CLI.
type Config struct {
	Profile       string                   // STRICTJSON_PROFILE, default "production"
	Limits        parser.Limits            // STRICTJSON_MAX_* overrides on the profile
	UnknownFields types.UnknownFieldPolicy // STRICTJSON_UNKNOWN_FIELDS: reject|ignore
	BatchWorkers  int                      // STRICTJSON_BATCH_WORKERS, default 8
	SchemaCache   int                      // STRICTJSON_SCHEMA_CACHE, default 64

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 3
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// profileLimits returns the base ceilings for a profile. Production
// and staging run the recommended defaults; development shrinks the
// ceilings so oversized fixtures fail loudly on a laptop before they
// fail in review.
func profileLimits(profile string) parser.Limits {
	switch profile {
	case ProfileDevelopment:
		return parser.Limits{
			MaxPayloadBytes:  1 << 20,
			MaxNestingDepth:  10,
			MaxArrayElements: 1_000,
			MaxStringBytes:   256 << 10,
		}
	default:
		return parser.DefaultLimits()
	}
}

// Load reads configuration from environment variables with sensible
// defaults. Explicit STRICTJSON_MAX_* variables win over the profile.
func Load() *Config {
	profile := getEnvString("STRICTJSON_PROFILE", ProfileProduction)
	base := profileLimits(profile)

	policy := types.RejectUnknownFields
	if getEnvString("STRICTJSON_UNKNOWN_FIELDS", "reject") == "ignore" {
		policy = types.IgnoreUnknownFields
	}

	return &Config{
		Profile: profile,
		Limits: parser.Limits{
			MaxPayloadBytes:  getEnvInt("STRICTJSON_MAX_PAYLOAD_BYTES", base.MaxPayloadBytes),
			MaxNestingDepth:  getEnvInt("STRICTJSON_MAX_NESTING_DEPTH", base.MaxNestingDepth),
			MaxArrayElements: getEnvInt("STRICTJSON_MAX_ARRAY_ELEMENTS", base.MaxArrayElements),
			MaxStringBytes:   getEnvInt("STRICTJSON_MAX_STRING_BYTES", base.MaxStringBytes),
		},
		UnknownFields: policy,
		BatchWorkers:  getEnvInt("STRICTJSON_BATCH_WORKERS", 8),
		SchemaCache:   getEnvInt("STRICTJSON_SCHEMA_CACHE", 64),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usestring/strictjson/pkg/parser"
	"github.com/usestring/strictjson/pkg/types"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ProfileProduction, cfg.Profile)
	assert.Equal(t, parser.DefaultLimits(), cfg.Limits)
	assert.Equal(t, types.RejectUnknownFields, cfg.UnknownFields)
	assert.Equal(t, 8, cfg.BatchWorkers)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadDevelopmentProfile(t *testing.T) {
	t.Setenv("STRICTJSON_PROFILE", ProfileDevelopment)
	cfg := Load()
	assert.Equal(t, 1<<20, cfg.Limits.MaxPayloadBytes)
	assert.Equal(t, 1_000, cfg.Limits.MaxArrayElements)
	assert.Equal(t, 10, cfg.Limits.MaxNestingDepth)
}

func TestExplicitLimitBeatsProfile(t *testing.T) {
	t.Setenv("STRICTJSON_PROFILE", ProfileDevelopment)
	t.Setenv("STRICTJSON_MAX_PAYLOAD_BYTES", "2048")
	cfg := Load()
	assert.Equal(t, 2048, cfg.Limits.MaxPayloadBytes)
	assert.Equal(t, 1_000, cfg.Limits.MaxArrayElements, "unset limits keep the profile value")
}

func TestUnknownFieldPolicyFromEnv(t *testing.T) {
	t.Setenv("STRICTJSON_UNKNOWN_FIELDS", "ignore")
	cfg := Load()
	assert.Equal(t, types.IgnoreUnknownFields, cfg.UnknownFields)

	t.Setenv("STRICTJSON_UNKNOWN_FIELDS", "nonsense")
	cfg = Load()
	assert.Equal(t, types.RejectUnknownFields, cfg.UnknownFields, "unrecognized values fall back to reject")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("STRICTJSON_BATCH_WORKERS", "not-a-number")
	cfg := Load()
	assert.Equal(t, 8, cfg.BatchWorkers, "unparseable ints keep the default")

	t.Setenv("LOG_COMPRESS", "off")
	cfg = Load()
	assert.False(t, cfg.LogCompress)
}

package config

import (
	"os"
	"testing"
	"time"

	"LandmarkGolang/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"
)

var envKeys = []string{
	"APP_PORT", "APP_ENV", "REPLICATE_API_TOKEN", "REPLICATE_BASE_URL",
	"DETECTOR_TIMEOUT", "DEFAULT_DETECTOR", "FACEMESH_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL_NAME",
	"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	"MAX_UPLOAD_BYTES", "RATE_LIMIT", "RATE_BURST", "BOX_COLOR",
}

// clearEnv unsets every variable LoadEnv reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadEnvRequiresReplicateToken(t *testing.T) {
	clearEnv(t)

	_, err := LoadEnv(NewValidator())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ReplicateAPIToken")
}

func TestLoadEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPLICATE_API_TOKEN", "r8_test")

	cfg, err := LoadEnv(nil)
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 60*time.Second, cfg.DetectorTimeout)
	assert.Equal(t, "mediapipe/face-mesh", cfg.DefaultDetector)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.False(t, cfg.RekognitionEnabled())
	assert.False(t, cfg.GeminiEnabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPLICATE_API_TOKEN", "r8_test")
	t.Setenv("DETECTOR_TIMEOUT", "15s")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	cfg, err := LoadEnv(nil)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.DetectorTimeout)
	assert.True(t, cfg.RekognitionEnabled())
}

func TestLoadEnvRejectsHalfAWSCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPLICATE_API_TOKEN", "r8_test")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")

	_, err := LoadEnv(nil)
	assert.Error(t, err)
}

func TestLoadEnvBoxColor(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPLICATE_API_TOKEN", "r8_test")

	cfg, err := LoadEnv(nil)
	require.NoError(t, err)
	colors, err := cfg.ColorTable()
	require.NoError(t, err)
	assert.Equal(t, colornames.Yellow, colors.Box())

	t.Setenv("BOX_COLOR", "Orange")
	cfg, err = LoadEnv(nil)
	require.NoError(t, err)
	colors, err = cfg.ColorTable()
	require.NoError(t, err)
	assert.Equal(t, colornames.Orange, colors.Box())
	nose, _ := colors.Region(entity.RegionNose)
	assert.Equal(t, colornames.Green, nose)

	t.Setenv("BOX_COLOR", "ultraviolet")
	_, err = LoadEnv(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOX_COLOR")
}

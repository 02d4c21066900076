package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "TEMP_DIR", "MAX_FILE_SIZE_BYTES", "ALLOWED_MIME_TYPES",
		"MAX_BATCH_FILES", "CHUNK_WINDOW_WORDS", "CHUNK_OVERLAP_WORDS",
		"EXTRACTOR_PYTHON", "EXTRACTOR_SCRIPT", "EXTRACTOR_TIMEOUT",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
		"GCS_BUCKET", "GEMINI_API_KEY", "GEMINI_MODEL", "JWT_SECRET",
	} {
		// t.Setenv registers cleanup restoring the original value; the
		// variable itself must be absent so defaults apply
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./public/temp", cfg.TempDir)
	assert.Equal(t, int64(10485760), cfg.MaxFileSizeBytes)
	assert.Equal(t, []string{"image/jpeg", "image/jpg", "image/png", "application/pdf"}, cfg.AllowedMimeTypes)
	assert.Equal(t, 10, cfg.MaxBatchFiles)
	assert.Equal(t, 500, cfg.ChunkWindowWords)
	assert.Equal(t, 50, cfg.ChunkOverlapWords)
	assert.Equal(t, "python", cfg.ExtractorPython)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	clearConfigEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRequired))
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ALLOWED_MIME_TYPES", "application/pdf")
	t.Setenv("EXTRACTOR_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr())
	assert.Equal(t, []string{"application/pdf"}, cfg.AllowedMimeTypes)
	assert.Equal(t, "30s", cfg.ExtractorTimeout.String())
}

func TestValidate_OverlapMustBeSmallerThanWindow(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CHUNK_WINDOW_WORDS", "100")
	t.Setenv("CHUNK_OVERLAP_WORDS", "100")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap")
}

func TestValidate_NonPositiveFileSizeRejected(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MAX_FILE_SIZE_BYTES", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_FILE_SIZE_BYTES")
}

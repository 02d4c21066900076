package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

// Config holds all runtime configuration for the server. Every component
// receives the values it needs at construction time; nothing reads the
// environment after Load returns.
type Config struct {
	ServerPort int `envconfig:"SERVER_PORT" default:"8080"`

	// Upload pipeline
	TempDir          string   `envconfig:"TEMP_DIR" default:"./public/temp"`
	MaxFileSizeBytes int64    `envconfig:"MAX_FILE_SIZE_BYTES" default:"10485760"` // 10MB
	AllowedMimeTypes []string `envconfig:"ALLOWED_MIME_TYPES" default:"image/jpeg,image/jpg,image/png,application/pdf"`
	MaxBatchFiles    int      `envconfig:"MAX_BATCH_FILES" default:"10"`

	// Chunking
	ChunkWindowWords  int `envconfig:"CHUNK_WINDOW_WORDS" default:"500"`
	ChunkOverlapWords int `envconfig:"CHUNK_OVERLAP_WORDS" default:"50"`

	// External OCR process
	ExtractorPython  string        `envconfig:"EXTRACTOR_PYTHON" default:"python"`
	ExtractorScript  string        `envconfig:"EXTRACTOR_SCRIPT" default:"./ocr.py"`
	ExtractorTimeout time.Duration `envconfig:"EXTRACTOR_TIMEOUT" default:"120s"`

	// Redis (result store)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"10"`

	// Object storage mirror (optional; disabled when bucket is empty)
	GCSBucket string `envconfig:"GCS_BUCKET"`

	// Generative analysis (optional; endpoints disabled when key is empty)
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	// Auth
	JWTSecret string `envconfig:"JWT_SECRET"`
}

// Load reads configuration from the environment, after best-effort loading of
// a local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET", ErrMissingRequired)
	}
	if c.TempDir == "" {
		return fmt.Errorf("%w: TEMP_DIR", ErrMissingRequired)
	}
	if c.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE_BYTES must be positive, got %d", c.MaxFileSizeBytes)
	}
	if len(c.AllowedMimeTypes) == 0 {
		return fmt.Errorf("%w: ALLOWED_MIME_TYPES", ErrMissingRequired)
	}
	if c.ChunkOverlapWords >= c.ChunkWindowWords {
		return fmt.Errorf("chunk overlap (%d) must be smaller than chunk window (%d)",
			c.ChunkOverlapWords, c.ChunkWindowWords)
	}
	return nil
}

// RedisAddr returns the host:port address for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Optional S3-compatible storage. Only required when publishing
	// finished recaps or when a job references s3:// assets.
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	ElevenLabsAPIKey  string
	ElevenLabsBaseURL string

	RecapsJSONKey string
	RecapsPrefix  string

	// Background-video cache shared across jobs. Entries are immutable
	// files keyed by URL digest; freshness is decided by mtime age.
	CacheDir    string
	CacheMaxAge time.Duration

	// Hard end-to-end ceiling for a single render job, child process
	// included.
	RenderTimeout time.Duration

	// Number of ffmpeg processes allowed to run at once.
	EncodeConcurrency int

	// Write an SRT sidecar next to each finished video.
	EmitSRT bool

	Silent bool
}

func LoadConfig() (Config, error) {
	cfg := Config{
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: firstNonEmpty(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_ACCESS_KEY_ID")),
		S3SecretKey: firstNonEmpty(os.Getenv("S3_SECRET_ACCESS_KEY"), os.Getenv("S3_SECRET_ACCESS_KEY_ID")),

		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL: os.Getenv("ELEVENLABS_BASE_URL"),

		RecapsJSONKey: "recaps.json",
		RecapsPrefix:  "recaps/",

		CacheDir:    filepath.Join("cache", "background-videos"),
		CacheMaxAge: 24 * time.Hour,

		RenderTimeout:     300 * time.Second,
		EncodeConcurrency: 1,

		Silent: false,
	}

	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	if v := os.Getenv("CACHE_MAX_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CacheMaxAge = d
		}
	}

	if v := os.Getenv("RENDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RenderTimeout = d
		}
	}

	if v := os.Getenv("ENCODE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.EncodeConcurrency = n
		}
	}

	if v := os.Getenv("EMIT_SRT"); v != "" {
		cfg.EmitSRT = v != "false" && v != "0"
	}

	if v := os.Getenv("SILENT"); v != "" {
		cfg.Silent = v != "false" && v != "0"
	}

	return cfg, nil
}

func (c Config) S3Configured() bool {
	return c.S3Endpoint != "" && c.S3Region != "" && c.S3Bucket != "" &&
		c.S3AccessKey != "" && c.S3SecretKey != ""
}

// RequireS3 validates the S3 settings for code paths that cannot run
// without a bucket (publishing, s3:// asset references).
func (c Config) RequireS3() error {
	if !c.S3Configured() {
		return errors.New("S3_ENDPOINT, S3_REGION, S3_BUCKET and S3 credentials are required")
	}
	return nil
}

func firstNonEmpty(v ...string) string {
	for _, s := range v {
		if s != "" {
			return s
		}
	}
	return ""
}

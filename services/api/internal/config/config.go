package config

import (
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/video-platform/internal/platform/httpclient"
)

type VideoPlatformConfig struct {
	BaseURL       string
	TokenID       string
	TokenSecret   string
	WebhookSecret string
}

type FileUploadConfig struct {
	BaseURL string
	APIKey  string
}

type WorkflowConfig struct {
	BaseURL string
	Token   string
}

type Config struct {
	DatabaseURL string
	NATSURL     string
	RedisURL    string
	// AppURL is the public base URL workflow callbacks are sent to.
	AppURL string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	VideoPlatform     VideoPlatformConfig
	FileUpload        FileUploadConfig
	Workflow          WorkflowConfig
	AuthWebhookSecret string

	// MediaDispatch is "inline" or "jetstream".
	MediaDispatch  string
	CacheTTL       time.Duration
	IdempotencyTTL time.Duration

	HTTPClient httpclient.Config
	Breaker    httpclient.BreakerConfig
}

// Load reads the API service settings. production requires the secrets that
// development may leave empty.
func Load(production bool) (Config, error) {
	cfg := Config{
		DatabaseURL: env("DATABASE_URL"),
		NATSURL:     env("NATS_URL"),
		RedisURL:    env("REDIS_URL"),
		AppURL:      strings.TrimRight(env("APP_URL"), "/"),
		JWTSecret:   env("JWT_SECRET"),
		JWTIssuer:   env("JWT_ISSUER"),
		JWTAudience: env("JWT_AUDIENCE"),
		VideoPlatform: VideoPlatformConfig{
			BaseURL:       envDefault("VIDEO_PLATFORM_BASE_URL", "https://api.mux.com"),
			TokenID:       env("VIDEO_PLATFORM_TOKEN_ID"),
			TokenSecret:   env("VIDEO_PLATFORM_TOKEN_SECRET"),
			WebhookSecret: env("VIDEO_PLATFORM_WEBHOOK_SECRET"),
		},
		FileUpload: FileUploadConfig{
			BaseURL: envDefault("FILE_UPLOAD_BASE_URL", "https://api.uploadthing.com"),
			APIKey:  env("FILE_UPLOAD_API_KEY"),
		},
		Workflow: WorkflowConfig{
			BaseURL: envDefault("WORKFLOW_BASE_URL", "https://qstash.upstash.io"),
			Token:   env("WORKFLOW_TOKEN"),
		},
		AuthWebhookSecret: env("AUTH_WEBHOOK_SECRET"),
		MediaDispatch:     strings.ToLower(envDefault("MEDIA_DISPATCH", "inline")),
		CacheTTL:          envDuration("CACHE_TTL", 30*time.Second),
		IdempotencyTTL:    envDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		HTTPClient: httpclient.Config{
			MaxRetries:     envInt("HTTP_MAX_RETRIES", 3),
			RetryBaseDelay: envDuration("HTTP_RETRY_BASE_DELAY", 500*time.Millisecond),
			Timeout:        envDuration("HTTP_TIMEOUT", 10*time.Second),
		},
		Breaker: httpclient.BreakerConfig{
			MaxRequests:      uint32(envInt("CB_MAX_REQUESTS", 5)),
			Interval:         envDuration("CB_INTERVAL", 60*time.Second),
			Timeout:          envDuration("CB_TIMEOUT", 30*time.Second),
			FailureThreshold: uint32(envInt("CB_FAILURE_THRESHOLD", 5)),
		},
	}
	if cfg.MediaDispatch != "inline" && cfg.MediaDispatch != "jetstream" {
		return Config{}, errors.New("MEDIA_DISPATCH must be inline or jetstream")
	}
	if cfg.MediaDispatch == "jetstream" && cfg.NATSURL == "" {
		return Config{}, errors.New("MEDIA_DISPATCH=jetstream requires NATS_URL")
	}
	if production {
		var missing []string
		for k, v := range map[string]string{
			"DATABASE_URL":                  cfg.DatabaseURL,
			"JWT_SECRET":                    cfg.JWTSecret,
			"VIDEO_PLATFORM_WEBHOOK_SECRET": cfg.VideoPlatform.WebhookSecret,
			"AUTH_WEBHOOK_SECRET":           cfg.AuthWebhookSecret,
		} {
			if v == "" {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return Config{}, errors.New("missing required settings in production: " + strings.Join(missing, ", "))
		}
	}
	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envDefault(key, def string) string {
	if v := env(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := env(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := env(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

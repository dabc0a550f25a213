package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"nyaya-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	AppName         string
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	OllamaURL       string
	ModelName       string
	LLMTimeout      time.Duration
	StreamPacing    time.Duration
	StreamThoughts  bool
	RateLimitRPS    float64
	RateLimitBurst  int
}

// Load reads configuration from environment variables with sensible defaults.
// Values from local env files fill in anything the environment leaves unset.
func Load() Config {
	return load(".env", "cmd/.env")
}

func load(envFiles ...string) Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	mergeEnvFiles(v, envFiles...)

	timeout := time.Duration(v.GetInt("LLM_TIMEOUT_SECONDS")) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	pacing := time.Duration(v.GetInt("STREAM_PACING_MS")) * time.Millisecond
	if pacing < 0 {
		pacing = 0
	}

	return Config{
		AppName:         v.GetString("APP_NAME"),
		Port:            v.GetString("PORT"),
		Env:             normalizeEnv(v.GetString("ENV")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		OllamaURL:       strings.TrimRight(strings.TrimSpace(v.GetString("OLLAMA_URL")), "/"),
		ModelName:       strings.TrimSpace(v.GetString("MODEL_NAME")),
		LLMTimeout:      timeout,
		StreamPacing:    pacing,
		StreamThoughts:  v.GetBool("STREAM_THOUGHTS"),
		RateLimitRPS:    v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:  v.GetInt("RATE_LIMIT_BURST"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "Nyaya AI")
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("OLLAMA_URL", "http://localhost:11434")
	v.SetDefault("MODEL_NAME", "gemma3:4b")
	v.SetDefault("LLM_TIMEOUT_SECONDS", 120)
	v.SetDefault("STREAM_PACING_MS", 0)
	v.SetDefault("STREAM_THOUGHTS", false)
	v.SetDefault("RATE_LIMIT_RPS", 1)
	v.SetDefault("RATE_LIMIT_BURST", 10)
}

// mergeEnvFiles is a best-effort loader of KEY=VALUE files for local development.
// Missing files are skipped; malformed files are logged and skipped.
func mergeEnvFiles(v *viper.Viper, paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.MergeInConfig(); err != nil {
			telemetry.Warn("config.env_file_invalid", map[string]any{
				"path":  path,
				"error": err,
			})
		}
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

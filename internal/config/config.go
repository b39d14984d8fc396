package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates the configuration for the whole service.
type Config struct {
	Server     ServerConfig
	Generation GenerationConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	generation, err := loadGenerationConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Generation: generation}, nil
}

// ServerConfig describes the HTTP server.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// GenerationConfig describes the external text-generation service. Two
// transports are supported: the Gemini REST API (default) and Volcengine
// Ark via eino for deployments that already hold Ark credentials.
type GenerationConfig struct {
	// Gemini transport.
	GeminiAPIKey string
	GeminiModel  string
	BaseURL      string

	// Ark transport.
	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkModel     string
	ArkBaseURL   string
	ArkRegion    string

	// Generation budget, fixed per deployment.
	MaxOutputTokens int
	Temperature     float64
	TopP            float64

	// Outbound call timeout in seconds; a timeout surfaces to callers as an
	// ordinary generation failure.
	TimeoutSeconds int
}

// GeminiEnabled reports whether the Gemini transport can be used.
func (c GenerationConfig) GeminiEnabled() bool {
	return c.GeminiAPIKey != "" && c.GeminiModel != ""
}

// ArkEnabled reports whether the Ark transport can be used.
func (c GenerationConfig) ArkEnabled() bool {
	return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
}

// Enabled reports whether any generation transport is configured.
func (c GenerationConfig) Enabled() bool {
	return c.GeminiEnabled() || c.ArkEnabled()
}

// NewArkChatModel builds an eino chat model from the Ark credentials.
func (c GenerationConfig) NewArkChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.ArkEnabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY plus ARK_MODEL")
	}

	temperature := float32(c.Temperature)
	topP := float32(c.TopP)
	maxTokens := c.MaxOutputTokens

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.ArkModel,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadGenerationConfig() (GenerationConfig, error) {
	maxTokens, err := parseIntEnv("GENERATION_MAX_TOKENS", 300)
	if err != nil {
		return GenerationConfig{}, err
	}

	temperature, err := parseFloatEnv("GENERATION_TEMPERATURE", 0.6)
	if err != nil {
		return GenerationConfig{}, err
	}

	topP, err := parseFloatEnv("GENERATION_TOP_P", 0.85)
	if err != nil {
		return GenerationConfig{}, err
	}

	timeout, err := parseIntEnv("GENERATION_TIMEOUT", 30)
	if err != nil {
		return GenerationConfig{}, err
	}

	return GenerationConfig{
		GeminiAPIKey:    strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:     getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		BaseURL:         getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		ArkAPIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:        strings.TrimSpace(os.Getenv("ARK_MODEL")),
		ArkBaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		MaxOutputTokens: maxTokens,
		Temperature:     temperature,
		TopP:            topP,
		TimeoutSeconds:  timeout,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

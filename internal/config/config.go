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

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server ServerConfig
	Collab CollabConfig
	Speech SpeechConfig
	Auth   AuthConfig
	AI     AIConfig
}

// Load reads and validates the full configuration.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	collab, err := loadCollabConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Collab: collab, Speech: speech, Auth: auth, AI: ai}, nil
}

// ServerConfig describes the HTTP listener.
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

// CollabConfig points at the chat/translate/fetch collaborator endpoints.
// They live under one base URL, the same way the frontend consumed them.
type CollabConfig struct {
	BaseURL string
	Timeout int // seconds, applied to every collaborator request
}

// ChatEnabled reports whether the remote chat endpoint is configured.
func (c CollabConfig) ChatEnabled() bool { return c.BaseURL != "" }

func loadCollabConfig() (CollabConfig, error) {
	timeout, err := parseOptionalIntEnv("COLLAB_TIMEOUT")
	if err != nil {
		return CollabConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	return CollabConfig{
		BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("API_BASE_URL")), "/"),
		Timeout: timeoutSeconds,
	}, nil
}

// SpeechConfig describes the synthesis collaborator.
type SpeechConfig struct {
	APIKey          string
	BaseURL         string
	ModelID         string
	DefaultVoice    string
	Stability       float32
	SimilarityBoost float32
	Timeout         int
	SpeakDelayMS    int
	Enabled         bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("TTS_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	stability, err := parseOptionalFloat32Env("TTS_STABILITY")
	if err != nil {
		return SpeechConfig{}, err
	}
	stabilityVal := float32(0.5)
	if stability != nil {
		stabilityVal = *stability
	}

	similarity, err := parseOptionalFloat32Env("TTS_SIMILARITY_BOOST")
	if err != nil {
		return SpeechConfig{}, err
	}
	similarityVal := float32(0.5)
	if similarity != nil {
		similarityVal = *similarity
	}

	delay, err := parseOptionalIntEnv("TTS_SPEAK_DELAY_MS")
	if err != nil {
		return SpeechConfig{}, err
	}
	// Gap between appending a partner message and starting playback, so
	// audio never starts before the client has painted the message.
	delayMS := 500
	if delay != nil {
		delayMS = *delay
	}

	apiKey := strings.TrimSpace(os.Getenv("TTS_API_KEY"))

	return SpeechConfig{
		APIKey:          apiKey,
		BaseURL:         getEnvOrDefault("TTS_BASE_URL", "https://api.elevenlabs.io"),
		ModelID:         getEnvOrDefault("TTS_MODEL_ID", "eleven_multilingual_v2"),
		DefaultVoice:    strings.TrimSpace(os.Getenv("TTS_DEFAULT_VOICE")),
		Stability:       stabilityVal,
		SimilarityBoost: similarityVal,
		Timeout:         timeoutSeconds,
		SpeakDelayMS:    delayMS,
		Enabled:         apiKey != "",
	}, nil
}

// AuthConfig describes the sign-in profile lifecycle.
type AuthConfig struct {
	CookieName     string
	ProfileTTLDays int
}

func loadAuthConfig() (AuthConfig, error) {
	ttl, err := parseOptionalIntEnv("AUTH_PROFILE_TTL_DAYS")
	if err != nil {
		return AuthConfig{}, err
	}
	ttlDays := 30
	if ttl != nil {
		if *ttl < 1 {
			return AuthConfig{}, fmt.Errorf("AUTH_PROFILE_TTL_DAYS must be positive, got %d", *ttl)
		}
		ttlDays = *ttl
	}

	return AuthConfig{
		CookieName:     getEnvOrDefault("AUTH_COOKIE_NAME", "userProfile"),
		ProfileTTLDays: ttlDays,
	}, nil
}

// AIConfig describes the optional in-process chat model, used when no
// remote chat collaborator is configured.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required model credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel constructs a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}

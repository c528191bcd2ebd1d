package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/proposal-agent/backend/internal/service/ai"
)

const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"

	defaultOpenAIModel = "gpt-4o"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Log    LogConfig
}

// Load 从环境变量加载配置。.env 由调用方预先载入。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings that cannot describe a working service. Missing
// credentials are not an error here: they degrade the pipeline instead.
func (c *Config) Validate() error {
	if _, err := c.Server.Addr(); err != nil {
		return err
	}

	switch c.AI.Provider {
	case ProviderOpenAI, ProviderArk:
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("AI_TEMPERATURE must be within [0, 2], got %v", c.AI.Temperature)
	}
	if c.AI.RequestTimeout <= 0 {
		return errors.New("AI_REQUEST_TIMEOUT must be positive")
	}
	if c.AI.HistoryLimit < 0 {
		return errors.New("AI_HISTORY_LIMIT must not be negative")
	}
	return nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Addr 解析服务器监听地址。
func (c ServerConfig) Addr() (string, error) {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// LogConfig 控制日志输出。
type LogConfig struct {
	Debug bool `env:"LOG_DEBUG" envDefault:"false"`
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider        string        `env:"AI_PROVIDER" envDefault:"openai"`
	Model           string        `env:"AI_MODEL"`
	Temperature     float64       `env:"AI_TEMPERATURE" envDefault:"0.7"`
	RequestTimeout  time.Duration `env:"AI_REQUEST_TIMEOUT" envDefault:"60s"`
	HistoryLimit    int           `env:"AI_HISTORY_LIMIT" envDefault:"0"`
	InstructionFile string        `env:"PROPOSAL_INSTRUCTION_FILE"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	ArkAPIKey    string `env:"ARK_API_KEY"`
	ArkAccessKey string `env:"ARK_ACCESS_KEY"`
	ArkSecretKey string `env:"ARK_SECRET_KEY"`
	ArkBaseURL   string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion    string `env:"ARK_REGION" envDefault:"cn-beijing"`
}

// ModelName 返回实际使用的模型标识。
func (c AIConfig) ModelName() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	if c.Provider == ProviderOpenAI {
		return defaultOpenAIModel
	}
	return ""
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	if c.ModelName() == "" {
		return false
	}
	switch c.Provider {
	case ProviderOpenAI:
		return strings.TrimSpace(c.OpenAIAPIKey) != ""
	case ProviderArk:
		return c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != "")
	default:
		return false
	}
}

// PipelineConfig 生成会话管线参数。
func (c AIConfig) PipelineConfig(instruction string) ai.Config {
	return ai.Config{
		Instruction:  instruction,
		Timeout:      c.RequestTimeout,
		HistoryLimit: c.HistoryLimit,
	}
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s credentials or model missing", c.Provider)
	}

	temperature := float32(c.Temperature)

	switch c.Provider {
	case ProviderOpenAI:
		m, err := ai.NewOpenAIChatModel(ctx, ai.OpenAIConfig{
			APIKey:      c.OpenAIAPIKey,
			BaseURL:     c.OpenAIBaseURL,
			Model:       c.ModelName(),
			Temperature: &temperature,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	case ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			BaseURL:     c.ArkBaseURL,
			Region:      c.ArkRegion,
			APIKey:      c.ArkAPIKey,
			AccessKey:   c.ArkAccessKey,
			SecretKey:   c.ArkSecretKey,
			Model:       c.ModelName(),
			Temperature: &temperature,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}

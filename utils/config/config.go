package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kacperborowieckb/schema-wizard/utils/env"
)

type Config struct {
	App       AppConfig       `toml:"app"`
	API       APIConfig       `toml:"api"`
	Designer  DesignerConfig  `toml:"designer"`
	Generator GeneratorConfig `toml:"generator"`
	LLM       LLMConfig       `toml:"llm"`
	RabbitMQ  RabbitMQConfig  `toml:"rabbitmq"`
}

type AppConfig struct {
	Name string `toml:"name"`
	Env  string `toml:"env"`
}

type APIConfig struct {
	Port                  string `toml:"port"`
	DesignerAddr          string `toml:"designer_addr"`
	DesignerInsecure      bool   `toml:"designer_insecure"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

type DesignerConfig struct {
	Port string `toml:"port"`
}

type GeneratorConfig struct {
	Port                string `toml:"port"`
	DesignerAddr        string `toml:"designer_addr"`
	AutoGenerateSchemas bool   `toml:"auto_generate_schemas"`
}

type LLMConfig struct {
	DefaultModel   string `toml:"default_model"`
	GeminiAPIKey   string `toml:"gemini_api_key"`
	OpenAIBaseURL  string `toml:"openai_base_url"`
	OpenAIAPIKey   string `toml:"openai_api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// RabbitMQConfig with an empty URL disables stage events.
type RabbitMQConfig struct {
	URL string `toml:"url"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	path := env.GetString("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	overrideByEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutSeconds) * time.Second
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) validate() error {
	if c.API.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("api.request_timeout_seconds must be positive, got %d", c.API.RequestTimeoutSeconds)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}
	if c.LLM.DefaultModel == "" {
		return fmt.Errorf("llm.default_model is required")
	}

	return nil
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name: "schema-wizard",
			Env:  "dev",
		},
		API: APIConfig{
			Port:                  "8080",
			DesignerAddr:          "localhost:8081",
			DesignerInsecure:      true,
			RequestTimeoutSeconds: 180,
		},
		Designer: DesignerConfig{
			Port: "8081",
		},
		Generator: GeneratorConfig{
			Port:                "8082",
			DesignerAddr:        "localhost:8081",
			AutoGenerateSchemas: false,
		},
		LLM: LLMConfig{
			DefaultModel:   "gemini-2.0-flash-lite",
			TimeoutSeconds: 120,
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = env.GetString("APP_NAME", cfg.App.Name)
	cfg.App.Env = env.GetString("APP_ENV", cfg.App.Env)

	cfg.API.Port = env.GetString("API_PORT", cfg.API.Port)
	cfg.API.DesignerAddr = env.GetString("DESIGNER_SERVICE_ADDR", cfg.API.DesignerAddr)
	cfg.API.DesignerInsecure = env.GetBool("DESIGNER_SERVICE_INSECURE", cfg.API.DesignerInsecure)
	cfg.API.RequestTimeoutSeconds = env.GetInt("API_REQUEST_TIMEOUT_SECONDS", cfg.API.RequestTimeoutSeconds)

	cfg.Designer.Port = env.GetString("DESIGNER_PORT", cfg.Designer.Port)

	cfg.Generator.Port = env.GetString("GENERATOR_PORT", cfg.Generator.Port)
	cfg.Generator.DesignerAddr = env.GetString("GENERATOR_DESIGNER_ADDR", cfg.Generator.DesignerAddr)
	cfg.Generator.AutoGenerateSchemas = env.GetBool("GENERATOR_AUTO_SCHEMAS", cfg.Generator.AutoGenerateSchemas)

	cfg.LLM.DefaultModel = env.GetString("LLM_DEFAULT_MODEL", cfg.LLM.DefaultModel)
	cfg.LLM.GeminiAPIKey = env.GetString("GEMINI_API_KEY", cfg.LLM.GeminiAPIKey)
	cfg.LLM.OpenAIBaseURL = env.GetString("OPENAI_BASE_URL", cfg.LLM.OpenAIBaseURL)
	cfg.LLM.OpenAIAPIKey = env.GetString("OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.TimeoutSeconds = env.GetInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.RabbitMQ.URL = env.GetString("AMQP_URL", cfg.RabbitMQ.URL)
}

package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
	Server      struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	Database struct {
		PostgresDSN         string `mapstructure:"postgresDSN"`
		PostgresAutoMigrate bool   `mapstructure:"postgresAutoMigrate"`
	} `mapstructure:"database"`
	Organization struct {
		CountryCode string `mapstructure:"countryCode"` // country calling-code prefix for phone canonicalization
	} `mapstructure:"organization"`
	AI      AIConfig      `mapstructure:"ai"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

// AIConfig holds completion-service settings and the canned-reply pools used
// when generation degrades.
type AIConfig struct {
	BaseURL          string        `mapstructure:"baseURL"`
	APIKey           string        `mapstructure:"apiKey"`
	Model            string        `mapstructure:"model"`
	Temperature      float32       `mapstructure:"temperature"`
	FrequencyPenalty float32       `mapstructure:"frequencyPenalty"`
	MaxTokens        int           `mapstructure:"maxTokens"`
	HistoryLimit     int           `mapstructure:"historyLimit"` // prior transcript turns included as context
	Timeout          time.Duration `mapstructure:"timeout"`
	GreetingPool     []string      `mapstructure:"greetingPool"` // used when generation fails outright
	SignoffPool      []string      `mapstructure:"signoffPool"`  // used when the model returns empty content
}

// GatewayConfig holds messaging-gateway settings.
type GatewayConfig struct {
	BaseURL        string        `mapstructure:"baseURL"`
	APIKey         string        `mapstructure:"apiKey"`
	MessageDelayMs int           `mapstructure:"messageDelayMs"` // inter-message delay hint sent with every text
	Timeout        time.Duration `mapstructure:"timeout"`
}

// DefaultGreetingPool is used when no pool is configured.
var DefaultGreetingPool = []string{
	"Olá! Recebemos a sua mensagem e já estamos verificando as informações para te ajudar.",
	"Oi! Obrigado pelo contato. Em instantes retomamos a nossa conversa.",
	"Olá! Estamos à disposição para tirar as suas dúvidas sobre os nossos cursos.",
}

// DefaultSignoffPool is used when no pool is configured.
var DefaultSignoffPool = []string{
	"Qualquer dúvida, é só chamar por aqui!",
	"Estamos por aqui se precisar de mais alguma coisa.",
	"Conte com a gente para o que precisar!",
}

// LoadConfig reads configuration from file or environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("environment", "development")
	v.SetDefault("logLevel", "info")
	v.SetDefault("server.port", 8080)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("database.postgresAutoMigrate", true)
	v.SetDefault("organization.countryCode", "55")

	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.frequencyPenalty", 0.3)
	v.SetDefault("ai.maxTokens", 300)
	v.SetDefault("ai.historyLimit", 10)
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.greetingPool", DefaultGreetingPool)
	v.SetDefault("ai.signoffPool", DefaultSignoffPool)

	v.SetDefault("gateway.messageDelayMs", 1200)
	v.SetDefault("gateway.timeout", 15*time.Second)

	// Config file settings
	v.SetConfigName("default")
	v.SetConfigType("yaml")

	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath("/etc/leadtalk-webhook-processor")

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, env vars cover it
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, Config{})

	// Read directly from ENV for critical values
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		v.Set("database.postgresDSN", dsn)
	}
	if lgLevel := os.Getenv("LOG_LEVEL"); lgLevel != "" {
		v.Set("logLevel", lgLevel)
	}
	if key := os.Getenv("AI_API_KEY"); key != "" {
		v.Set("ai.apiKey", key)
	}
	if url := os.Getenv("AI_BASE_URL"); url != "" {
		v.Set("ai.baseURL", url)
	}
	if key := os.Getenv("GATEWAY_API_KEY"); key != "" {
		v.Set("gateway.apiKey", key)
	}
	if url := os.Getenv("GATEWAY_BASE_URL"); url != "" {
		v.Set("gateway.baseURL", url)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &config, nil
}

// bindEnvs recursively binds environment variables to config struct fields
func bindEnvs(v *viper.Viper, cfg interface{}, parts ...string) {
	ifv := reflect.ValueOf(cfg)
	ift := reflect.TypeOf(cfg)
	for i := 0; i < ift.NumField(); i++ {
		fieldVal := ifv.Field(i)
		fieldType := ift.Field(i)

		tag := fieldType.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}

		path := append(parts, tag)
		key := strings.Join(path, ".")

		if fieldType.Type.Kind() == reflect.Struct {
			bindEnvs(v, fieldVal.Interface(), path...)
			continue
		}

		_ = v.BindEnv(key)
	}
}

package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Session   SessionConfig   `mapstructure:"session"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type AssistantConfig struct {
	// Delay before a scheduled follow-up message (feedback prompt,
	// volunteer offer, off-topic reminder) is delivered.
	FollowUpDelay time.Duration `mapstructure:"follow_up_delay"`
	// Urgent warnings are delivered faster than ordinary follow-ups.
	UrgentDelay time.Duration `mapstructure:"urgent_delay"`
	// Unhelpful-feedback count at which the orchestrator offers a human
	// volunteer instead of asking for more detail.
	VolunteerThreshold int `mapstructure:"volunteer_threshold"`
}

type SessionConfig struct {
	InactivityLimit time.Duration `mapstructure:"inactivity_limit"`
	WatchInterval   time.Duration `mapstructure:"watch_interval"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	DataDir   string `mapstructure:"data_dir"`
	CacheSize int    `mapstructure:"cache_size"`
}

type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("WARMHOME")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Config file wins; fall back to environment for secrets.
	if cfg.Gemini.APIKey == "" {
		if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
			cfg.Gemini.APIKey = apiKey
		}
	}
	if cfg.Mongo.URI == "" {
		if uri := os.Getenv("MONGODB_URI"); uri != "" {
			cfg.Mongo.URI = uri
		}
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(c *Config) {
	if c.Session.InactivityLimit == 0 {
		c.Session.InactivityLimit = 15 * time.Minute
	}
	if c.Session.WatchInterval == 0 {
		c.Session.WatchInterval = time.Second
	}
	if c.Assistant.FollowUpDelay == 0 {
		c.Assistant.FollowUpDelay = time.Second
	}
	if c.Assistant.UrgentDelay == 0 {
		c.Assistant.UrgentDelay = 500 * time.Millisecond
	}
	if c.Assistant.VolunteerThreshold == 0 {
		c.Assistant.VolunteerThreshold = 2
	}
}

func Get() *Config {
	return cfg
}

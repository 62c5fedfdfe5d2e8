package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Locations []Location      `mapstructure:"locations"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RedisConfig enables the durable backend. Enabled must be true AND both
// URL and Token must be present for the durable store to be used; anything
// else selects the in-process fallback.
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
}

type CacheConfig struct {
	TTLSeconds int    `mapstructure:"ttl_seconds"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// RateLimitConfig holds the per-class admission policies. Keys are the
// request classes produced by the classifier: api, auth, reservation, search.
type RateLimitConfig struct {
	Policies map[string]PolicyConfig `mapstructure:"policies"`
}

type PolicyConfig struct {
	Limit         int    `mapstructure:"limit"`
	WindowSeconds int    `mapstructure:"window_seconds"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

// Location is a rental pickup location served by the locations endpoint.
type Location struct {
	Slug string `mapstructure:"slug" json:"slug"`
	Name string `mapstructure:"name" json:"name"`
	City string `mapstructure:"city" json:"city"`
}

var globalConfig Config

func Load(configPath string) error {
	err := loadConfigFile(configPath, "config", &globalConfig)

	// defaults apply even when the file is unreadable: a gateway must never
	// start without a policy table
	setDefaultValues()

	if err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var notFound error
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
		}
		// keep going: environment variables still apply below
		notFound = fmt.Errorf("config file %s.yaml not found, using defaults and environment variables", fileName)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return notFound
}

func setDefaultValues() {
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.Server.MetricsPort == 0 {
		globalConfig.Server.MetricsPort = 9090
	}
	if globalConfig.Cache.TTLSeconds == 0 {
		globalConfig.Cache.TTLSeconds = 300
	}
	if globalConfig.Cache.KeyPrefix == "" {
		globalConfig.Cache.KeyPrefix = "cache"
	}
	if globalConfig.RateLimit.Policies == nil {
		globalConfig.RateLimit.Policies = make(map[string]PolicyConfig)
	}
	for name, policy := range defaultPolicies() {
		if _, ok := globalConfig.RateLimit.Policies[name]; !ok {
			globalConfig.RateLimit.Policies[name] = policy
		}
	}
}

func defaultPolicies() map[string]PolicyConfig {
	return map[string]PolicyConfig{
		"api":         {Limit: 100, WindowSeconds: 60, KeyPrefix: "ratelimit:api"},
		"auth":        {Limit: 10, WindowSeconds: 60, KeyPrefix: "ratelimit:auth"},
		"reservation": {Limit: 5, WindowSeconds: 60, KeyPrefix: "ratelimit:reservation"},
		"search":      {Limit: 30, WindowSeconds: 60, KeyPrefix: "ratelimit:search"},
	}
}

func GetConfig() *Config {
	return &globalConfig
}

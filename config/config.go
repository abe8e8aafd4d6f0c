// Package config loads runtime configuration the way the rest of the
// module expects it: defaults first, then an optional config file, then
// FEATOPS_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	internal "featops/internal"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Runtime    RuntimeConfig    `mapstructure:"runtime"`
	Store      StoreConfig      `mapstructure:"store"`
	Vectorizer VectorizerConfig `mapstructure:"vectorizer"`
}

// RuntimeConfig stores kernel-executor settings.
type RuntimeConfig struct {
	// MaxWorkers bounds batch concurrency; zero lets the executor pick.
	MaxWorkers int `mapstructure:"maxWorkers"`
	// ExecutionProvider names the preferred provider ("cpu" is the only
	// in-process one).
	ExecutionProvider string `mapstructure:"executionProvider"`
	// OpsetVersion is the opset requested when resolving kernels.
	OpsetVersion int `mapstructure:"opsetVersion"`
}

// StoreConfig stores model-state store settings.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// VectorizerConfig stores fitting defaults.
type VectorizerConfig struct {
	Analyzer       string  `mapstructure:"analyzer"`
	NgramMin       int     `mapstructure:"ngramMin"`
	NgramMax       int     `mapstructure:"ngramMax"`
	Binary         bool    `mapstructure:"binary"`
	MaxFeatures    int     `mapstructure:"maxFeatures"`
	MinDocFreq     int     `mapstructure:"minDocFreq"`
	MaxDocFraction float64 `mapstructure:"maxDocFraction"`
	Norm           string  `mapstructure:"norm"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(internal.DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetDefault("runtime.maxWorkers", 0)
	v.SetDefault("runtime.executionProvider", "cpu")
	v.SetDefault("runtime.opsetVersion", 1)
	v.SetDefault("store.path", internal.DefaultStorePath)
	v.SetDefault("vectorizer.analyzer", "word")
	v.SetDefault("vectorizer.ngramMin", 1)
	v.SetDefault("vectorizer.ngramMax", 1)
	v.SetDefault("vectorizer.binary", false)
	v.SetDefault("vectorizer.maxFeatures", 0)
	v.SetDefault("vectorizer.minDocFreq", 1)
	v.SetDefault("vectorizer.maxDocFraction", 0)
	v.SetDefault("vectorizer.norm", "l2")

	v.SetEnvPrefix(strings.ToUpper(internal.DefaultAppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file falls back to defaults; anything else is
		// a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if cfg.Vectorizer.NgramMin < 1 || cfg.Vectorizer.NgramMax < cfg.Vectorizer.NgramMin {
		return nil, fmt.Errorf("config: invalid n-gram range [%d, %d]",
			cfg.Vectorizer.NgramMin, cfg.Vectorizer.NgramMax)
	}
	return &cfg, nil
}

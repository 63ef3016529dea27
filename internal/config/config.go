package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds voxredact configuration.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Dataset DatasetConfig `yaml:"dataset"`
	Decode  DecodeConfig  `yaml:"decode"`
	Workers int           `yaml:"workers"` // parallel utterances at predict time; 0 = NumCPU
}

type ModelConfig struct {
	Dir          string `yaml:"dir"`           // directory with model.onnx + tokenizer assets
	SeqLen       int    `yaml:"seq_len"`       // inference sequence length
	MaxSessions  int    `yaml:"max_sessions"`  // ONNX session pool size
	IntraThreads int    `yaml:"intra_threads"` // threads within one op
	InterThreads int    `yaml:"inter_threads"` // threads across ops
}

type DatasetConfig struct {
	MaxLength int    `yaml:"max_length"` // fixed encode length for training examples
	Alignment string `yaml:"alignment"`  // first_char | majority
}

type DecodeConfig struct {
	// Strict makes the predict CLI report repaired BIO transitions per run.
	// Decoding itself always recovers; this only surfaces the count.
	Strict bool `yaml:"strict"`
}

// Load reads configuration from a YAML file. A missing file yields the
// default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Model.Dir == "" {
		cfg.Model.Dir = "out"
	}
	if cfg.Model.SeqLen <= 0 {
		cfg.Model.SeqLen = 128
	}
	if cfg.Dataset.MaxLength <= 0 {
		cfg.Dataset.MaxLength = 128
	}
	if cfg.Dataset.Alignment == "" {
		cfg.Dataset.Alignment = "first_char"
	}
}

package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMb"`
		MaxBackups int    `yaml:"maxBackups"`
		MaxAgeDays int    `yaml:"maxAgeDays"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Pinecone struct {
		Host      string `yaml:"host"`
		APIKey    string `yaml:"apiKey"`
		Namespace string `yaml:"namespace"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"pinecone"`
	HuggingFace struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseUrl"`
	} `yaml:"huggingface"`
	Classroom struct {
		BaseURL string `yaml:"baseUrl"`
		Enabled bool   `yaml:"enabled"`
	} `yaml:"classroom"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

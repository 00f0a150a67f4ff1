package config

import (
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v6"
	"github.com/ghodss/yaml"
)

// ConfigEnvVar may hold the whole YAML configuration inline.
const ConfigEnvVar = "INGEST_CONFIG"

type Config struct {
	LogLevel     string       `json:"logLevel" env:"INGEST_LOG_LEVEL"`
	LogFormat    string       `json:"logFormat" env:"INGEST_LOG_FORMAT"`
	ListenAddr   string       `json:"listenAddr" env:"INGEST_LISTEN_ADDR"`
	TaxonomyFile string       `json:"taxonomyFile" env:"INGEST_TAXONOMY_FILE"`
	Currency     string       `json:"currency" env:"INGEST_CURRENCY"`
	Remote       RemoteConfig `json:"remote"`
}

type RemoteConfig struct {
	APIKey    string  `json:"apiKey" env:"INGEST_GEMINI_API_KEY"`
	Model     string  `json:"model" env:"INGEST_GEMINI_MODEL"`
	Workers   int     `json:"workers" env:"INGEST_REMOTE_WORKERS"`
	QueueSize int     `json:"queueSize" env:"INGEST_REMOTE_QUEUE_SIZE"`
	RPS       float64 `json:"rps" env:"INGEST_REMOTE_RPS"`
}

// Enabled reports whether the online classifier can be used.
func (r RemoteConfig) Enabled() bool {
	return r.APIKey != ""
}

func Defaults() Config {
	return Config{
		LogLevel:   "info",
		LogFormat:  "console",
		ListenAddr: ":8080",
		Currency:   "INR",
		Remote: RemoteConfig{
			Model:     "gemini-2.5-flash",
			Workers:   2,
			QueueSize: 32,
			RPS:       1,
		},
	}
}

// Load builds the configuration. Environment variables win over the YAML
// document, which is read from INGEST_CONFIG when set and from filename
// otherwise; whatever is still unset takes its default. A missing file is
// not an error.
func Load(filename string) (*Config, error) {
	fileCfg, err := readConfig(ConfigEnvVar, filename)
	if err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := mergo.Merge(&cfg, *fileCfg); err != nil {
		return nil, fmt.Errorf("merge config file: %w", err)
	}
	if err := mergo.Merge(&cfg, Defaults()); err != nil {
		return nil, fmt.Errorf("merge defaults: %w", err)
	}
	return &cfg, nil
}

func readConfig(envName, filename string) (*Config, error) {
	cfg := &Config{}

	var raw []byte
	if rawEnv := os.Getenv(envName); rawEnv != "" {
		raw = []byte(rawEnv)
	} else if filename != "" {
		var err error
		raw, err = os.ReadFile(filename)
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", filename, err)
		}
	}
	if len(raw) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

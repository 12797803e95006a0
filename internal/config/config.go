// Package config loads the application configuration from environment
// variables (prefix AOL), an optional config.yaml, and resolves every file
// path relative to the executable.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains the GUI web server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL"`
	// Color toggles ANSI level colors on the console sink.
	Color bool `yaml:"color" envconfig:"COLOR"`
}

// PipelineConfig contains the pipeline behavior switches.
type PipelineConfig struct {
	// ValidateStudents wires the student-map cross-check into the report
	// path.
	ValidateStudents bool `yaml:"validate_students" envconfig:"VALIDATE_STUDENTS"`
	// CohortStrategy selects the cohort derivation: "date", "encoded" or
	// "auto" (date first, encoded second).
	CohortStrategy string `yaml:"cohort_strategy" envconfig:"COHORT_STRATEGY"`
}

// WebSocketConfig contains the log-console stream configuration.
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// defaultConfig holds the built-in values. Defaults live here rather than in
// envconfig tags: tag defaults are applied whenever the variable is unset,
// which would overwrite values already read from the file.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
			Color: true,
		},
		Pipeline: PipelineConfig{
			ValidateStudents: false,
			CohortStrategy:   "auto",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}

// Load layers the configuration: built-in defaults, then the optional
// config.yaml, then the environment. Without default tags envconfig leaves
// fields whose variable is absent untouched, so file values survive and
// environment values win.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := findConfigFile(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("AOL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch c.Pipeline.CohortStrategy {
	case "auto", "date", "encoded":
	default:
		return fmt.Errorf("invalid cohort strategy: %q", c.Pipeline.CohortStrategy)
	}
	return nil
}

func findConfigFile() string {
	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

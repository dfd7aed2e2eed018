// Package config - конфигурация процесса судьи из окружения (и .env).
// Параметры матча (ParameterSet) живут отдельно, в YAML-файле AUTOREF_PARAMS.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string `env:"AUTOREF_PORT" envDefault:"8080"`
	Params    string `env:"AUTOREF_PARAMS"` // путь к YAML параметров матча, пусто - дефолты
	ReplayDir string `env:"AUTOREF_REPLAY_DIR" envDefault:"replays"`
	Record    bool   `env:"AUTOREF_RECORD" envDefault:"true"`

	// Лимит команд тренера с одного монитора, команд/сек
	CommandRate float64 `env:"AUTOREF_COMMAND_RATE" envDefault:"10"`
	QueueSize   int     `env:"AUTOREF_QUEUE_SIZE" envDefault:"256"`

	ShutdownTimeout time.Duration `env:"AUTOREF_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load читает .env (если есть), затем окружение.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("AUTOREF_PORT is empty")
	}
	if c.CommandRate <= 0 {
		return fmt.Errorf("AUTOREF_COMMAND_RATE must be positive, got %v", c.CommandRate)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("AUTOREF_QUEUE_SIZE must be positive, got %d", c.QueueSize)
	}
	return nil
}

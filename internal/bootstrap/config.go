package bootstrap

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort       string        `mapstructure:"SERVER_PORT"`
	EvaluatorUrl     string        `mapstructure:"EVALUATOR_URL"`
	EvaluatorTimeout time.Duration `mapstructure:"EVALUATOR_TIMEOUT"`
	BoardSize        int           `mapstructure:"BOARD_SIZE"`
	CellSize         int           `mapstructure:"CELL_SIZE"`
	BorderThickness  int           `mapstructure:"BORDER_THICKNESS"`
	CpuPlayer        int           `mapstructure:"CPU_PLAYER"`
	RedisUrl         string        `mapstructure:"REDIS_URL"`
	CacheTTL         time.Duration `mapstructure:"CACHE_TTL"`
	MongoUri         string        `mapstructure:"MONGO_URI"`
	MongoDatabase    string        `mapstructure:"MONGO_DATABASE"`
	IsLocalCors      bool          `mapstructure:"LOCAL_CORS"`
}

var defaults = map[string]any{
	"SERVER_PORT":       "8080",
	"EVALUATOR_URL":     "http://localhost:8081",
	"EVALUATOR_TIMEOUT": "10s",
	"BOARD_SIZE":        8,
	"CELL_SIZE":         64,
	"BORDER_THICKNESS":  2,
	"CPU_PLAYER":        -1,
	"REDIS_URL":         "",
	"CACHE_TTL":         "1h",
	"MONGO_URI":         "",
	"MONGO_DATABASE":    "osero",
	"LOCAL_CORS":        false,
}

// Setup reads cfgPath when it exists; environment variables override it.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if _, err := os.Stat(cfgPath); err == nil {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err = v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects geometry the board and the renderer cannot work with.
func (c *Config) Validate() error {
	if c.BoardSize < 2 {
		return fmt.Errorf("BOARD_SIZE must be at least 2, got %d", c.BoardSize)
	}
	if c.BorderThickness < 0 {
		return fmt.Errorf("BORDER_THICKNESS must not be negative, got %d", c.BorderThickness)
	}
	if c.CellSize <= 2*c.BorderThickness {
		return fmt.Errorf("CELL_SIZE must exceed twice BORDER_THICKNESS, got %d and %d", c.CellSize, c.BorderThickness)
	}
	return nil
}

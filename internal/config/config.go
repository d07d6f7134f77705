// Package config loads server configuration from a YAML file with sane
// defaults for every value, so an empty or missing file yields a playable
// local setup.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig configures the websocket gateway.
type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	TablePassword string `mapstructure:"table_password"` // empty = open table
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// GameConfig carries the tunable game policy.
type GameConfig struct {
	ActionsPerTurn   int           `mapstructure:"actions_per_turn"`
	HandSize         int           `mapstructure:"hand_size"`
	BotDelay         time.Duration `mapstructure:"bot_delay"`
	DefenderWithhold float64       `mapstructure:"defender_withhold_chance"`
	Seed             int64         `mapstructure:"seed"`
}

// DatabaseConfig configures the optional match-result store. An empty URL
// disables persistence entirely.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConns       int32         `mapstructure:"max_conns"`
	MinConns       int32         `mapstructure:"min_conns"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// Load reads the configuration from the given path. A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("server.addr", ":8089")
	v.SetDefault("server.table_password", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("game.actions_per_turn", 2)
	v.SetDefault("game.hand_size", 3)
	v.SetDefault("game.bot_delay", 600*time.Millisecond)
	v.SetDefault("game.defender_withhold_chance", 0.10)
	v.SetDefault("game.seed", 0)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, missing := err.(viper.ConfigFileNotFoundError); !missing && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

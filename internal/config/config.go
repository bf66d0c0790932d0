// Package config provides Viper-based configuration loading for the
// Bananopoly game server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings. The listener carries both the
// WebSocket endpoint and the polling API.
type ServerConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-request read timeout.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-request write timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RoomConfig holds room registry settings.
type RoomConfig struct {
	// TTL is the room lifetime from creation, regardless of activity.
	TTL time.Duration `mapstructure:"ttl"`
	// CodeLength is the number of characters in a generated room code.
	CodeLength int `mapstructure:"code_length"`
}

// GameConfig holds per-engine game rule settings.
type GameConfig struct {
	// InitialMoney is each player's starting balance.
	InitialMoney int `mapstructure:"initial_money"`
	// PassStartBonus is credited when a player wraps past the start corner.
	PassStartBonus int `mapstructure:"pass_start_bonus"`
	// RollDelay is the pause before an initial-order roll resolves.
	RollDelay time.Duration `mapstructure:"roll_delay"`
	// QuestionsPath is an optional YAML question bank; empty = built-in bank.
	QuestionsPath string `mapstructure:"questions_path"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Room    RoomConfig    `mapstructure:"room"`
	Game    GameConfig    `mapstructure:"game"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRoom(c.Room); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ReadTimeout < 0 {
		errs = append(errs, "server.read_timeout must not be negative")
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, "server.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateRoom(r RoomConfig) error {
	var errs []string
	if r.TTL <= 0 {
		errs = append(errs, fmt.Sprintf("room.ttl must be > 0, got %s", r.TTL))
	}
	if r.CodeLength < 4 || r.CodeLength > 12 {
		errs = append(errs, fmt.Sprintf("room.code_length must be 4-12, got %d", r.CodeLength))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.InitialMoney < 0 {
		errs = append(errs, fmt.Sprintf("game.initial_money must be >= 0, got %d", g.InitialMoney))
	}
	if g.PassStartBonus < 0 {
		errs = append(errs, fmt.Sprintf("game.pass_start_bonus must be >= 0, got %d", g.PassStartBonus))
	}
	if g.RollDelay < 0 {
		errs = append(errs, fmt.Sprintf("game.roll_delay must be >= 0, got %s", g.RollDelay))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with BANANOPOLY_ prefix
	v.SetEnvPrefix("BANANOPOLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the configuration used when no file is supplied.
//
// Postcondition: Default().Validate() == nil.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshalling pure defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("room.ttl", "2h")
	v.SetDefault("room.code_length", 6)

	v.SetDefault("game.initial_money", 500)
	v.SetDefault("game.pass_start_bonus", 100)
	v.SetDefault("game.roll_delay", "1500ms")
	v.SetDefault("game.questions_path", "")
}

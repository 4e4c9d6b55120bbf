// Package config provides Viper-based configuration loading for the battle runtime.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the battle record ledger.
type DatabaseConfig struct {
	// Enabled turns battle record persistence on; when false the other fields are ignored.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout", or a file path.
	Output string `mapstructure:"output"`
}

// ContentConfig points at the static combat data directories.
type ContentConfig struct {
	Conditions string `mapstructure:"conditions"`
	Skills     string `mapstructure:"skills"`
	Actors     string `mapstructure:"actors"`
	Enemies    string `mapstructure:"enemies"`
	Troops     string `mapstructure:"troops"`
	// Scripts is the root of per-troop battle event scripts; empty disables scripting.
	Scripts string `mapstructure:"scripts"`
}

// BattleConfig holds the tunable rules of the combat scheduler and attribute engine.
type BattleConfig struct {
	MaxTP                int           `mapstructure:"max_tp"`
	MaxBattleMembers     int           `mapstructure:"max_battle_members"`
	MaxTroopMembers      int           `mapstructure:"max_troop_members"`
	EscapeRatioIncrement float64       `mapstructure:"escape_ratio_increment"`
	CanEscape            bool          `mapstructure:"can_escape"`
	CanLose              bool          `mapstructure:"can_lose"`
	AttackSkillID        int           `mapstructure:"attack_skill_id"`
	GuardSkillID         int           `mapstructure:"guard_skill_id"`
	DeathStateID         int           `mapstructure:"death_state_id"`
	PreserveTP           bool          `mapstructure:"preserve_tp"`
	TickInterval         time.Duration `mapstructure:"tick_interval"`
	// ActorParamMax and EnemyParamMax are the eight core parameter caps, indexed
	// mhp, mmp, atk, def, mat, mdf, agi, luk.
	ActorParamMax []int `mapstructure:"actor_param_max"`
	EnemyParamMax []int `mapstructure:"enemy_param_max"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Content  ContentConfig  `mapstructure:"content"`
	Battle   BattleConfig   `mapstructure:"battle"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
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

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Conditions == "" {
		errs = append(errs, "content.conditions must not be empty")
	}
	if c.Skills == "" {
		errs = append(errs, "content.skills must not be empty")
	}
	if c.Actors == "" {
		errs = append(errs, "content.actors must not be empty")
	}
	if c.Enemies == "" {
		errs = append(errs, "content.enemies must not be empty")
	}
	if c.Troops == "" {
		errs = append(errs, "content.troops must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.MaxTP < 1 {
		errs = append(errs, fmt.Sprintf("battle.max_tp must be >= 1, got %d", b.MaxTP))
	}
	if b.MaxBattleMembers < 1 {
		errs = append(errs, fmt.Sprintf("battle.max_battle_members must be >= 1, got %d", b.MaxBattleMembers))
	}
	if b.MaxTroopMembers < 1 {
		errs = append(errs, fmt.Sprintf("battle.max_troop_members must be >= 1, got %d", b.MaxTroopMembers))
	}
	if b.EscapeRatioIncrement <= 0 {
		errs = append(errs, fmt.Sprintf("battle.escape_ratio_increment must be > 0, got %v", b.EscapeRatioIncrement))
	}
	if b.AttackSkillID < 1 {
		errs = append(errs, "battle.attack_skill_id must be >= 1")
	}
	if b.GuardSkillID < 1 {
		errs = append(errs, "battle.guard_skill_id must be >= 1")
	}
	if b.DeathStateID < 1 {
		errs = append(errs, "battle.death_state_id must be >= 1")
	}
	if b.TickInterval <= 0 {
		errs = append(errs, "battle.tick_interval must be > 0")
	}
	if len(b.ActorParamMax) != 8 {
		errs = append(errs, fmt.Sprintf("battle.actor_param_max must have 8 entries, got %d", len(b.ActorParamMax)))
	}
	if len(b.EnemyParamMax) != 8 {
		errs = append(errs, fmt.Sprintf("battle.enemy_param_max must have 8 entries, got %d", len(b.EnemyParamMax)))
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

	// Environment variable overrides with BATTLE_ prefix
	v.SetEnvPrefix("BATTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "battle")
	v.SetDefault("database.password", "battle")
	v.SetDefault("database.name", "battle")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("content.conditions", "content/conditions")
	v.SetDefault("content.skills", "content/skills")
	v.SetDefault("content.actors", "content/actors")
	v.SetDefault("content.enemies", "content/enemies")
	v.SetDefault("content.troops", "content/troops")
	v.SetDefault("content.scripts", "content/scripts/troops")

	v.SetDefault("battle.max_tp", 100)
	v.SetDefault("battle.max_battle_members", 4)
	v.SetDefault("battle.max_troop_members", 8)
	v.SetDefault("battle.escape_ratio_increment", 0.1)
	v.SetDefault("battle.can_escape", true)
	v.SetDefault("battle.can_lose", false)
	v.SetDefault("battle.attack_skill_id", 1)
	v.SetDefault("battle.guard_skill_id", 2)
	v.SetDefault("battle.death_state_id", 1)
	v.SetDefault("battle.preserve_tp", false)
	v.SetDefault("battle.tick_interval", "16ms")
	v.SetDefault("battle.actor_param_max", []int{9999, 9999, 999, 999, 999, 999, 999, 999})
	v.SetDefault("battle.enemy_param_max", []int{999999, 9999, 999, 999, 999, 999, 999, 999})
}

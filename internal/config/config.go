// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Game      GameConfig      `mapstructure:"game"`
	Log       LogConfig       `mapstructure:"log"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
// With Enabled false the round ledger is kept in memory.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// GameConfig holds table timing and housekeeping settings.
type GameConfig struct {
	RollDuration   time.Duration `mapstructure:"roll_duration"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
	RenderInterval time.Duration `mapstructure:"render_interval"`
	IdleTableTTL   time.Duration `mapstructure:"idle_table_ttl"`
	SweepInterval  time.Duration `mapstructure:"sweep_interval"`
	Timezone       string        `mapstructure:"timezone"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Location resolves the configured timezone used for daily rankings.
func (g *GameConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", g.Timezone, err)
	}
	return loc, nil
}

// ZerologLevel parses the configured level, falling back to info.
func (l *LogConfig) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || l.Level == "" {
		return zerolog.InfoLevel
	}
	return level
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g., BOT_TOKEN, DATABASE_ENABLED, GAME_ROLL_DURATION
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not found is OK - env vars can provide all config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.poll_timeout", "10s")

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "baucua")
	v.SetDefault("database.name", "baucua")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Game defaults
	v.SetDefault("game.roll_duration", "2s")
	v.SetDefault("game.tick_interval", "100ms")
	v.SetDefault("game.settle_delay", "500ms")
	v.SetDefault("game.render_interval", "700ms")
	v.SetDefault("game.idle_table_ttl", "2h")
	v.SetDefault("game.sweep_interval", "10m")
	v.SetDefault("game.timezone", "Asia/Ho_Chi_Minh")

	v.SetDefault("log.level", "info")

	// AutomaticEnv only sees keys viper already knows about.
	v.SetDefault("bot.token", "")
	v.SetDefault("database.password", "")
}

// Validate checks the values that would make the bot misbehave at runtime.
func (c *Config) Validate() error {
	g := c.Game
	if g.TickInterval <= 0 {
		return fmt.Errorf("game.tick_interval must be positive, got %s", g.TickInterval)
	}
	if g.RollDuration < g.TickInterval {
		return fmt.Errorf("game.roll_duration %s is shorter than game.tick_interval %s", g.RollDuration, g.TickInterval)
	}
	if g.SettleDelay < 0 {
		return fmt.Errorf("game.settle_delay must not be negative, got %s", g.SettleDelay)
	}
	if g.IdleTableTTL <= 0 || g.SweepInterval <= 0 {
		return fmt.Errorf("game.idle_table_ttl and game.sweep_interval must be positive")
	}
	if _, err := g.Location(); err != nil {
		return err
	}
	return nil
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}

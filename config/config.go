package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/logging"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/reward"
)

// Config holds all application configuration
type Config struct {
	Environment string         `mapstructure:"environment"`
	Discord     DiscordConfig  `mapstructure:"discord"`
	Database    DatabaseConfig `mapstructure:"database"`
	Server      ServerConfig   `mapstructure:"server"`
	Game        GameConfig     `mapstructure:"game"`
	Freeplay    FreeplayConfig `mapstructure:"freeplay"`
	Counter     CounterConfig  `mapstructure:"counter"`
	Session     SessionConfig  `mapstructure:"session"`
	Logging     logging.Config `mapstructure:"logging"`
}

// DiscordConfig holds gateway credentials and authorization identifiers.
// Token and GuildID come from the environment (DISCORD_TOKEN, DISCORD_GUILD_ID).
type DiscordConfig struct {
	Token         string `mapstructure:"token"`
	GuildID       string `mapstructure:"guild_id"`
	ManagerRoleID string `mapstructure:"manager_role_id"`
}

// DatabaseConfig holds the embedded store configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds the health HTTP server configuration
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// GameConfig holds the point-costing trick-or-treat game configuration.
// Rewards carries the actual draw weights; Display carries the percentages
// shown to players, which are deliberately independent of the draw weights.
type GameConfig struct {
	Cost        int                    `mapstructure:"cost"`
	TreatChance float64                `mapstructure:"treat_chance"`
	ForcedLabel string                 `mapstructure:"forced_label"`
	Rewards     reward.Table           `mapstructure:"rewards"`
	Display     []reward.DisplayOption `mapstructure:"display"`
}

// FreeplayConfig holds the one-time freeplay game configuration
type FreeplayConfig struct {
	Rewards reward.Table `mapstructure:"rewards"`
}

// CounterConfig holds the message-to-point converter configuration
type CounterConfig struct {
	Channels         []string `mapstructure:"channels"`
	MessagesPerPoint int      `mapstructure:"messages_per_point"`
}

// SessionConfig holds game session lifetime configuration
type SessionConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Load loads configuration from a YAML file using Viper
func Load(filename string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(filename)
	v.SetConfigType("yaml")

	// Enable environment variable substitution
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromEnv builds a configuration without a config file, using only
// environment variables and defaults. Useful for container deployments
// where no yaml is mounted.
func LoadFromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindEnv maps the credential keys to their conventional environment names
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("discord.token", "DISCORD_TOKEN")
	_ = v.BindEnv("discord.guild_id", "DISCORD_GUILD_ID")
	_ = v.BindEnv("discord.manager_role_id", "DISCORD_MANAGER_ROLE_ID")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
	_ = v.BindEnv("server.port", "PORT")
}

// Validate checks that required fields are present. The process refuses to
// start without a bot token and a target guild.
func (c *Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord token is required (set DISCORD_TOKEN)")
	}
	if c.Discord.GuildID == "" {
		return fmt.Errorf("discord guild id is required (set DISCORD_GUILD_ID)")
	}
	return nil
}

// setDefaults sets default values for missing configuration
func (c *Config) setDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "points.db"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Game.Cost == 0 {
		c.Game.Cost = 1
	}
	if c.Game.TreatChance == 0 {
		c.Game.TreatChance = 0.49
	}
	if c.Game.ForcedLabel == "" {
		c.Game.ForcedLabel = "Secret Dragon Canneiloni (sab)"
	}
	if len(c.Game.Rewards) == 0 {
		c.Game.Rewards = reward.DefaultGameTable()
	}
	if len(c.Game.Display) == 0 {
		c.Game.Display = reward.DefaultDisplayTable()
	}
	if len(c.Freeplay.Rewards) == 0 {
		c.Freeplay.Rewards = reward.DefaultFreeplayTable()
	}
	if c.Counter.MessagesPerPoint == 0 {
		c.Counter.MessagesPerPoint = 500
	}
	if c.Session.Timeout == 0 {
		c.Session.Timeout = 180 * time.Second
	}
	if c.Session.SweepInterval == 0 {
		c.Session.SweepInterval = 30 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// IsDevelopment returns true if environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

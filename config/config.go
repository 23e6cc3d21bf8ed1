// Package config loads bot configuration from an optional config.yaml, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all bot configuration.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Database DatabaseConfig `mapstructure:"database"`
	Health   HealthConfig   `mapstructure:"health"`
	Games    GamesConfig    `mapstructure:"games"`
	API      APIConfig      `mapstructure:"api"`
	Log      LogConfig      `mapstructure:"log"`
}

// BotConfig holds Discord settings.
type BotConfig struct {
	Token    string   `mapstructure:"token"`
	OwnerIDs []string `mapstructure:"owner_ids"`
	GuildID  string   `mapstructure:"guild_id"`
}

// DatabaseConfig selects and tunes the score store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Path            string        `mapstructure:"path"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Port string `mapstructure:"port"`
}

// GamesConfig holds mini-game timings and cooldowns.
type GamesConfig struct {
	RPSTimeout          time.Duration `mapstructure:"rps_timeout"`
	CookieAnnounceDelay time.Duration `mapstructure:"cookie_announce_delay"`
	CookieTicks         int           `mapstructure:"cookie_ticks"`
	CookieWindow        time.Duration `mapstructure:"cookie_window"`
	CookieMinReaction   time.Duration `mapstructure:"cookie_min_reaction"`
	CommandCooldown     time.Duration `mapstructure:"command_cooldown"`
	CookieCooldown      time.Duration `mapstructure:"cookie_cooldown"`
	LeaderboardSize     int           `mapstructure:"leaderboard_size"`
	LeaderboardPageSize int           `mapstructure:"leaderboard_page_size"`
	LeaderboardIdle     time.Duration `mapstructure:"leaderboard_idle"`
	ChatbotIdle         time.Duration `mapstructure:"chatbot_idle"`
}

// APIConfig holds third-party HTTP API settings.
type APIConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user_agent"`
	ChatbotURL string        `mapstructure:"chatbot_url"`
	ChatbotKey string        `mapstructure:"chatbot_key"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ErrMissingToken is returned by Validate when no bot token is configured.
var ErrMissingToken = errors.New("BOT_TOKEN is required")

// Load reads configuration. A .env file in the working directory is applied
// to the environment first; config.yaml in configPath is optional.
func Load(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Legacy variable names used by the deployment.
	_ = v.BindEnv("bot.token", "BOT_TOKEN", "DISCORD_TOKEN")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("health.port", "HEALTH_PORT", "PORT")
	_ = v.BindEnv("api.chatbot_key", "API_CHATBOT_KEY", "TRAVITIA_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings needed to connect to Discord.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return ErrMissingToken
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for the postgres driver")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.owner_ids", []string{})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.path", "travis-bott.db")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "45m")
	v.SetDefault("database.max_conn_idle_time", "5m")

	v.SetDefault("health.port", "8080")

	v.SetDefault("games.rps_timeout", "180s")
	v.SetDefault("games.cookie_announce_delay", "3s")
	v.SetDefault("games.cookie_ticks", 3)
	v.SetDefault("games.cookie_window", "10s")
	v.SetDefault("games.cookie_min_reaction", "100ms")
	v.SetDefault("games.command_cooldown", "3s")
	v.SetDefault("games.cookie_cooldown", "60s")
	v.SetDefault("games.leaderboard_size", 100)
	v.SetDefault("games.leaderboard_page_size", 10)
	v.SetDefault("games.leaderboard_idle", "120s")
	v.SetDefault("games.chatbot_idle", "30s")

	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.user_agent", "travis-bott (discord bot)")
	v.SetDefault("api.chatbot_url", "https://api.travitia.xyz/talk")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

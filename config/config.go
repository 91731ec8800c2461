package config

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	Environment EnvironmentConfig

	Server ServerConfig
	Logger LoggerConfig

	Postgres PostgresConfig

	// Authentication for the admin API
	JWT JWTConfig

	// Notification channels
	Mailer  MailerConfig
	Discord DiscordConfig

	// Rule thresholds
	Rules RulesConfig

	Collector CollectorConfig

	// Apps maps monitored app ids to their per-app settings.
	Apps map[string]AppConfig
}

// EnvironmentConfig is the configuration for the deployment environment.
type EnvironmentConfig struct {
	Name string
}

// ServerConfig is the configuration for the admin API server.
type ServerConfig struct {
	Host string
	Port int
	Mode string
}

// LoggerConfig is the configuration for the logger.
type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

// PostgresConfig is the configuration for PostgreSQL.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig is the configuration for the JWT guard on the admin API.
type JWTConfig struct {
	SecretKey string
}

// MailerConfig is the configuration for the mail relay.
type MailerConfig struct {
	BaseURL string
}

// DiscordConfig is the configuration for Discord webhook notifications.
type DiscordConfig struct {
	WebhookURL string
}

// RulesConfig carries the rule thresholds. Zero values fall back to the
// rule package defaults.
type RulesConfig struct {
	IntervalLookback time.Duration
	ReleaseGrace     time.Duration
	StoreLookback    time.Duration
}

// CollectorConfig is the configuration for the snapshot collectors.
type CollectorConfig struct {
	SnapshotPath string
}

// AppConfig is the per-app configuration block.
type AppConfig struct {
	Alerts AlertConfig `mapstructure:"alerts"`
}

// AlertConfig lists an app's notification recipients.
type AlertConfig struct {
	Emails []string `mapstructure:"emails"`
}

// Bootstrap is the env-only block read before the config file: where to
// find the file and how to reach the bucket when the path is remote.
type Bootstrap struct {
	ConfigPath  string `env:"CONFIG_PATH"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3UseSSL    bool   `env:"S3_USE_SSL" envDefault:"false"`
}

// Load reads configuration from the path given via CONFIG_PATH. Local
// paths and s3:// bucket paths are both supported; with no path set the
// usual config directories are searched. Environment variables override
// file values.
func Load(ctx context.Context) (*Config, error) {
	var bootstrap Bootstrap
	if err := env.Parse(&bootstrap); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	switch {
	case strings.HasPrefix(bootstrap.ConfigPath, "s3://"):
		raw, err := fetchRemote(ctx, bootstrap)
		if err != nil {
			return nil, fmt.Errorf("error fetching remote config: %w", err)
		}
		if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("error reading remote config: %w", err)
		}
	case bootstrap.ConfigPath != "":
		v.SetConfigFile(bootstrap.ConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	default:
		v.SetConfigName("conversion-guard")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/conversion-guard/")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
			// Config file not found; using environment variables
		}
	}

	cfg := &Config{}

	cfg.Environment.Name = v.GetString("environment.name")

	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.Mode = v.GetString("server.mode")

	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")

	cfg.Postgres.Host = v.GetString("postgres.host")
	cfg.Postgres.Port = v.GetInt("postgres.port")
	cfg.Postgres.User = v.GetString("postgres.user")
	cfg.Postgres.Password = v.GetString("postgres.password")
	cfg.Postgres.DBName = v.GetString("postgres.dbname")
	cfg.Postgres.SSLMode = v.GetString("postgres.sslmode")

	cfg.JWT.SecretKey = v.GetString("jwt.secret_key")

	cfg.Mailer.BaseURL = v.GetString("mailer.base_url")
	cfg.Discord.WebhookURL = v.GetString("discord.webhook_url")

	cfg.Rules.IntervalLookback = v.GetDuration("rules.interval_lookback")
	cfg.Rules.ReleaseGrace = v.GetDuration("rules.release_grace")
	cfg.Rules.StoreLookback = v.GetDuration("rules.store_lookback")

	cfg.Collector.SnapshotPath = v.GetString("collector.snapshot_path")

	if err := v.UnmarshalKey("apps", &cfg.Apps); err != nil {
		return nil, fmt.Errorf("error parsing apps config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment.name", "production")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", "production")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.color_enabled", false)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.dbname", "conversion_guard")
	v.SetDefault("postgres.sslmode", "disable")

	v.SetDefault("rules.interval_lookback", 24*time.Hour)
	v.SetDefault("rules.release_grace", 24*time.Hour)
	v.SetDefault("rules.store_lookback", 7*24*time.Hour)
}

func validate(cfg *Config) error {
	if cfg.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required")
	}
	if cfg.Postgres.DBName == "" {
		return fmt.Errorf("postgres.dbname is required")
	}
	if cfg.JWT.SecretKey != "" && len(cfg.JWT.SecretKey) < 32 {
		return fmt.Errorf("jwt.secret_key must be at least 32 characters")
	}
	return nil
}

// AppIDs returns the monitored app ids, sorted for stable run order.
func (c *Config) AppIDs() []string {
	ids := make([]string, 0, len(c.Apps))
	for id := range c.Apps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Recipients returns the app id to email recipients mapping.
func (c *Config) Recipients() map[string][]string {
	out := make(map[string][]string, len(c.Apps))
	for id, app := range c.Apps {
		out[id] = app.Alerts.Emails
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	TransportSlack    = "slack"
	TransportTelegram = "telegram"
)

type Config struct {
	Transport      string
	LogLevel       zerolog.Level
	LogFormat      string
	PollInterval   time.Duration
	HandlerTimeout time.Duration

	SlackToken    string
	SlackNickname string
	TelegramToken string

	GitLabHost  string
	GitLabToken string
	DroneHost   string
	DroneToken  string
}

// SetDefaults registers default values and environment overrides (CIBOT_SLACK_TOKEN etc.) on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bot.transport", TransportSlack)
	v.SetDefault("bot.log_level", "info")
	v.SetDefault("bot.log_format", "json")
	v.SetDefault("bot.poll_interval", "100ms")
	v.SetDefault("handler.timeout", "30s")

	v.SetEnvPrefix("cibot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the config file into v. An empty path searches ./config.toml.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	err := v.ReadInConfig()
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	return Parse(v)
}

// Parse builds and validates a Config from values already present in v.
func Parse(v *viper.Viper) (*Config, error) {
	pollInterval, err := time.ParseDuration(v.GetString("bot.poll_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid poll interval in config: %w", err)
	}

	handlerTimeout, err := time.ParseDuration(v.GetString("handler.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid timeout for handler in config: %w", err)
	}

	var logLevel zerolog.Level

	switch v.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	cfg := &Config{
		Transport:      strings.ToLower(v.GetString("bot.transport")),
		LogLevel:       logLevel,
		LogFormat:      v.GetString("bot.log_format"),
		PollInterval:   pollInterval,
		HandlerTimeout: handlerTimeout,
		SlackToken:     v.GetString("slack.token"),
		SlackNickname:  v.GetString("slack.nickname"),
		TelegramToken:  v.GetString("telegram.bot_token"),
		GitLabHost:     v.GetString("gitlab.host"),
		GitLabToken:    v.GetString("gitlab.token"),
		DroneHost:      v.GetString("drone.host"),
		DroneToken:     v.GetString("drone.token"),
	}

	err = cfg.validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	switch c.Transport {
	case TransportSlack:
		if c.SlackToken == "" {
			errs = append(errs, errors.New("slack.token is required"))
		}
		if c.SlackNickname == "" {
			errs = append(errs, errors.New("slack.nickname is required"))
		}
	case TransportTelegram:
		if c.TelegramToken == "" {
			errs = append(errs, errors.New("telegram.bot_token is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}

	if c.GitLabToken == "" {
		errs = append(errs, errors.New("gitlab.token is required"))
	}
	if c.DroneHost == "" {
		errs = append(errs, errors.New("drone.host is required"))
	}
	if c.DroneToken == "" {
		errs = append(errs, errors.New("drone.token is required"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("bot.poll_interval must be positive"))
	}

	return errors.Join(errs...)
}

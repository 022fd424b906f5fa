package devops

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type MailConfig struct {
	Provider   string `yaml:"provider"` // "resend" (default) or "ses"
	APIKey     string `yaml:"api_key"`
	From       string `yaml:"from"`
	AdminEmail string `yaml:"admin_email"`
}

type SlackConfig struct {
	Token          string `yaml:"token"`
	InfoChannelID  string `yaml:"info_channel"`
	ErrorChannelID string `yaml:"error_channel"`
}

type Config struct {
	DSN           string      `yaml:"dsn"`
	Addr          string      `yaml:"addr"`
	SigningSecret string      `yaml:"signing_secret"` // base64
	LogLevel      string      `yaml:"log_level"`
	Environment   string      `yaml:"environment"`
	Mail          MailConfig  `yaml:"mail"`
	Slack         SlackConfig `yaml:"slack"`
}

// Load reads configuration from the environment, with an optional yaml file
// (CONFIG_FILE) filling anything the environment leaves unset. A .env file is
// honored for local development; existing variables are never overridden.
// Mail settings are deliberately not validated here: their absence only
// matters when a digest send is attempted, and that path reports it as a
// configuration error of its own.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DSN:           os.Getenv("DSN"),
		Addr:          os.Getenv("ADDR"),
		SigningSecret: os.Getenv("RENEWTRACK_SIGNING_SECRET"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		Environment:   os.Getenv("ENVIRONMENT"),
		Mail: MailConfig{
			Provider:   os.Getenv("MAIL_PROVIDER"),
			APIKey:     os.Getenv("RESEND_API_KEY"),
			From:       os.Getenv("MAIL_FROM"),
			AdminEmail: os.Getenv("ADMIN_EMAIL"),
		},
		Slack: SlackConfig{
			Token:          os.Getenv("SLACK_BOT_TOKEN"),
			InfoChannelID:  os.Getenv("SLACK_INFO_CHANNEL"),
			ErrorChannelID: os.Getenv("SLACK_ERROR_CHANNEL"),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := overlayFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if cfg.DSN == "" {
		return nil, fmt.Errorf("DSN is not set")
	}
	if cfg.SigningSecret == "" {
		return nil, fmt.Errorf("RENEWTRACK_SIGNING_SECRET is not set")
	}
	if cfg.Addr == "" {
		cfg.Addr = "0.0.0.0:8090"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "resend"
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = "RenewTrack <notify@renewtrack.local>"
	}

	return cfg, nil
}

// overlayFile fills unset fields from a yaml file; the environment wins.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("unmarshal yaml: %w", err)
	}

	merge := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	merge(&cfg.DSN, fileCfg.DSN)
	merge(&cfg.Addr, fileCfg.Addr)
	merge(&cfg.SigningSecret, fileCfg.SigningSecret)
	merge(&cfg.LogLevel, fileCfg.LogLevel)
	merge(&cfg.Environment, fileCfg.Environment)
	merge(&cfg.Mail.Provider, fileCfg.Mail.Provider)
	merge(&cfg.Mail.APIKey, fileCfg.Mail.APIKey)
	merge(&cfg.Mail.From, fileCfg.Mail.From)
	merge(&cfg.Mail.AdminEmail, fileCfg.Mail.AdminEmail)
	merge(&cfg.Slack.Token, fileCfg.Slack.Token)
	merge(&cfg.Slack.InfoChannelID, fileCfg.Slack.InfoChannelID)
	merge(&cfg.Slack.ErrorChannelID, fileCfg.Slack.ErrorChannelID)
	return nil
}

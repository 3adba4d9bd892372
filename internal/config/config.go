package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Testing TestingConfig `mapstructure:"testing" yaml:"testing"`
	Poll    PollConfig    `mapstructure:"poll" yaml:"poll"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type TestingConfig struct {
	Email EmailConfig `mapstructure:"email" yaml:"email"`
}

type EmailConfig struct {
	Host               string `mapstructure:"host" yaml:"host,omitempty"`
	Port               int    `mapstructure:"port" yaml:"port,omitempty"`
	User               string `mapstructure:"user" yaml:"user,omitempty"`
	Password           string `mapstructure:"password" yaml:"password,omitempty"`
	SSL                bool   `mapstructure:"ssl" yaml:"ssl,omitempty"`
	Mailbox            string `mapstructure:"mailbox" yaml:"mailbox"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify,omitempty"`
}

type PollConfig struct {
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

const (
	DefaultMailbox      = "INBOX"
	DefaultPollTimeout  = 100 * time.Second
	DefaultPollInterval = 10 * time.Second
)

func DefaultConfig() Config {
	return Config{
		Testing: TestingConfig{
			Email: EmailConfig{Mailbox: DefaultMailbox},
		},
		Poll: PollConfig{
			Timeout:  DefaultPollTimeout,
			Interval: DefaultPollInterval,
		},
		Log: LogConfig{Level: "info"},
	}
}

func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file (if any) with MAILPROBE_* environment overrides.
// The returned viper instance is the key/value provider for mailbox parameters.
func Load() (Config, *viper.Viper, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MAILPROBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)
	bindEmailEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, v, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, v, err
	}

	return cfg, v, nil
}

func Save(cfg Config) (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := EnsureDir(); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}

	return path, nil
}

func Redact(cfg Config) Config {
	masked := cfg
	if masked.Testing.Email.Password != "" {
		masked.Testing.Email.Password = "****"
	}
	return masked
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("testing.email.mailbox", cfg.Testing.Email.Mailbox)
	v.SetDefault("poll.timeout", cfg.Poll.Timeout)
	v.SetDefault("poll.interval", cfg.Poll.Interval)
	v.SetDefault("log.level", cfg.Log.Level)
}

// bindEmailEnv registers the optional mailbox keys so env-only values reach
// Unmarshal. They have no defaults: IsSet must stay false when absent.
func bindEmailEnv(v *viper.Viper) {
	for _, key := range EmailKeys {
		_ = v.BindEnv(key)
	}
}

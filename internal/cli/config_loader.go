package cli

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mailprobe/internal/config"
	"mailprobe/internal/mailcheck"
	"mailprobe/internal/secrets"
)

var getPassword = secrets.GetPassword

// loadConfig loads the config file and fills in the mailbox password from
// the keyring when only the user is configured.
func loadConfig(logger *slog.Logger) (config.Config, *viper.Viper, error) {
	cfg, v, err := config.Load()
	if err != nil {
		return cfg, v, err
	}

	if v.IsSet(config.KeyPassword) || !v.IsSet(config.KeyUser) {
		return cfg, v, nil
	}

	password, err := getPassword(cfg.Testing.Email.User)
	if err != nil {
		if !errors.Is(err, secrets.ErrSecretNotFound) {
			logger.Warn("keyring lookup failed", "user", cfg.Testing.Email.User, "error", err)
		}
		return cfg, v, nil
	}

	v.Set(config.KeyPassword, password)
	cfg.Testing.Email.Password = password
	return cfg, v, nil
}

func newLogger(level string, w io.Writer) *slog.Logger {
	lv := new(slog.LevelVar)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv.Set(slog.LevelDebug)
	case "warn", "warning":
		lv.Set(slog.LevelWarn)
	case "error":
		lv.Set(slog.LevelError)
	default:
		lv.Set(slog.LevelInfo)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv}))
}

// openResolver builds the session and resolver for one command run. The
// returned close func releases the mailbox connection.
func openResolver(cmd *cobra.Command, opts *rootOptions) (*mailcheck.Resolver, func(), error) {
	bootstrap := newLogger(opts.logLevel, cmd.ErrOrStderr())
	cfg, v, err := loadConfig(bootstrap)
	if err != nil {
		return nil, nil, err
	}

	level := opts.logLevel
	if level == "" {
		level = cfg.Log.Level
	}
	logger := newLogger(level, cmd.ErrOrStderr())

	session := mailcheck.NewSession(v, mailcheck.LogReporter(logger))
	session.Logger = logger

	resolver := mailcheck.NewResolver(session)
	resolver.Poll = mailcheck.PollOptions{Timeout: cfg.Poll.Timeout, Interval: cfg.Poll.Interval}

	closeFn := func() {
		if err := session.Close(); err != nil {
			logger.Warn("closing mailbox", "error", err)
		}
	}
	return resolver, closeFn, nil
}

func (o *rootOptions) poll() mailcheck.PollOptions {
	return mailcheck.PollOptions{Timeout: o.timeout, Interval: o.interval}
}

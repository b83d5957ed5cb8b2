package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"github.com/plugincheck/plugincheck/application/manifest"
	"github.com/plugincheck/plugincheck/application/retry"
	"github.com/plugincheck/plugincheck/config"
	"github.com/plugincheck/plugincheck/domain/ports"
	"github.com/plugincheck/plugincheck/infrastructure/httpclient"
	"github.com/plugincheck/plugincheck/infrastructure/parser"
	"github.com/plugincheck/plugincheck/log"
)

// errFailed signals a completed run that found problems. The problems have
// already been printed, so main only sets the exit code.
var errFailed = errors.New("check failed")

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	logBackend string
}

// app holds the collaborators shared by every subcommand.
type app struct {
	cfg       *config.Config
	logger    ports.Logger
	flush     func() error
	closed    bool
	client    ports.HTTPClient
	retryOpts []retry.Option
}

func newRootCmd(a *app) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "plugincheck",
		Short:         "Validate AI plugin manifests and list their API operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to a YAML or JSON config file")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "text or json")
	pf.StringVar(&flags.logBackend, "log-backend", "", "slog or zap")

	root.AddCommand(newValidateCmd(a), newListCmd(a), newSchemaCmd())
	return root
}

// execute runs root and flushes the logger whether or not the command failed;
// cobra skips post-run hooks after an error. Sync errors on a terminal stderr
// are expected from zap and ignored.
func execute(ctx context.Context, root *cobra.Command, a *app) error {
	err := root.ExecuteContext(ctx)
	_ = a.close()
	return err
}

// close flushes buffered log output once.
func (a *app) close() error {
	if a.closed || a.flush == nil {
		return nil
	}
	a.closed = true
	return a.flush()
}

func (a *app) init(cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
	if cmd.Flags().Changed("log-backend") {
		cfg.Log.Backend = flags.logBackend
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, flush, err := log.New(log.Backend(cfg.Log.Backend),
		log.WithLevel(level),
		log.WithFormat(log.Format(cfg.Log.Format)),
		log.WithWriter(cmd.ErrOrStderr()),
	)
	if err != nil {
		return err
	}

	opts := []httpclient.Option{
		httpclient.WithTimeout(cfg.HTTP.Timeout()),
		httpclient.WithMaxRedirects(cfg.HTTP.MaxRedirects),
		httpclient.WithMaxBodySize(cfg.HTTP.MaxBodyBytes),
	}
	if cfg.HTTP.SSRFProtection {
		opts = append(opts, httpclient.WithSSRFProtection(cfg.HTTP.AllowPrivate,
			httpclient.WithAllowlist(cfg.HTTP.Allowlist...),
			httpclient.WithBlocklist(cfg.HTTP.Blocklist...),
		))
	}

	a.cfg = cfg
	a.logger = logger
	a.flush = flush
	a.client = httpclient.New(opts...)
	a.retryOpts = []retry.Option{retry.WithBackOff(func() backoff.BackOff {
		return retry.NewExponentialBackOff(
			cfg.Retry.InitialInterval(),
			cfg.Retry.MaxInterval(),
			cfg.Retry.Multiplier,
			cfg.Retry.Jitter,
		)
	})}

	a.logger.Debug("configuration loaded",
		"config", flags.configPath,
		"log_level", level.String(),
		"retry_attempts", cfg.Retry.MaxAttempts,
	)
	return nil
}

func (a *app) loader() *manifest.Loader {
	return manifest.NewLoader(a.client, parser.NewManifestParser(),
		manifest.WithLogger(a.logger),
		manifest.WithMaxAttempts(a.cfg.Retry.MaxAttempts),
		manifest.WithRetryOptions(a.retryOpts...),
	)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

// Package cli implements the timetracker command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"timetracker/internal/config"
	"timetracker/internal/logging"
)

// Version is stamped at build time with -ldflags "-X timetracker/internal/cli.Version=...".
var Version = "dev"

type app struct {
	v       *viper.Viper
	cfgFile string
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "timetracker",
		Short: "Task time-tracking service",
		Long: `timetracker keeps a list of tasks with start/stop timers and closes
any task left running every night.

Quick start:
  timetracker migrate        Create or upgrade the database schema
  timetracker serve          Run the HTTP API and the nightly sweep
  timetracker sweep          Close every task in progress right now`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./timetracker.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("store", "", "store backend: sqlite, postgres, memory")
	rootCmd.PersistentFlags().String("dsn", "", "database file (sqlite) or connection string (postgres)")
	_ = a.v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store"))
	_ = a.v.BindPFlag("store.dsn", rootCmd.PersistentFlags().Lookup("dsn"))

	rootCmd.AddCommand(a.newServeCmd())
	rootCmd.AddCommand(a.newMigrateCmd())
	rootCmd.AddCommand(a.newSweepCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// initConfig reads the config file, if any, and environment variables.
func (a *app) initConfig() error {
	config.SetDefaults(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("$HOME/.timetracker")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("timetracker")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// load decodes the configuration and builds the logger every command uses.
func (a *app) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(a.v)
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return config.Config{}, nil, err
	}
	slog.SetDefault(logger)

	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "timetracker", Version)
		},
	}
}

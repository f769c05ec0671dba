package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agendaapi/internal/config"
	"agendaapi/internal/logging"
)

var (
	appName   = "agendaapi"
	logLevel  string
	logger    *zap.Logger
	globalCfg *config.AppConfig
)

// rootCmd represents the base command when called without any subcommands.
// Without a subcommand it starts the HTTP server.
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Agenda API service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), globalCfg)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

// initConfig reads the environment and builds the process logger.
func initConfig() error {
	cfg := config.Load()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	l, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logger = l.With(zap.String("service", appName))
	globalCfg = cfg
	return nil
}

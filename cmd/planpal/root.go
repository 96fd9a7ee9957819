package main

import (
	"fmt"
	"os"

	"github.com/harunnryd/planpal/internal/config"
	"github.com/harunnryd/planpal/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "planpal",
	Short: "PlanPal scheduling assistant",
	Long:  `PlanPal books, moves and cancels calendar events from plain-language requests.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.Server.LogLevel)
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.planpal/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file to read before the environment (default is ./.env when present)")
	rootCmd.PersistentFlags().String("server.log_level", config.DefaultServerLogLevel, "log level (debug, info, warn, error)")
}

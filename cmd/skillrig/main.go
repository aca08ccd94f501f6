package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillrig/skillrig/pkg/config"
	"github.com/skillrig/skillrig/pkg/logger"
)

func init() {
	viper.SetEnvPrefix("SKILLRIG")
	viper.AutomaticEnv()
}

var tracingShutdown func(context.Context) error

var rootCmd = &cobra.Command{
	Use:   "skillrig",
	Short: "Resolve, inspect, and install agent skills",
	Long: `skillrig discovers skills from ranked directories, decides which are
eligible in the current environment, and installs their missing
dependencies.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.SetLogLevel(viper.GetString("log_level")); err != nil {
			return err
		}
		logger.SetLogFormat(viper.GetString("log_format"))

		shutdown, err := initTracing(cmd.Context())
		if err != nil {
			return err
		}
		tracingShutdown = shutdown
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if tracingShutdown != nil {
			if err := tracingShutdown(cmd.Context()); err != nil {
				logger.G(cmd.Context()).WithError(err).Debug("Failed to shut down tracing")
			}
		}
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

// loadConfig reads the configuration file named by --config, falling back
// to the per-user default. A missing file yields an empty configuration.
func loadConfig() (*config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

func main() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.skillrig/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().String("workspace", ".", "Workspace directory to resolve skills for")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

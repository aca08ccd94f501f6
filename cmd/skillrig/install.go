package main

import (
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillrig/skillrig/pkg/presenter"
	"github.com/skillrig/skillrig/pkg/skills"
)

var installCmd = &cobra.Command{
	Use:   "install <skill> <installer-id>",
	Short: "Run one of a skill's declared installers",
	Long: `Run the installer identified by <installer-id> for the named skill.
Installer ids come from the skill's metadata; an installer without an
explicit id is addressed as "<kind>-<index>", e.g. "brew-0".

Examples:
  skillrig install weather brew-0
  skillrig install video-edit yt-dlp --timeout 600`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		timeoutSecs, _ := cmd.Flags().GetInt("timeout")

		cfg, err := loadConfig()
		if err != nil {
			presenter.Error(err, "failed to load configuration")
			os.Exit(1)
		}

		resolver := skills.NewResolver(viper.GetString("workspace"), cfg)
		dispatcher := skills.NewDispatcher(resolver, cfg)

		result := dispatcher.Install(cmd.Context(), args[0], args[1], time.Duration(timeoutSecs)*time.Second)

		if result.Stdout != "" {
			presenter.Info(result.Stdout)
		}
		if result.Stderr != "" {
			presenter.Warning(result.Stderr)
		}
		if !result.Success {
			presenter.Error(errors.New(result.Message), "install failed")
			os.Exit(1)
		}
		presenter.Success(result.Message)
	},
}

func init() {
	installCmd.Flags().Int("timeout", 0, "Install timeout in seconds (clamped to 1-900, default 300)")
}

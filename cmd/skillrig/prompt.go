package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillrig/skillrig/pkg/presenter"
	"github.com/skillrig/skillrig/pkg/skills"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Render the prompt section for eligible skills",
	Long: `Resolve and filter skills for the workspace, then print the prompt
section an agent would receive. With --save, also write a snapshot that
can later re-activate the same skill set without re-resolving.`,
	Run: func(cmd *cobra.Command, _ []string) {
		savePath, _ := cmd.Flags().GetString("save")

		cfg, err := loadConfig()
		if err != nil {
			presenter.Error(err, "failed to load configuration")
			os.Exit(1)
		}

		resolver := skills.NewResolver(viper.GetString("workspace"), cfg)
		entries := resolver.Resolve(cmd.Context())
		eligible := skills.NewGate(cfg).Filter(entries)

		restore := skills.Activate(eligible, cfg)
		defer func() {
			if err := restore(); err != nil {
				presenter.Error(err, "failed to restore environment")
			}
		}()

		fmt.Print(skills.FormatForPrompt(eligible))

		if savePath != "" {
			if err := skills.NewSnapshot(eligible).Save(savePath); err != nil {
				presenter.Error(err, "failed to save snapshot")
				os.Exit(1)
			}
			presenter.Success(fmt.Sprintf("Snapshot written to %s", savePath))
		}
	},
}

func init() {
	promptCmd.Flags().String("save", "", "Write a snapshot of the eligible skill set to this file")
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/skillrig/skillrig/pkg/presenter"
	"github.com/skillrig/skillrig/pkg/skills"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered skills and their eligibility",
	Long: `List all skills merged from the ranked sources, showing for each
whether it is currently eligible and why not if it isn't.`,
	Run: func(cmd *cobra.Command, _ []string) {
		eligibleOnly, _ := cmd.Flags().GetBool("eligible")

		cfg, err := loadConfig()
		if err != nil {
			presenter.Error(err, "failed to load configuration")
			os.Exit(1)
		}

		resolver := skills.NewResolver(viper.GetString("workspace"), cfg)
		entries := resolver.Resolve(cmd.Context())
		if len(entries) == 0 {
			presenter.Info("No skills found.")
			return
		}

		gate := skills.NewGate(cfg)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSOURCE\tELIGIBLE\tREASON\tDESCRIPTION")
		for _, name := range skills.SortedNames(entries) {
			entry := entries[name]
			decision := gate.Evaluate(entry)
			if eligibleOnly && !decision.Included {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\n",
				entry.Name, entry.Source, decision.Included, decision.Reason, truncate(entry.Description, 60))
		}
		w.Flush()
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	listCmd.Flags().Bool("eligible", false, "Only show skills eligible in the current environment")
}

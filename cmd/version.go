package cmd

import (
	"fmt"

	"github.com/anoixa/imagehost/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("imagehost %s (commit %s)", config.Version, config.CommitHash)
		if config.BuildTime != "" {
			fmt.Printf(" built %s", config.BuildTime)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

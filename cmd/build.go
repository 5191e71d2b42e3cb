package cmd

import (
	"github.com/renderlab/gtcheck/core"
	"github.com/spf13/cobra"
)

// buildCmd runs only the configure and build steps.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Configure and build the renderer without smoke testing it.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		logFd, err := openEventLog()
		if err != nil {
			return err
		}
		defer logFd.Close()

		check, err := core.NewCheck(configuration, cmd.OutOrStdout(), logFd)
		if err != nil {
			return err
		}
		return check.Build(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

package cmd

import (
	"github.com/renderlab/gtcheck/core"
	"github.com/spf13/cobra"
)

// smokeCmd runs the smoke test against an existing build.
var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run the OpenGL/EGL smoke test against an existing build.",
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
		return check.Smoke(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(smokeCmd)
}

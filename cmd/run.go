package cmd

import (
	"github.com/renderlab/gtcheck/core"
	"github.com/spf13/cobra"
)

// runCmd performs the whole procedure: configure, build, smoke test.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the renderer and run its OpenGL/EGL smoke test.",
	Long: `Configures and builds the renderer with CMake, then runs it once with
placeholder arguments. The smoke test only proves the binary can start and
initialize OpenGL/EGL; a failure is reported as a warning, not an error.`,
	Args: cobra.ExactArgs(0),
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
		return check.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

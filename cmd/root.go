package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/renderlab/gtcheck/core/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(afero.NewOsFs(), cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

func configDir() string {
	if filepath.Base(cfgPath) == config.ConfigurationName {
		return filepath.Dir(cfgPath)
	}
	return cfgPath
}

// openEventLog opens the JSON-lines run log next to the config file in an
// append only state.
func openEventLog() (io.WriteCloser, error) {
	return afero.NewOsFs().OpenFile(
		filepath.Join(configDir(), config.EventLogName),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gtcheck",
	Short: "Ground Truth Renderer Check",
	Long:  `Builds the customgt OpenGL/EGL ground-truth renderer and smoke tests it.`,
	// Run: func(cmd *cobra.Command, args []string) { },
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
}

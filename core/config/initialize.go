package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into the directory.
// It refuses to overwrite an existing configuration.
func Initialize(fsys afero.Fs, path string, logger *log.Logger) (*Configuration, error) {
	configPath := filepath.Join(path, ConfigurationName)

	exists, err := afero.Exists(fsys, configPath)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%s already exists, refusing to overwrite", configPath)
	}

	logger.Printf("Writing %s", configPath)
	if err := afero.WriteFile(fsys, configPath, defaultConfigData, 0644); err != nil {
		return nil, err
	}

	return Load(fsys, path)
}

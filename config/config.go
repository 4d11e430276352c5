package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/caarlos0/env/v11"
	yaml "gopkg.in/yaml.v2"
)

// Config holds the settings of the release status tool
type Config struct {
	DatabasePath string `yaml:"databasePath,omitempty" env:"RELEASE_STATUS_DATABASE_PATH"`
	OutputFormat string `yaml:"outputFormat,omitempty" env:"RELEASE_STATUS_OUTPUT_FORMAT"`
	Submitter    string `yaml:"submitter,omitempty" env:"RELEASE_STATUS_SUBMITTER"`
}

const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
)

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		DatabasePath: "release-status.db",
		OutputFormat: OutputFormatTable,
	}
}

// Read loads the yaml config file at path if it exists and applies environment overrides on top
func Read(path string) (config Config, err error) {

	config = Default()

	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return config, fmt.Errorf("reading config file %v failed: %w", path, err)
		}
		if err == nil {
			if err := yaml.UnmarshalStrict(data, &config); err != nil {
				return config, fmt.Errorf("unmarshalling config file %v failed: %w", path, err)
			}
		}
	}

	if err := env.Parse(&config); err != nil {
		return config, fmt.Errorf("parse env: %w", err)
	}

	return config, config.Validate()
}

// Validate checks the values that can't be defaulted
func (c Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("databasePath is required")
	}
	switch c.OutputFormat {
	case OutputFormatTable, OutputFormatJSON:
	default:
		return fmt.Errorf("outputFormat %q is not one of %v or %v", c.OutputFormat, OutputFormatTable, OutputFormatJSON)
	}
	return nil
}

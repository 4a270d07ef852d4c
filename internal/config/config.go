// Package config holds the runtime configuration shared by the pack and
// unpack commands.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config is populated from command-line flags (and matching environment
// variables) via viper.
type Config struct {
	// Dir is the target directory for both source and chunk files.
	Dir string `mapstructure:"dir" validate:"required,dir"`

	// KeyFile is the path of the key file whose trimmed contents are the
	// password.
	KeyFile string `mapstructure:"key" validate:"required,file"`

	// SizeMB is the maximum plaintext chunk size in MB; 0 disables splitting.
	SizeMB uint64 `mapstructure:"size"`

	// Delete removes source files (pack) or chunk files (unpack) after the
	// unit has committed.
	Delete bool `mapstructure:"delete"`

	// MD5 enables content-hash computation during pack. Unpack verifies
	// whenever a chunk declares a hash.
	MD5 bool `mapstructure:"md5"`

	// Force allows unpack to overwrite an existing output file.
	Force bool `mapstructure:"force"`

	// Include/Exclude restrict which files pack picks up.
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	ExcludeFrom string   `mapstructure:"exclude-from"`

	// Quiet suppresses non-error output.
	Quiet bool `mapstructure:"quiet"`

	// Stats prints a summary block after the run.
	Stats bool `mapstructure:"stats"`
}

// SplitSize returns the split size in bytes; 0 means a single chunk.
func (c *Config) SplitSize() uint64 {
	const megabyte = 1024 * 1024

	return c.SizeMB * megabyte
}

// Validate validates the configuration against the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	return nil
}

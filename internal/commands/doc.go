// Package commands provides the command-line interface for the cokacenc tool.
//
// It implements commands for:
//   - packing (encrypt + split)
//   - unpacking (decrypt + merge)
//   - key file generation
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands

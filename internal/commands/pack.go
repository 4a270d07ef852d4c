package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/cokacenc/internal/config"
	"github.com/idelchi/cokacenc/internal/logic"
)

// NewPackCommand creates a new cobra command for the pack subcommand.
func NewPackCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack [flags]",
		Short: "Encrypt and split files in a directory",
		Long: `Encrypts all regular files in the specified directory using AES-256-CBC.
Files exceeding --size are split into multiple chunks; each chunk embeds the
full metadata record and an independent salt/IV. Hidden files and existing
chunk files are excluded. With --delete, originals are removed after the
whole file has been encrypted successfully.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("parsing config: %w", err)
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return logic.RunPack(cfg)
		},
	}

	cmd.Flags().String("dir", "", "Directory containing files to encrypt")
	cmd.Flags().StringP("key", "k", "", "Key file path; its trimmed contents are the password")
	cmd.Flags().Uint64("size", 1800, "Maximum chunk size in MB (0 = never split)")
	cmd.Flags().Bool("delete", false, "Delete original files after successful encryption")
	cmd.Flags().Bool("md5", false, "Compute and embed an MD5 content hash for later verification")
	cmd.Flags().StringSlice("include", nil, "Only pack files matching these glob patterns")
	cmd.Flags().StringSlice("exclude", nil, "Skip files matching these glob patterns")
	cmd.Flags().String("exclude-from", "", "JSONC file with additional exclude patterns")
	cmd.Flags().BoolP("quiet", "q", false, "Suppress non-error output")
	cmd.Flags().Bool("stats", false, "Print a summary after the run")

	return cmd
}

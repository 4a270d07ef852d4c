package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/cokacenc/internal/config"
	"github.com/idelchi/cokacenc/internal/logic"
)

// NewUnpackCommand creates a new cobra command for the unpack subcommand.
func NewUnpackCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpack [flags]",
		Short: "Decrypt and merge chunk files in a directory",
		Long: `Groups the chunk files in the specified directory by group id, decrypts
each group's chunks in sequence order, merges the file data, verifies the
embedded MD5 hash when one was recorded, and restores the original filename,
permissions and mtime. With --delete, the chunk files are removed after a
group has been restored successfully.`,
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

			return logic.RunUnpack(cfg)
		},
	}

	cmd.Flags().String("dir", "", "Directory containing chunk files")
	cmd.Flags().StringP("key", "k", "", "Key file path; must match the one used for pack")
	cmd.Flags().Bool("delete", false, "Delete chunk files after successful decryption")
	cmd.Flags().Bool("force", false, "Overwrite existing output files")
	cmd.Flags().BoolP("quiet", "q", false, "Suppress non-error output")
	cmd.Flags().Bool("stats", false, "Print a summary after the run")

	return cmd
}

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idelchi/cokacenc/internal/keyfile"
)

// NewGenerateCommand creates a new cobra command for the generate subcommand.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate [flags]",
		Aliases: []string{"gen"},
		Short:   "Generate a random key file",
		Long: `Generates a key file from cryptographically secure random bytes, written
as Base64 text. An existing file is only overwritten with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			length, _ := cmd.Flags().GetInt("length")
			force, _ := cmd.Flags().GetBool("force")

			if output == "" {
				return errors.New("--output is required")
			}

			if err := keyfile.Generate(output, length, force); err != nil {
				return err
			}

			fmt.Printf("Generated key file: %q (%d random bytes)\n", output, length) //nolint:forbidigo

			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output key file path")
	cmd.Flags().Int("length", 64, "Key length in bytes before Base64 encoding")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")

	return cmd
}

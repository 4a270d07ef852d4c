package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"

	"github.com/idelchi/cokacenc/internal/config"
)

// NewRootCommand creates the root command with common configuration.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "cokacenc [flags] command [flags]"
	root.Short = "AES-256-CBC file encryption and split tool"
	root.Long = `cokacenc encrypts files in a directory using AES-256-CBC and optionally
splits them into chunks of a specified size. Each chunk embeds the full file
metadata (name, size, MD5, permissions, mtime) and can be decrypted
independently from the password and its own header alone.

Keys are derived per chunk with PBKDF2-HMAC-SHA512 (100,000 iterations) from
a key file: any text file whose trimmed contents are used as the password.`

	root.AddCommand(NewPackCommand(cfg), NewUnpackCommand(cfg), NewGenerateCommand())

	return root
}

// Command cokacenc encrypts files into independently decryptable chunks and
// reassembles them with end-to-end integrity verification.
package main

import (
	"os"

	"github.com/idelchi/cokacenc/internal/commands"
	"github.com/idelchi/cokacenc/internal/config"
)

// version is set at build time.
var version = "dev" //nolint:gochecknoglobals

func main() {
	cfg := &config.Config{}

	if err := commands.NewRootCommand(cfg, version).Execute(); err != nil {
		os.Exit(1)
	}
}

// Package cli holds the storefront command line.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// NewRootCommand returns the storefront command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront web backend: identity, step-up, payment and blog",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(userCmd())

	return root
}

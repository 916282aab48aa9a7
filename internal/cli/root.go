package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	catalogPath string
	outputJSON  bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rigup",
		Short: "Declarative workstation software provisioning",
		Long: "rigup reads a software catalog, resolves concrete versions and download\n" +
			"URLs, and installs the selection through the system package manager,\n" +
			"official download pages, or GitHub releases.",
		RunE:          runInteractive,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Path to a catalog file (default: ./rigup.yaml, then ~/.config/rigup/rigup.yaml, then built-in)")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newInstallCmd())

	return cmd
}

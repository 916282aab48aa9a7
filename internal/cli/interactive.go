package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rigup/internal/tui"
)

// runInteractive is the bare `rigup` invocation: the full-screen selection
// view. Falls back to help text when stdout is not a terminal.
func runInteractive(cmd *cobra.Command, _ []string) error {
	if tui.DetectMode(cmd.OutOrStdout(), false, outputJSON) != tui.ModeTUI {
		fmt.Fprintln(cmd.ErrOrStderr(), "no interactive terminal detected; use `rigup install` or `rigup resolve`")
		return cmd.Help()
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	return tui.RunInstaller(cmd.OutOrStdout(), a.cat, a.eng)
}

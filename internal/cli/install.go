package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	installDryRun      bool
	installYes         bool
	installConcurrency int
	installNoProgress  bool
)

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [software...]",
		Short: "Resolve and install the selected software",
		Long: "Resolves each selected entry and executes its install plan: package\n" +
			"manager commands, downloads, archive extraction, shell steps, and\n" +
			"PATH hints. With no arguments the catalog's default entries are\n" +
			"installed. --dry-run prints every action without touching the system.",
		RunE: runInstall,
	}

	cmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Simulate every action without executing anything")
	cmd.Flags().BoolVarP(&installYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().IntVar(&installConcurrency, "concurrency", 0, "Parallel installs (default 4)")
	cmd.Flags().BoolVar(&installNoProgress, "no-progress", false, "Disable interactive progress output")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.selectEntries(args); err != nil {
		return err
	}
	if installConcurrency > 0 {
		a.eng.Workers = installConcurrency
	}
	a.sess.SetDryRun(installDryRun)

	if !installDryRun && !installYes && !outputJSON {
		ok, err := confirmInstall(cmd, a)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
	}

	phase := "Installing"
	if installDryRun {
		phase = "Simulating"
	}
	return runEngine(cmd, a, phase, installNoProgress, a.eng.InstallSelected)
}

func confirmInstall(cmd *cobra.Command, a *app) (bool, error) {
	ids := a.sess.SelectedIDs()
	fmt.Fprintf(cmd.OutOrStdout(), "About to install %d entries: %s\n", len(ids), strings.Join(ids, ", "))
	fmt.Fprint(cmd.OutOrStdout(), "Proceed? [y/N] ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

package cli

import (
	"github.com/spf13/cobra"
)

var (
	resolveConcurrency int
	resolveNoProgress  bool
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [software...]",
		Short: "Resolve concrete versions and download URLs without installing",
		Long: "Resolves each selected entry to a concrete install command, download\n" +
			"URL, or release asset. With no arguments the catalog's default\n" +
			"entries are resolved.",
		RunE: runResolve,
	}

	cmd.Flags().IntVar(&resolveConcurrency, "concurrency", 0, "Parallel resolutions (default 4)")
	cmd.Flags().BoolVar(&resolveNoProgress, "no-progress", false, "Disable interactive progress output")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.selectEntries(args); err != nil {
		return err
	}
	if resolveConcurrency > 0 {
		a.eng.Workers = resolveConcurrency
	}

	return runEngine(cmd, a, "Resolving", resolveNoProgress, a.eng.ResolveSelected)
}

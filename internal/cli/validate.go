package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"rigup/internal/catalog"
	"rigup/internal/paths"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the catalog file",
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(catalogPath)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(pp.CatalogFile)
	if err != nil {
		return err
	}

	source := pp.CatalogFile
	if source == "" {
		source = "built-in catalog"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d entries)\n", source, len(cat.Software))
	return nil
}

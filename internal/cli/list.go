package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rigup/internal/catalog"
	"rigup/internal/paths"
	"rigup/internal/tui"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the software entries in the catalog",
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(catalogPath)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(pp.CatalogFile)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeListJSON(cmd, pp.CatalogFile, cat)
	}
	writeListTable(cmd, cat)
	return nil
}

func writeListTable(cmd *cobra.Command, cat catalog.Catalog) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tSOURCE\tDEFAULT\tDESCRIPTION")
	for _, e := range cat.Software {
		def := "-"
		if e.Default {
			def = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			tui.NonEmptyOrDash(e.DisplayName),
			tui.NonEmptyOrDash(e.Category),
			e.Source.Kind,
			def,
			tui.TruncateWithEllipsis(e.Description, 48),
		)
	}
	w.Flush()
}

func writeListJSON(cmd *cobra.Command, catalogFile string, cat catalog.Catalog) error {
	type listEntry struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Category    string `json:"category,omitempty"`
		Source      string `json:"source"`
		Default     bool   `json:"default"`
		Description string `json:"description,omitempty"`
	}
	payload := struct {
		Catalog string      `json:"catalog,omitempty"`
		Entries []listEntry `json:"entries"`
	}{Catalog: catalogFile}

	for _, e := range cat.Software {
		payload.Entries = append(payload.Entries, listEntry{
			ID:          e.ID,
			Name:        e.DisplayName,
			Category:    e.Category,
			Source:      string(e.Source.Kind),
			Default:     e.Default,
			Description: e.Description,
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode list json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

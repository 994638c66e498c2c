package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var nameFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Long: `List all installed packages from the local state directory.

By default, shows all installed packages with name, version and status.
Use --name to filter packages by name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, nameFilter)
		},
	}

	cmd.Flags().StringVar(&nameFilter, "name", "", "Filter packages by name (partial match)")

	return cmd
}

func runList(cmd *cobra.Command, nameFilter string) error {
	a, out, err := loadApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	rows, err := a.orch.ListInstalled(cmd.Context(), nameFilter)
	if err != nil {
		return err
	}

	if out.json {
		type entry struct {
			Name    string `json:"name"`
			Version string `json:"version"`
			Status  string `json:"status"`
			Update  string `json:"update,omitempty"`
		}
		entries := make([]entry, 0, len(rows))
		for _, r := range rows {
			entries = append(entries, entry{r.Record.Name, r.Record.Version, r.State.String(), r.Update})
		}
		return out.printJSON(entries)
	}

	if len(rows) == 0 {
		if nameFilter != "" {
			_, _ = fmt.Fprintf(out.w, "No installed packages match %q\n", nameFilter)
		} else {
			_, _ = fmt.Fprintln(out.w, "No packages installed")
		}
		return nil
	}

	tw := tabwriter.NewWriter(out.w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tVERSION\tSTATUS\tUPDATE")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Record.Name, r.Record.Version, r.State, r.Update)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out.w, "\nTotal: %d package(s)\n", len(rows))
	return nil
}

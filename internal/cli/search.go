package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search TERM",
		Short: "Search for packages",
		Long: `Search the synchronized repository indexes. A package matches when its
name or description contains TERM, ignoring case.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0])
		},
	}

	return cmd
}

func runSearch(cmd *cobra.Command, term string) error {
	a, out, err := loadApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	results, err := a.orch.Search(cmd.Context(), term)
	if err != nil {
		return err
	}

	if out.json {
		return out.printJSON(results)
	}
	if len(results) == 0 {
		_, _ = fmt.Fprintf(out.w, "No packages found matching %q\n", term)
		return nil
	}

	tw := tabwriter.NewWriter(out.w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tVERSION\tSTATUS\tDESCRIPTION")
	for _, rec := range results {
		status := ""
		if a.layout.State(rec.Name).HasDescription() {
			status = "installed"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Name, rec.Version, status, truncate(rec.Description, MaxDescriptionLength))
	}
	return tw.Flush()
}

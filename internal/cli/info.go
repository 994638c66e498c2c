package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info PACKAGE",
		Short: "Show package details",
		Long:  "Show the available and installed records of a package and its install state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0])
		},
	}

	return cmd
}

func runInfo(cmd *cobra.Command, name string) error {
	a, out, err := loadApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	info, err := a.orch.Info(cmd.Context(), name)
	if err != nil {
		return err
	}

	if out.json {
		return out.printJSON(struct {
			Name      string               `json:"name"`
			State     string               `json:"state"`
			Available *model.PackageRecord `json:"available,omitempty"`
			Installed *model.PackageRecord `json:"installed,omitempty"`
		}{info.Name, info.State.String(), info.Available, info.Installed})
	}

	tw := tabwriter.NewWriter(out.w, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Name:\t%s\n", nameColor.Sprint(info.Name))
	_, _ = fmt.Fprintf(tw, "State:\t%s\n", info.State)
	if rec := info.Installed; rec != nil {
		_, _ = fmt.Fprintf(tw, "Installed version:\t%s\n", rec.Version)
	}
	rec := info.Available
	if rec == nil {
		rec = info.Installed
	}
	if info.Available != nil {
		_, _ = fmt.Fprintf(tw, "Available version:\t%s\n", rec.Version)
	}
	_, _ = fmt.Fprintf(tw, "Architecture:\t%s\n", rec.Arch)
	_, _ = fmt.Fprintf(tw, "Depends:\t%s\n", strings.Join(rec.Dependencies(), ", "))
	if rec.Replaces != "" {
		_, _ = fmt.Fprintf(tw, "Replaces:\t%s\n", rec.Replaces)
	}
	_, _ = fmt.Fprintf(tw, "Download size:\t%s\n", humanize.IBytes(uint64(max(rec.DownloadSize, 0))))
	_, _ = fmt.Fprintf(tw, "Installed size:\t%s\n", humanize.IBytes(uint64(max(rec.InstalledSize, 0))))
	_, _ = fmt.Fprintf(tw, "Description:\t%s\n", rec.Description)
	return tw.Flush()
}

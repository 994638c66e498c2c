package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/orchestrator"
)

// NewUninstallCmd creates the uninstall command.
func NewUninstallCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "uninstall PACKAGE...",
		Short: "Uninstall packages",
		Long: `Remove installed packages. The pre-removal script of each package runs
first, then every file listed in its manifest is deleted. Dependencies are not
removed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd, args, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without making changes")

	return cmd
}

func runUninstall(cmd *cobra.Command, names []string, dryRun bool) error {
	a, out, err := loadApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	removed, err := a.orch.Uninstall(cmd.Context(), names, orchestrator.UninstallOptions{DryRun: dryRun})
	if out.json {
		if perr := out.printJSON(struct {
			DryRun  bool     `json:"dry_run"`
			Removed []string `json:"removed"`
		}{dryRun, removed}); perr != nil {
			return perr
		}
	} else {
		verb := "removed"
		if dryRun {
			verb = "would remove"
		}
		for _, name := range removed {
			_, _ = okColor.Fprintf(out.w, "%s %s\n", verb, name)
		}
	}
	if err != nil {
		return err
	}

	if !dryRun {
		logger.Success(fmt.Sprintf("Uninstalled %d package(s)", len(removed)))
	}
	return nil
}

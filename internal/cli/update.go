package cli

import (
	"github.com/spf13/cobra"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/orchestrator"
)

// NewUpdateCmd creates the update command.
func NewUpdateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "update [PACKAGE...]",
		Short: "Update installed packages",
		Long: `Install the available version of every installed package whose version
differs from the one in the repository indexes. When package names are given
only those are considered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be updated without making changes")

	return cmd
}

func runUpdate(cmd *cobra.Command, names []string, dryRun bool) error {
	a, out, err := loadApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	report, err := a.orch.Update(cmd.Context(), orchestrator.UpdateOptions{DryRun: dryRun, Packages: names})
	if report != nil {
		if perr := printReport(out, report, dryRun); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}

	if !dryRun && !report.Plan.Empty() {
		logger.Success("Update completed", logger.Fields{"packages": len(report.Plan.Records)})
	}
	return nil
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/orchestrator"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "install PACKAGE...",
		Short: "Install packages",
		Long: `Install one or more packages from the synchronized repository indexes.
Dependencies are resolved and installed first. A token may list alternatives
separated by "|", the first one found is used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be installed without making changes")

	return cmd
}

func runInstall(cmd *cobra.Command, names []string, dryRun bool) error {
	a, out, err := loadApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	report, err := a.orch.Install(cmd.Context(), names, orchestrator.InstallOptions{DryRun: dryRun})
	if report != nil {
		if perr := printReport(out, report, dryRun); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}

	if !dryRun && !report.Plan.Empty() {
		logger.Success("Installation completed", logger.Fields{"packages": len(report.Plan.Records)})
	}
	return nil
}

// printReport prints the plan and, for executed transactions, the result.
func printReport(out *printer, report *orchestrator.Report, dryRun bool) error {
	if out.json && report.Result != nil {
		return out.printResult(report.Result)
	}
	if err := out.printPlan(report.Plan, dryRun); err != nil {
		return err
	}
	return out.printResult(report.Result)
}

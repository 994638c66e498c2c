package cli

import (
	"github.com/spf13/cobra"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
)

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize repository indexes",
		Long: `Synchronize repository indexes by downloading the latest package
descriptors from the enabled repositories. Indexes younger than index_ttl
are kept unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Download every index even if it is fresh")

	return cmd
}

func runSync(cmd *cobra.Command, force bool) error {
	a, _, err := loadApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if err := a.orch.Sync(cmd.Context(), force); err != nil {
		return err
	}

	for name, state := range a.downloader.BreakerStates() {
		logger.Debug("Download host", logger.Fields{"host": name, "breaker": state})
	}
	logger.Success("Repository indexes synchronized", logger.Fields{"repositories": len(a.index.Repositories())})
	return nil
}

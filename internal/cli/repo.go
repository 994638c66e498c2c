package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/config"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
)

func newConfigRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage repositories",
		Long:  "Add, remove, list, enable and disable package repositories",
	}

	cmd.AddCommand(
		newRepoAddCmd(),
		newRepoRemoveCmd(),
		newRepoListCmd(),
		newRepoToggleCmd("enable", true),
		newRepoToggleCmd("disable", false),
	)

	return cmd
}

// Number of arguments expected by the repo add command.
const repoAddArgs = 2

func newRepoAddCmd() *cobra.Command {
	var disabled bool

	cmd := &cobra.Command{
		Use:   "add NAME URL",
		Short: "Add a repository",
		Long: `Add a repository. URL is either an http(s) location or a local directory
containing the repository descriptor.`,
		Args: cobra.ExactArgs(repoAddArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			return updateRepositories(func(cfg *config.Config) error {
				return cfg.AddRepository(args[0], args[1], !disabled)
			}, "Repository added", args[0])
		},
	}

	cmd.Flags().BoolVar(&disabled, "disabled", false, "Add the repository in disabled state")

	return cmd
}

func newRepoRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return updateRepositories(func(cfg *config.Config) error {
				if !cfg.RemoveRepository(args[0]) {
					return fmt.Errorf("%w: %s", errors.ErrRepositoryNotFound, args[0])
				}
				return nil
			}, "Repository removed", args[0])
		},
	}
}

func newRepoToggleCmd(verb string, enabled bool) *cobra.Command {
	short := "Disable a repository"
	if enabled {
		short = "Enable a repository"
	}
	return &cobra.Command{
		Use:   verb + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return updateRepositories(func(cfg *config.Config) error {
				if !cfg.EnableRepository(args[0], enabled) {
					return fmt.Errorf("%w: %s", errors.ErrRepositoryNotFound, args[0])
				}
				return nil
			}, "Repository "+verb+"d", args[0])
		},
	}
}

func newRepoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List repositories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Repositories) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No repositories configured")
				return nil
			}
			printRepositories(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

// updateRepositories loads the configuration, applies fn and saves the result.
func updateRepositories(fn func(*config.Config) error, msg, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	if err := cfg.SaveConfig(getConfigPath()); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	logger.Success(msg, logger.Fields{"name": name})
	return nil
}

func printRepositories(w io.Writer, cfg *config.Config) {
	for _, repo := range cfg.Repositories {
		status := "enabled"
		if !repo.IsEnabled() {
			status = "disabled"
		}
		_, _ = fmt.Fprintf(w, "  %s: %s (%s)\n", repo.Name, repo.URL, status)
	}
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/cache"
)

// NewCacheCmd creates the cache command with subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage package cache",
		Long:  "Clean, show information about, and locate the index and archive cache",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	var (
		all      bool
		indexes  bool
		packages bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean package cache",
		Long:  "Remove cached indexes and downloaded archives. Without flags everything is removed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheClean(cmd.OutOrStdout(), all, indexes, packages)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clean all cached files")
	cmd.Flags().BoolVar(&indexes, "indexes", false, "Clean only repository indexes")
	cmd.Flags().BoolVar(&packages, "packages", false, "Clean only downloaded archives")

	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		Long:  "Display the size and file count of the index and archive caches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheInfo(cmd.OutOrStdout())
		},
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		Long:  "Display the path to the cache directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCacheDir(cmd.OutOrStdout())
		},
	}
}

func newCacheOperation() (*cache.Operation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewOperation(cache.NewManager(cfg.GetCacheDir())), nil
}

func runCacheClean(w io.Writer, all, indexes, packages bool) error {
	op, err := newCacheOperation()
	if err != nil {
		return err
	}

	msg, err := op.Clean(all, indexes, packages)
	if err != nil {
		return err
	}

	logger.Success("Cache cleaning completed")
	_, _ = fmt.Fprintln(w, msg)
	return nil
}

func runCacheInfo(w io.Writer) error {
	op, err := newCacheOperation()
	if err != nil {
		return err
	}

	msg, err := op.GetInfo()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, msg)
	return nil
}

func runCacheDir(w io.Writer) error {
	op, err := newCacheOperation()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(w, op.GetDirectory())
	return nil
}

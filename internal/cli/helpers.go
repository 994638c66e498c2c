// Package cli implements the ccpkg commands.
package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/archive"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/config"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/database"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/download"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/hooks"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/index"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/installer"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/orchestrator"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	NoColor      *bool
	OutputFormat *string
)

// loadConfig loads the configuration and configures logging from it and the global flags.
// Flag overrides are not written into the returned configuration so commands that save it
// persist only what the file and the set command specify.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(cfg)
	return cfg, nil
}

// outputFormat returns the --output flag when given, else the configured format.
func outputFormat(cfg *config.Config) string {
	if OutputFormat != nil && *OutputFormat != "" {
		return *OutputFormat
	}
	return cfg.Settings.OutputFormat
}

// setupLogging configures the global logger from the settings and the global flags.
func setupLogging(cfg *config.Config) {
	if NoColor != nil && *NoColor {
		color.NoColor = true
		logger.SetNoColor(true)
	}
	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	format := logger.FormatText
	if outputFormat(cfg) == string(logger.FormatJSON) {
		format = logger.FormatJSON
	}
	logger.InitLogger(level, format)
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig and SaveConfig report a descriptive error.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err.Error()})
		return ""
	}
	return defaultPath
}

// app holds the components wired from one configuration.
type app struct {
	cfg        *config.Config
	layout     *database.Layout
	downloader *download.ManagerImpl
	index      *index.ManagerImpl
	engine     *installer.Engine
	orch       *orchestrator.Orchestrator
}

// newApp wires the index, the transaction engine and the orchestrator. The printer receives
// engine transitions and download progress.
func newApp(cfg *config.Config, out *printer) *app {
	p := cfg.Platform()
	layout := database.NewLayout(cfg.GetStateDir())
	dl := download.NewManager(cfg.Settings.HTTPTimeout.Std(), download.DefaultUserAgent)

	idx := index.NewManager(cfg.IndexRepositories(), cfg.GetIndexDir(), dl, layout, index.Options{
		Platform:    p,
		TTL:         cfg.Settings.IndexTTL.Std(),
		Concurrency: cfg.Settings.MaxConcurrent,
	})

	runner := hooks.NewScriptRunner(hooks.Environment{
		Root:  cfg.GetRootDir(),
		Arch:  p.Arch,
		ABI:   p.ABI,
		Extra: cfg.Settings.Environment,
	})

	engine := installer.NewEngine(installer.Options{
		RootDir:    cfg.GetRootDir(),
		CacheDir:   cfg.GetPackageCacheDir(),
		Layout:     layout,
		Downloader: dl,
		Archiver:   archive.NewManager(),
		Runner:     runner,
		Hooks:      out,
		FreeSpace:  fsutil.FreeSpace,
	})

	return &app{
		cfg:        cfg,
		layout:     layout,
		downloader: dl,
		index:      idx,
		engine:     engine,
		orch:       orchestrator.New(idx, engine, layout, p, orchestrator.Hooks{OnEvent: out.onPhase}),
	}
}

// loadApp loads the configuration and wires the components for a command writing to w.
func loadApp(w io.Writer) (*app, *printer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	out := newPrinter(outputFormat(cfg), w)
	return newApp(cfg, out), out, nil
}

// Package config provides configuration management for the ccpkg package manager.
// It handles loading, validating, and saving settings and repository definitions.
// YAML is the default format; files ending in .toml are read and written as TOML.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/fsutil"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/platform"
)

// Config represents the application configuration.
type Config struct {
	// Repository configuration
	Repositories []*RepositoryConfig `yaml:"repositories" toml:"repositories"`

	// General settings
	Settings Settings `yaml:"settings" toml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Filesystem layout
	RootDir  string `yaml:"root_dir,omitempty" toml:"root_dir,omitempty"`
	StateDir string `yaml:"state_dir,omitempty" toml:"state_dir,omitempty"`
	CacheDir string `yaml:"cache_dir,omitempty" toml:"cache_dir,omitempty"`

	// Target platform, detected when empty
	Arch string `yaml:"arch,omitempty" toml:"arch,omitempty"`
	ABI  string `yaml:"abi,omitempty" toml:"abi,omitempty"`

	// Network settings
	HTTPTimeout   Duration `yaml:"http_timeout" toml:"http_timeout"`
	IndexTTL      Duration `yaml:"index_ttl" toml:"index_ttl"`
	MaxConcurrent int      `yaml:"max_concurrent_syncs" toml:"max_concurrent_syncs"`

	// Output settings
	OutputFormat string `yaml:"output_format" toml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level" toml:"log_level"`         // debug, info, warn, error

	// Extra variables for package scripts
	Environment map[string]string `yaml:"environment,omitempty" toml:"environment,omitempty"`
}

// Default configuration values.
const (
	// DefaultHTTPTimeout bounds a single download, not extraction.
	DefaultHTTPTimeout = 5 * time.Minute

	// DefaultIndexTTL is how long a synced repository descriptor is considered fresh.
	DefaultIndexTTL = 6 * time.Hour

	// DefaultMaxConcurrent is the default number of repositories synced in parallel.
	DefaultMaxConcurrent = 4

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		Repositories: []*RepositoryConfig{},
		Settings: Settings{
			HTTPTimeout:   Duration(DefaultHTTPTimeout),
			IndexTTL:      Duration(DefaultIndexTTL),
			MaxConcurrent: DefaultMaxConcurrent,
			OutputFormat:  "text",
			LogLevel:      "info",
		},
	}
	if dir, err := fsutil.GetRootDir(); err == nil {
		cfg.Settings.RootDir = dir
	}
	if dir, err := fsutil.GetStateDir(); err == nil {
		cfg.Settings.StateDir = dir
	}
	if dir, err := fsutil.GetCacheDir(); err == nil {
		cfg.Settings.CacheDir = dir
	}
	return cfg
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	if isTOML(absPath) {
		return LoadConfigFromTOMLReader(file)
	}
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads YAML configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	return loadConfig(reader, yaml.Unmarshal)
}

// LoadConfigFromTOMLReader loads TOML configuration from an io.Reader.
func LoadConfigFromTOMLReader(reader io.Reader) (*Config, error) {
	return loadConfig(reader, toml.Unmarshal)
}

func loadConfig(reader io.Reader, unmarshal func([]byte, any) error) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigParse, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig writes the configuration atomically, as TOML when path ends in .toml.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	var data []byte
	if isTOML(absPath) {
		data, err = c.ToTOML()
	} else {
		data, err = c.ToYAML()
	}
	if err != nil {
		return err
	}

	tempPath := absPath + ".tmp"
	if err := os.WriteFile(tempPath, data, fsutil.FileModeDefault); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	if err := os.Chmod(absPath, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigFileChmod, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return buf.Bytes(), nil
}

// ToTOML converts the config to TOML bytes.
func (c *Config) ToTOML() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateRepositories(c.Repositories); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateRepositories(repos []*RepositoryConfig) error {
	repoNames := make(map[string]bool)
	for i, repo := range repos {
		if repo.Name == "" {
			return errors.ErrEmptyRepositoryNameWithIndex(i)
		}
		if repo.URL == "" {
			return errors.ErrRepositoryURLEmptyWithName(repo.Name)
		}
		if repoNames[repo.Name] {
			return errors.ErrRepositoryExistsWithName(repo.Name)
		}
		repoNames[repo.Name] = true
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.IndexTTL < 0 {
		return errors.ErrIndexTTLNegative
	}
	if s.MaxConcurrent < 1 {
		return errors.ErrMaxConcurrentInvalid
	}
	if s.Arch != "" && !platform.IsValidArch(s.Arch) {
		return fmt.Errorf("%w: %q, must be one of: %s", errors.ErrInvalidArch, s.Arch, strings.Join(platform.ValidArch(), ", "))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return fmt.Errorf("%w: %q, must be one of: text, json", errors.ErrInvalidOutputFormat, s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return fmt.Errorf("%w: %q, must be one of: debug, info, warn, error", errors.ErrInvalidLogLevel, s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, fsutil.AppName, "config.yaml"), nil
}

// AddRepository adds a repository to the configuration.
// Returns an error if a repository with the same name already exists.
func (c *Config) AddRepository(name, url string, enabled bool) error {
	if name == "" {
		return errors.ErrEmptyRepoName
	}
	if url == "" {
		return errors.ErrRepositoryURLEmptyWithName(name)
	}
	if c.GetRepository(name) != nil {
		return errors.ErrRepositoryExistsWithName(name)
	}

	c.Repositories = append(c.Repositories, &RepositoryConfig{
		Name:    name,
		URL:     url,
		Enabled: &enabled,
	})
	return nil
}

// RemoveRepository removes a repository from the configuration.
func (c *Config) RemoveRepository(name string) bool {
	for i, repo := range c.Repositories {
		if repo.Name == name {
			c.Repositories = append(c.Repositories[:i], c.Repositories[i+1:]...)
			return true
		}
	}
	return false
}

// GetRepository gets a repository configuration by name.
func (c *Config) GetRepository(name string) *RepositoryConfig {
	for _, repo := range c.Repositories {
		if repo.Name == name {
			return repo
		}
	}
	return nil
}

// EnableRepository enables or disables a repository.
func (c *Config) EnableRepository(name string, enabled bool) bool {
	repo := c.GetRepository(name)
	if repo == nil {
		return false
	}
	repo.Enabled = &enabled
	return true
}

// GetRootDir returns the toolchain root packages are extracted into.
func (c *Config) GetRootDir() string {
	return c.Settings.RootDir
}

// GetStateDir returns the directory holding descriptions, scripts and manifests.
func (c *Config) GetStateDir() string {
	return c.Settings.StateDir
}

// GetCacheDir returns the base cache directory from settings.
func (c *Config) GetCacheDir() string {
	return c.Settings.CacheDir
}

// GetIndexDir returns the path to the repository descriptor cache.
func (c *Config) GetIndexDir() string {
	return filepath.Join(c.GetCacheDir(), "indexes")
}

// GetPackageCacheDir returns the path to the downloaded archive cache.
func (c *Config) GetPackageCacheDir() string {
	return filepath.Join(c.GetCacheDir(), "packages")
}

// Platform returns the configured target platform, falling back to the running one.
func (c *Config) Platform() platform.Platform {
	if c.Settings.Arch == "" {
		current := platform.CurrentPlatform()
		if c.Settings.ABI != "" {
			current.ABI = strings.ToLower(c.Settings.ABI)
		}
		return current
	}
	return platform.New(c.Settings.Arch, c.Settings.ABI)
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.IndexTTL == 0 {
		c.Settings.IndexTTL = defaults.Settings.IndexTTL
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.RootDir == "" {
		c.Settings.RootDir = defaults.Settings.RootDir
	}
	if c.Settings.StateDir == "" {
		c.Settings.StateDir = defaults.Settings.StateDir
	}
	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	}
	if c.Repositories == nil {
		c.Repositories = []*RepositoryConfig{}
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

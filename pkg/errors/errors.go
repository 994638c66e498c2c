package errors

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename config file")
	ErrConfigFileChmod   = fmt.Errorf("failed to set config file permissions")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists")

	// Repository errors.
	ErrRepositoryExists   = fmt.Errorf("repository already exists")
	ErrRepositoryNotFound = fmt.Errorf("repository not found")
	ErrEmptyRepoName      = fmt.Errorf("repository name cannot be empty")
	ErrEmptyRepoURL       = fmt.Errorf("repository url cannot be empty")

	// Settings errors.
	ErrHTTPTimeoutNegative  = fmt.Errorf("http_timeout cannot be negative")
	ErrIndexTTLNegative     = fmt.Errorf("index_ttl cannot be negative")
	ErrMaxConcurrentInvalid = fmt.Errorf("max_concurrent_syncs must be at least 1")
	ErrInvalidOutputFormat  = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel      = fmt.Errorf("invalid log level")
	ErrInvalidArch          = fmt.Errorf("invalid architecture")

	// Cache errors.
	ErrCacheClean     = fmt.Errorf("failed to clean cache")
	ErrCacheInfo      = fmt.Errorf("failed to get cache info")
	ErrCacheDirectory = fmt.Errorf("cache directory cannot be empty")

	// Package errors.
	ErrPackageNotFound     = fmt.Errorf("package not found")
	ErrNotInstalled        = fmt.Errorf("package is not installed")
	ErrInsufficientStorage = fmt.Errorf("insufficient storage")
	ErrCorruptArchive      = fmt.Errorf("corrupt archive")
	ErrPartialDownload     = fmt.Errorf("partial download")
	ErrDownloadFailed      = fmt.Errorf("download failed")
	ErrDownloadStalled     = fmt.Errorf("download stalled")
	ErrInvalidPath         = fmt.Errorf("invalid path")
	ErrCancelled           = fmt.Errorf("transaction cancelled")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
)

// InsufficientStorageError is returned when a filesystem does not have room for a package.
type InsufficientStorageError struct {
	Package   string
	Path      string
	Required  uint64
	Available uint64
}

func (e *InsufficientStorageError) Error() string {
	return fmt.Sprintf("insufficient storage for %s in %s: %s required, %s available",
		e.Package, e.Path, humanize.IBytes(e.Required), humanize.IBytes(e.Available))
}

// Is makes errors.Is(err, ErrInsufficientStorage) work.
func (e *InsufficientStorageError) Is(target error) bool {
	return target == ErrInsufficientStorage
}

// CorruptArchiveError is returned when an archive cannot be read or extracted.
type CorruptArchiveError struct {
	Package string
	Archive string
	Err     error
}

func (e *CorruptArchiveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("corrupt archive %s for %s", e.Archive, e.Package)
	}
	return fmt.Sprintf("corrupt archive %s for %s: %v", e.Archive, e.Package, e.Err)
}

func (e *CorruptArchiveError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCorruptArchive) work.
func (e *CorruptArchiveError) Is(target error) bool {
	return target == ErrCorruptArchive
}

// PartialDownloadError is returned when fewer bytes than announced were received.
type PartialDownloadError struct {
	URL      string
	Expected int64
	Received int64
}

func (e *PartialDownloadError) Error() string {
	return fmt.Sprintf("partial download of %s: received %d of %d bytes", e.URL, e.Received, e.Expected)
}

// Is makes errors.Is(err, ErrPartialDownload) work.
func (e *PartialDownloadError) Is(target error) bool {
	return target == ErrPartialDownload
}

// TransactionError reports the package that stopped a transaction.
type TransactionError struct {
	Package string
	Err     error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction aborted at %s: %v", e.Package, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// ErrRepositoryExistsWithName returns an error for a duplicate repository name.
func ErrRepositoryExistsWithName(name string) error {
	return fmt.Errorf("%w: %s", ErrRepositoryExists, name)
}

// ErrEmptyRepositoryNameWithIndex returns an error for a repository entry without a name.
func ErrEmptyRepositoryNameWithIndex(index int) error {
	return fmt.Errorf("%w (repository #%d)", ErrEmptyRepoName, index)
}

// ErrRepositoryURLEmptyWithName returns an error for a repository entry without a location.
func ErrRepositoryURLEmptyWithName(name string) error {
	return fmt.Errorf("%w: %s", ErrEmptyRepoURL, name)
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is is a shorthand for the standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a shorthand for the standard library errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

package cache

// Subdirectories of the cache directory.
const (
	IndexDirName   = "indexes"
	PackageDirName = "packages"
)

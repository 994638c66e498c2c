package fsutil

// Permission bits for files the package manager writes.
const (
	FileModeDefault = 0o644 // archives, descriptions, manifests, config
	FileModeExec    = 0o755 // lifecycle scripts before they run
	DirModeDefault  = 0o755 // toolchain root, state and cache directories
)

package installer

import (
	"context"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/archive"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/download"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// Archiver measures and unpacks package archives.
type Archiver interface {
	UncompressedSize(ctx context.Context, archivePath string) (int64, error)
	ExtractAll(ctx context.Context, archivePath, destDir string, onEntry archive.EntryFunc) error
}

// Hooks observes a transaction. Calls happen on the goroutine running the transaction,
// except OnProgress which runs on a forwarding goroutine.
type Hooks interface {
	OnEvent(ev Event)
	OnProgress(p download.Progress)
}

// SpaceFunc reports the free bytes on the filesystem holding path.
type SpaceFunc func(path string) (uint64, error)

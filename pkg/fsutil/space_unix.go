//go:build unix

package fsutil

import (
	"golang.org/x/sys/unix"
)

// FreeSpace returns the number of bytes available to an unprivileged user on the filesystem holding path.
// A path that does not exist yet is resolved to its nearest existing parent.
func FreeSpace(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(existingParent(path), &st); err != nil {
		return 0, err
	}
	return uint64(st.Bavail) * uint64(st.Bsize), nil //nolint:gosec,unconvert // Bsize is positive, types differ per OS
}

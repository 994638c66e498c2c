//go:build !unix

package fsutil

import "errors"

// FreeSpace is not supported on this platform; callers treat the error as "unknown".
func FreeSpace(string) (uint64, error) {
	return 0, errors.ErrUnsupported
}

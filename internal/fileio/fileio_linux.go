//go:build linux

package fileio

import (
	"os"

	"golang.org/x/sys/unix"
)

// openOpportunistic attempts O_NOATIME so reading a file for archiving
// doesn't disturb its access time.
func openOpportunistic(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOATIME, 0)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

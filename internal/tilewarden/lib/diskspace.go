package lib

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// headroomFactor is the multiple of the compressed download size that must
// be free before a download starts: compressed artifact + decompressed form
// + safety margin for the final relocation.
const headroomFactor = 3

// freeBytes reports the bytes available to unprivileged users on the
// filesystem containing path. A package variable so tests can substitute
// fixed numbers without a real statfs.
var freeBytes = func(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return st.Bavail * uint64(st.Bsize), nil
}

// CheckSpace gates a download on available disk space. A zero or negative
// expected size means the remote size could not be determined; that is a
// deliberate soft-fail (the caller warns and proceeds). A known size with
// insufficient headroom returns *InsufficientSpaceError and the caller must
// abort before the download starts.
func CheckSpace(stagingPath string, expectedRemoteBytes int64) error {
	if expectedRemoteBytes <= 0 {
		return nil
	}

	free, err := freeBytes(stagingPath)
	if err != nil {
		return err
	}

	required := uint64(expectedRemoteBytes) * headroomFactor
	if free < required {
		return &InsufficientSpaceError{Free: free, Required: required}
	}
	return nil
}

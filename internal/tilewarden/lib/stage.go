package lib

import (
	"fmt"
	"os"
	"path/filepath"
)

// AcquireStaging creates the staging directory for a pair's relative final
// path. The os.Mkdir call doubles as the advisory lock: it fails if the
// directory already exists, so two invocations racing on the same pair
// cannot both pass. The returned release function discards the staging
// directory; it is a no-op after a successful promote (the rename moved the
// directory away).
//
// A crash that skips release leaves the staging directory behind, and the
// next attempt refuses to start until the operator removes it. That is the
// cost of filesystem-only coordination: a stale lock is indistinguishable
// from a live one.
func AcquireStaging(root, relPath string) (string, func(), error) {
	staging := stagingPath(root, relPath)

	if err := os.MkdirAll(filepath.Dir(staging), 0755); err != nil {
		return "", nil, err
	}

	if err := os.Mkdir(staging, 0755); err != nil {
		if os.IsExist(err) {
			return "", nil, fmt.Errorf(
				"staging directory %s already exists: another acquisition of %s may be in progress (remove it if stale)",
				staging, relPath)
		}
		return "", nil, err
	}

	release := func() {
		if err := os.RemoveAll(staging); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to clean staging %s: %v\n", staging, err)
		}
	}
	return staging, release, nil
}

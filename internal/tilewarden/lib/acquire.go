package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tilewarden/tilewarden/internal/tilewarden/types"
)

// PopulateFunc fills a staging directory with a pair's final content. It
// performs the download/decompress/extract work; by the time it returns nil
// the staging directory must hold exactly what the final directory should
// contain (intermediates like the original archive removed).
type PopulateFunc func(ctx context.Context, stagingDir string) error

// Acquire is the idempotent fetch-and-place algorithm shared by image,
// tile-extraction and asset acquisitions.
//
// relPath is the pair's path relative to root (e.g. "planet/20240101_000000"
// or "fonts"). marker names the sub-entry whose presence proves the final
// directory is complete; an empty marker means "any entry at all". The
// completeness check runs first and cheaply — a Skipped result involves no
// staging, no lock and no network.
//
// Content placement is atomic: populate works against an isolated staging
// directory on the same filesystem, and the final directory appears only
// through the closing os.Rename. An interrupted run never leaves a partial
// final path, so a rerun starts fresh.
func Acquire(ctx context.Context, root, relPath, marker string, populate PopulateFunc) (types.AcquireResult, error) {
	final := filepath.Join(root, relPath)
	if isComplete(final, marker) {
		return types.AcquireResult{Status: types.AcquireSkipped, FinalPath: final}, nil
	}

	staging, release, err := AcquireStaging(root, relPath)
	if err != nil {
		return types.AcquireResult{}, err
	}
	defer release()

	if err := populate(ctx, staging); err != nil {
		return types.AcquireResult{}, err
	}

	if err := os.MkdirAll(filepath.Dir(final), 0755); err != nil {
		return types.AcquireResult{}, err
	}

	// A final directory that exists but failed the completeness check is
	// debris from outside this tool (our own promote is all-or-nothing).
	// Clear it so the rename cannot trip over a non-empty target.
	if DirExists(final) {
		if err := os.RemoveAll(final); err != nil {
			return types.AcquireResult{}, fmt.Errorf("failed to clear incomplete %s: %w", final, err)
		}
	}

	if err := os.Rename(staging, final); err != nil {
		return types.AcquireResult{}, fmt.Errorf("failed to promote %s: %w", relPath, err)
	}

	return types.AcquireResult{Status: types.AcquireOK, FinalPath: final}, nil
}

// isComplete implements the idempotence gate. With a marker, the marker
// sub-entry must exist (and, if a directory, be non-empty). Without one,
// the final directory itself must be non-empty. An existing-but-empty
// directory is never complete.
func isComplete(final, marker string) bool {
	if marker == "" {
		return DirNonEmpty(final)
	}

	info, err := os.Stat(filepath.Join(final, marker))
	if err != nil {
		return false
	}
	if info.IsDir() {
		return DirNonEmpty(filepath.Join(final, marker))
	}
	return true
}

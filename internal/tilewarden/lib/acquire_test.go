package lib

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilewarden/tilewarden/internal/tilewarden/types"
)

func TestAcquireIdempotence(t *testing.T) {
	root := t.TempDir()
	calls := 0
	populate := func(ctx context.Context, staging string) error {
		calls++
		return os.WriteFile(filepath.Join(staging, ImageFileName), []byte("image-bytes"), 0644)
	}

	// First call does the work.
	res, err := Acquire(context.Background(), root, "planet/20240101_000000", ImageFileName, populate)
	require.NoError(t, err)
	assert.Equal(t, types.AcquireOK, res.Status)
	assert.Equal(t, filepath.Join(root, "planet/20240101_000000"), res.FinalPath)
	assert.Equal(t, 1, calls)

	content, err := os.ReadFile(filepath.Join(res.FinalPath, ImageFileName))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))

	// Second call must skip without invoking populate and must not touch
	// the existing content.
	res2, err := Acquire(context.Background(), root, "planet/20240101_000000", ImageFileName, populate)
	require.NoError(t, err)
	assert.Equal(t, types.AcquireSkipped, res2.Status)
	assert.Equal(t, res.FinalPath, res2.FinalPath)
	assert.Equal(t, 1, calls)

	content, err = os.ReadFile(filepath.Join(res.FinalPath, ImageFileName))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))
}

func TestAcquireFailureLeavesNoFinalPath(t *testing.T) {
	root := t.TempDir()
	boom := errors.New("transfer interrupted")
	populate := func(ctx context.Context, staging string) error {
		// Simulate a crash mid-download: partial staging content, then failure.
		if err := os.WriteFile(filepath.Join(staging, "tiles.btrfs.gz"), []byte("parti"), 0644); err != nil {
			return err
		}
		return boom
	}

	_, err := Acquire(context.Background(), root, "planet/v1", ImageFileName, populate)
	require.ErrorIs(t, err, boom)

	// No final path appeared and the staging directory (the lock) was
	// discarded, so a rerun starts fresh.
	assert.NoDirExists(t, filepath.Join(root, "planet", "v1"))
	assert.NoDirExists(t, filepath.Join(root, StagingDirName, "planet_v1"))

	res, err := Acquire(context.Background(), root, "planet/v1", ImageFileName,
		func(ctx context.Context, staging string) error {
			return os.WriteFile(filepath.Join(staging, ImageFileName), []byte("ok"), 0644)
		})
	require.NoError(t, err)
	assert.Equal(t, types.AcquireOK, res.Status)
	assert.FileExists(t, filepath.Join(root, "planet", "v1", ImageFileName))
}

func TestAcquireStagingLockExcludesSamePair(t *testing.T) {
	root := t.TempDir()

	// Another invocation holds the pair's staging directory.
	held := filepath.Join(root, StagingDirName, "planet_v1")
	require.NoError(t, os.MkdirAll(held, 0755))

	_, err := Acquire(context.Background(), root, "planet/v1", ImageFileName,
		func(ctx context.Context, staging string) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	// A different pair stages independently.
	res, err := Acquire(context.Background(), root, "planet/v2", ImageFileName,
		func(ctx context.Context, staging string) error {
			return os.WriteFile(filepath.Join(staging, ImageFileName), []byte("x"), 0644)
		})
	require.NoError(t, err)
	assert.Equal(t, types.AcquireOK, res.Status)
}

func TestAcquireEmptyFinalDirIsNotComplete(t *testing.T) {
	root := t.TempDir()

	// An empty (or marker-less) final directory must not count as done.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "planet", "v1"), 0755))

	calls := 0
	res, err := Acquire(context.Background(), root, "planet/v1", ImageFileName,
		func(ctx context.Context, staging string) error {
			calls++
			return os.WriteFile(filepath.Join(staging, ImageFileName), []byte("x"), 0644)
		})
	require.NoError(t, err)
	assert.Equal(t, types.AcquireOK, res.Status)
	assert.Equal(t, 1, calls)
	assert.FileExists(t, filepath.Join(root, "planet", "v1", ImageFileName))
}

func TestAcquireEmptyMarkerDirIsNotComplete(t *testing.T) {
	root := t.TempDir()

	// An asset whose ofm/ directory exists but is empty was never fully
	// extracted; it must be re-acquired.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "fonts", AssetMarkerDirName), 0755))

	res, err := Acquire(context.Background(), root, "fonts", AssetMarkerDirName,
		func(ctx context.Context, staging string) error {
			dir := filepath.Join(staging, AssetMarkerDirName)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(dir, "Roboto.pbf"), []byte("glyphs"), 0644)
		})
	require.NoError(t, err)
	assert.Equal(t, types.AcquireOK, res.Status)

	// Now the marker is populated and a rerun skips.
	res, err = Acquire(context.Background(), root, "fonts", AssetMarkerDirName,
		func(ctx context.Context, staging string) error {
			t.Fatal("populate must not run for a complete asset")
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, types.AcquireSkipped, res.Status)
}

func TestAcquireNoMarkerUsesNonEmptyDir(t *testing.T) {
	root := t.TempDir()

	res, err := Acquire(context.Background(), root, "sprites/ofm_f384", "",
		func(ctx context.Context, staging string) error {
			return os.WriteFile(filepath.Join(staging, "sprite.png"), []byte("png"), 0644)
		})
	require.NoError(t, err)
	assert.Equal(t, types.AcquireOK, res.Status)

	res, err = Acquire(context.Background(), root, "sprites/ofm_f384", "",
		func(ctx context.Context, staging string) error {
			t.Fatal("populate must not run for a complete sprite version")
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, types.AcquireSkipped, res.Status)
}

package lib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireStagingCreatesAndReleases(t *testing.T) {
	root := t.TempDir()

	staging, release, err := AcquireStaging(root, "planet/20240101_000000")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, StagingDirName, "planet_20240101_000000"), staging)
	assert.DirExists(t, staging)

	release()
	assert.NoDirExists(t, staging)
}

func TestAcquireStagingIsAMutex(t *testing.T) {
	root := t.TempDir()

	staging, release, err := AcquireStaging(root, "planet/v1")
	require.NoError(t, err)
	defer release()

	// A second acquisition of the same pair must be refused while the
	// first holds the staging directory.
	_, _, err = AcquireStaging(root, "planet/v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), staging)

	// Other pairs are unaffected.
	other, otherRelease, err := AcquireStaging(root, "planet/v2")
	require.NoError(t, err)
	defer otherRelease()
	assert.DirExists(t, other)
}

func TestAcquireStagingReleaseAfterPromoteIsHarmless(t *testing.T) {
	root := t.TempDir()

	staging, release, err := AcquireStaging(root, "planet/v1")
	require.NoError(t, err)

	final := filepath.Join(root, "planet", "v1")
	require.NoError(t, os.MkdirAll(filepath.Dir(final), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, ImageFileName), []byte("x"), 0644))
	require.NoError(t, os.Rename(staging, final))

	// The rename moved the directory away; release must not disturb the
	// promoted content.
	release()
	assert.FileExists(t, filepath.Join(final, ImageFileName))
}

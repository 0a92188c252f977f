package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilewarden/tilewarden/internal/tilewarden/commands"
	"github.com/tilewarden/tilewarden/internal/tilewarden/lib"
)

const imageListing = `areas/planet/20240101_000000_pt/tiles.btrfs.gz
areas/planet/20240102_000000_pt/tiles.btrfs.gz
areas/planet/20240101_120000_pt/tiles.btrfs.gz`

func TestFetchImageResolvesLatestAndPlacesImage(t *testing.T) {
	lib.ResetIgnoreState()
	cfg := testConfig(t)
	server := newCDNServer(t, imageListing)
	cfg.BtrfsCDNURL = server.URL

	transfer := &fakeTransferer{payload: gzippedBytes(t, []byte("pretend-btrfs-image"))}
	deps := testDeps(transfer)

	err := commands.FetchImage(context.Background(), cfg, deps, "planet", "latest")
	require.NoError(t, err)

	// The latest version was resolved lexicographically and the image
	// decompressed into its final versioned directory.
	imagePath := lib.ImagePath(cfg.BtrfsDir, "planet", "20240102_000000_pt")
	content, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	assert.Equal(t, "pretend-btrfs-image", string(content))

	// The compressed intermediate did not survive into the final directory.
	assert.NoFileExists(t, filepath.Join(filepath.Dir(imagePath), lib.CompressedImageName))

	require.Len(t, transfer.calls, 1)
	assert.Equal(t, server.URL+"/areas/planet/20240102_000000_pt/tiles.btrfs.gz", transfer.calls[0])
}

func TestFetchImageIsIdempotent(t *testing.T) {
	lib.ResetIgnoreState()
	cfg := testConfig(t)
	server := newCDNServer(t, imageListing)
	cfg.BtrfsCDNURL = server.URL

	transfer := &fakeTransferer{payload: gzippedBytes(t, []byte("pretend-btrfs-image"))}
	deps := testDeps(transfer)

	require.NoError(t, commands.FetchImage(context.Background(), cfg, deps, "planet", "latest"))
	require.NoError(t, commands.FetchImage(context.Background(), cfg, deps, "planet", "latest"))

	// The second run found the image in place and downloaded nothing.
	assert.Len(t, transfer.calls, 1)
}

func TestFetchImageExplicitVersionSkipsResolution(t *testing.T) {
	lib.ResetIgnoreState()
	cfg := testConfig(t)
	// No listing server at all: an explicit version must not consult it.
	cfg.BtrfsCDNURL = "http://127.0.0.1:1" // nothing listens here

	transfer := &fakeTransferer{payload: gzippedBytes(t, []byte("x"))}
	deps := testDeps(transfer)

	err := commands.FetchImage(context.Background(), cfg, deps, "monaco", "20240101_000000_mc")
	require.NoError(t, err)
	assert.FileExists(t, lib.ImagePath(cfg.BtrfsDir, "monaco", "20240101_000000_mc"))
}

func TestFetchImageUnknownAreaFails(t *testing.T) {
	lib.ResetIgnoreState()
	cfg := testConfig(t)
	server := newCDNServer(t, imageListing)
	cfg.BtrfsCDNURL = server.URL

	transfer := &fakeTransferer{payload: gzippedBytes(t, []byte("x"))}
	err := commands.FetchImage(context.Background(), cfg, testDeps(transfer), "atlantis", "latest")
	require.Error(t, err)
	assert.ErrorIs(t, err, lib.ErrNotFound)
	assert.Empty(t, transfer.calls)
}

func TestFetchImageFailedTransferLeavesNoFinalPath(t *testing.T) {
	lib.ResetIgnoreState()
	cfg := testConfig(t)
	server := newCDNServer(t, imageListing)
	cfg.BtrfsCDNURL = server.URL

	transfer := &fakeTransferer{
		payload: gzippedBytes(t, []byte("x")),
		failFor: []string{"tiles.btrfs.gz"},
	}
	deps := testDeps(transfer)

	err := commands.FetchImage(context.Background(), cfg, deps, "planet", "latest")
	require.Error(t, err)

	var toolErr *lib.ExternalToolFailure
	assert.ErrorAs(t, err, &toolErr)

	// Atomicity: the failed run left neither a final directory nor a stale
	// staging lock, so the retry succeeds.
	assert.NoDirExists(t, filepath.Join(cfg.BtrfsDir, "planet"))

	transfer.failFor = nil
	require.NoError(t, commands.FetchImage(context.Background(), cfg, deps, "planet", "latest"))
	assert.FileExists(t, lib.ImagePath(cfg.BtrfsDir, "planet", "20240102_000000_pt"))
}

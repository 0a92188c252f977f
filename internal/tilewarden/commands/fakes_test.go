// The _test suffix creates an external test package, so the orchestrators
// are exercised through their public API the way the CLI calls them.
package commands_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/tilewarden/tilewarden/internal/tilewarden/commands"
	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
	"github.com/tilewarden/tilewarden/internal/tilewarden/lib"
)

// fakeTransferer records every fetch and writes a canned payload to the
// destination. URLs listed in failFor return an error instead.
type fakeTransferer struct {
	payload []byte
	calls   []string
	failFor []string
}

func (f *fakeTransferer) Fetch(ctx context.Context, url, dest string) error {
	f.calls = append(f.calls, url)
	for _, bad := range f.failFor {
		if strings.Contains(url, bad) {
			return &lib.ExternalToolFailure{Tool: "aria2c", Err: errors.New("exit status 1")}
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, f.payload, 0644)
}

// fetchCount returns how many fetches hit URLs containing substr.
func (f *fakeTransferer) fetchCount(substr string) int {
	n := 0
	for _, url := range f.calls {
		if strings.Contains(url, substr) {
			n++
		}
	}
	return n
}

// fakeExtractor pretends to unpack an archive by creating a marker tree:
// with strip=0 an ofm/ directory holding one file, with strip=1 a bare
// payload file (the archive's single top-level directory stripped away).
type fakeExtractor struct {
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, archive, destDir string, strip int) error {
	f.calls++
	if strip > 0 {
		return os.WriteFile(filepath.Join(destDir, "sprite@2x.png"), []byte("png"), 0644)
	}
	dir := filepath.Join(destDir, lib.AssetMarkerDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "payload.bin"), []byte("data"), 0644)
}

// fakeMounter materializes an image's contents at the mount point instead
// of loop-mounting anything, and records that release ran.
type fakeMounter struct {
	withMetadata bool
	released     bool
	failMount    bool
}

func (f *fakeMounter) Mount(ctx context.Context, imagePath, mountPoint string) (func(), error) {
	if f.failMount {
		return nil, &lib.ExternalToolFailure{Tool: "mount", Err: errors.New("exit status 32")}
	}
	tilesDir := filepath.Join(mountPoint, lib.TilesDirName, "0", "0")
	if err := os.MkdirAll(tilesDir, 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(tilesDir, "0.pbf"), []byte("tile-bytes"), 0644); err != nil {
		return nil, err
	}
	if f.withMetadata {
		meta := filepath.Join(mountPoint, lib.MetadataFileName)
		if err := os.WriteFile(meta, []byte(`{"format":"pbf"}`), 0644); err != nil {
			return nil, err
		}
	}
	return func() { f.released = true }, nil
}

// fakeSyncer copies the tree in-process instead of shelling out to rsync.
type fakeSyncer struct {
	fail bool
}

func (f *fakeSyncer) Sync(ctx context.Context, srcDir, destDir string) error {
	if f.fail {
		return &lib.ExternalToolFailure{Tool: "rsync", Err: errors.New("exit status 23")}
	}
	return os.CopyFS(destDir, os.DirFS(srcDir))
}

// gzippedBytes compresses content so the real gzip decompressor can chew
// through what the fake transferer "downloaded".
func gzippedBytes(t *testing.T, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// newCDNServer serves a files.txt listing; every other path 404s, which
// also exercises the size-probe soft-fail.
func newCDNServer(t *testing.T, listing string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files.txt" {
			fmt.Fprint(w, listing)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

// testConfig returns a config pointing every root at its own temp dir.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.BtrfsDir = t.TempDir()
	cfg.TilesDir = t.TempDir()
	cfg.AssetsDir = t.TempDir()
	cfg.NginxIncludesDir = filepath.Join(t.TempDir(), "includes")
	return cfg
}

// testDeps wires fakes for everything; individual tests override fields.
func testDeps(transfer *fakeTransferer) commands.Deps {
	return commands.Deps{
		Transfer:      transfer,
		AssetTransfer: transfer,
		Decompress:    lib.GzipDecompressor{},
		Extract:       &fakeExtractor{},
		Mount:         &fakeMounter{withMetadata: true},
		Sync:          &fakeSyncer{},
	}
}

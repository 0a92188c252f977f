package lib

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Decompressor strips the gzip layer off a downloaded artifact in place:
// the compressed file is replaced by its decompressed form in the same
// directory, and the compressed original is removed.
type Decompressor interface {
	// Decompress returns the path of the decompressed file.
	Decompress(ctx context.Context, path string) (string, error)
}

// PigzDecompressor shells out to unpigz for parallel decompression. unpigz
// replaces file.gz with file on success, which is exactly the in-place
// contract.
type PigzDecompressor struct{}

func (PigzDecompressor) Decompress(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "unpigz", path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", &ExternalToolFailure{Tool: "unpigz", Err: err}
	}
	return strings.TrimSuffix(path, ".gz"), nil
}

// GzipDecompressor decompresses in-process. Single-threaded, so slower than
// unpigz on planet-sized images, but it keeps the pipeline working on hosts
// without pigz installed.
type GzipDecompressor struct{}

func (GzipDecompressor) Decompress(ctx context.Context, path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	zr, err := gzip.NewReader(src)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	outPath := strings.TrimSuffix(path, ".gz")
	dst, err := os.Create(outPath)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, zr); err != nil {
		dst.Close()
		os.Remove(outPath)
		return "", err
	}
	if err := dst.Sync(); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}

	if err := os.Remove(path); err != nil {
		return "", err
	}
	return outPath, nil
}

// NewDecompressor prefers unpigz when it is on PATH and falls back to the
// in-process gzip reader otherwise.
func NewDecompressor() Decompressor {
	if _, err := exec.LookPath("unpigz"); err == nil {
		return PigzDecompressor{}
	}
	return GzipDecompressor{}
}

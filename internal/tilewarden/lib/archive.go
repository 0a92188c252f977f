package lib

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Extractor unpacks a tar.gz archive into a directory. strip removes that
// many leading path components from every archive entry (tar's
// --strip-components), used when the archive carries a single top-level
// directory that should become the destination itself.
type Extractor interface {
	Extract(ctx context.Context, archive, destDir string, strip int) error
}

// TarExtractor shells out to tar. Exit status is the only contract.
type TarExtractor struct{}

func (TarExtractor) Extract(ctx context.Context, archive, destDir string, strip int) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	args := []string{"-xzf", archive, "-C", destDir}
	if strip > 0 {
		args = append(args, fmt.Sprintf("--strip-components=%d", strip))
	}

	cmd := exec.CommandContext(ctx, "tar", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &ExternalToolFailure{Tool: "tar", Err: err}
	}
	return nil
}

package lib

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ImageMounter exposes a filesystem image's contents at a mount point. The
// returned release function unmounts and frees every resource the mount
// claimed; callers must defer it immediately so the loopback device is
// released on every exit path, including mid-copy failures.
type ImageMounter interface {
	Mount(ctx context.Context, imagePath, mountPoint string) (release func(), err error)
}

// LoopMounter mounts a btrfs image read-only through a loopback block
// device (losetup + mount). Requires root.
type LoopMounter struct{}

func (LoopMounter) Mount(ctx context.Context, imagePath, mountPoint string) (func(), error) {
	if err := os.MkdirAll(mountPoint, 0755); err != nil {
		return nil, err
	}

	// -f --show finds a free loop device and attaches the image in one
	// call, so two extracts running at once cannot grab the same device.
	out, err := exec.CommandContext(ctx, "losetup", "-f", "--show", imagePath).Output()
	if err != nil {
		return nil, &ExternalToolFailure{Tool: "losetup", Err: err}
	}
	loopDev := strings.TrimSpace(string(out))

	detach := func() {
		// Detach deliberately ignores the context: cleanup must run even
		// after cancellation.
		if err := exec.Command("losetup", "-d", loopDev).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to detach %s: %v\n", loopDev, err)
		}
	}

	if err := exec.CommandContext(ctx, "mount", "-t", "btrfs", "-o", "ro", loopDev, mountPoint).Run(); err != nil {
		detach()
		return nil, &ExternalToolFailure{Tool: "mount", Err: err}
	}

	release := func() {
		if err := exec.Command("umount", mountPoint).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to unmount %s: %v\n", mountPoint, err)
		}
		detach()
	}
	return release, nil
}

// Syncer copies a directory tree. Implementations must preserve hard links,
// which tile trees use heavily for duplicate tiles.
type Syncer interface {
	Sync(ctx context.Context, srcDir, destDir string) error
}

// RsyncSyncer copies with rsync in archive mode, showing overall progress.
type RsyncSyncer struct{}

func (RsyncSyncer) Sync(ctx context.Context, srcDir, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "rsync", "-aH", "--info=progress2",
		strings.TrimRight(srcDir, "/")+"/",
		strings.TrimRight(destDir, "/")+"/")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &ExternalToolFailure{Tool: "rsync", Err: err}
	}
	return nil
}

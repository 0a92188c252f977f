package commands

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
	"github.com/tilewarden/tilewarden/internal/tilewarden/lib"
	"github.com/tilewarden/tilewarden/internal/tilewarden/types"
)

// FetchImage downloads an area's compressed btrfs tile image, decompresses
// it and places it under <btrfs_dir>/<area>/<version>/tiles.btrfs. The
// version "latest" (or "") is resolved against the CDN listing first. The
// acquisition is idempotent: if the image file is already in place, nothing
// is downloaded.
func FetchImage(ctx context.Context, cfg config.Config, deps Deps, area, version string) error {
	cdn := lib.NewClient(cfg.BtrfsCDNURL)

	if version == "" || version == "latest" {
		log.Info().Str("area", area).Msg("Fetching available versions")
		resolved, err := cdn.ResolveLatest(ctx, area)
		if err != nil {
			return fmt.Errorf("failed to resolve latest version for %s: %w", area, err)
		}
		version = resolved
		log.Info().Str("area", area).Str("version", version).Msg("Latest version resolved")
	}

	url := cdn.ImageURL(area, version)

	populate := func(ctx context.Context, staging string) error {
		// Disk-space preflight. An unknown remote size is a soft-fail:
		// warn and download anyway, since HEAD support on the CDN is not
		// guaranteed.
		size := cdn.RemoteSize(ctx, url)
		if size == 0 {
			log.Warn().Str("url", url).Msg("Could not determine remote file size, skipping disk space check")
		} else if err := lib.CheckSpace(staging, size); err != nil {
			return err
		} else {
			log.Info().
				Str("compressed", fmt.Sprintf("%.1fGB", float64(size)/(1<<30))).
				Msg("Disk space check passed")
		}

		compressed := filepath.Join(staging, lib.CompressedImageName)
		log.Info().Str("url", url).Msg("Downloading")
		if err := deps.Transfer.Fetch(ctx, url, compressed); err != nil {
			return err
		}

		log.Info().Msg("Decompressing")
		if _, err := deps.Decompress.Decompress(ctx, compressed); err != nil {
			return err
		}
		return nil
	}

	res, err := lib.Acquire(ctx, cfg.BtrfsDir, path.Join(area, version), lib.ImageFileName, populate)
	if err != nil {
		return fmt.Errorf("failed to acquire image %s/%s: %w", area, version, err)
	}

	switch res.Status {
	case types.AcquireSkipped:
		log.Info().Str("path", res.FinalPath).Msg("Image already downloaded, skipping")
	default:
		log.Info().Str("path", res.FinalPath).Msg("Image downloaded")
	}
	return nil
}

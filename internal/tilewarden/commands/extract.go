package commands

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
	"github.com/tilewarden/tilewarden/internal/tilewarden/lib"
	"github.com/tilewarden/tilewarden/internal/tilewarden/types"
)

// ExtractArea copies the tile payload out of one downloaded btrfs image
// into <tiles_dir>/<area>/<version>, so a plain web server can serve the
// tiles without privileged mounts. The image is loop-mounted read-only; the
// unmount and loop-device release run on every exit path, including a
// failed copy. Placement is atomic and idempotent like every acquisition.
func ExtractArea(ctx context.Context, cfg config.Config, deps Deps, area, version string) error {
	imagePath := lib.ImagePath(cfg.BtrfsDir, area, version)
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("btrfs image not found: %s", imagePath)
	}

	populate := func(ctx context.Context, staging string) error {
		mountPoint, err := os.MkdirTemp("", "tilewarden-mount-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(mountPoint)

		log.Info().Str("image", imagePath).Msg("Mounting image")
		release, err := deps.Mount.Mount(ctx, imagePath, mountPoint)
		if err != nil {
			return err
		}
		defer release()

		srcTiles := filepath.Join(mountPoint, lib.TilesDirName)
		if !lib.DirExists(srcTiles) {
			return fmt.Errorf("tiles directory not found in image %s", imagePath)
		}

		log.Info().Msg("Copying tiles, this may take a while for planet data")
		if err := deps.Sync.Sync(ctx, srcTiles, filepath.Join(staging, lib.TilesDirName)); err != nil {
			return err
		}

		metaSrc := filepath.Join(mountPoint, lib.MetadataFileName)
		if _, err := os.Stat(metaSrc); err == nil {
			if err := lib.CopyFile(metaSrc, filepath.Join(staging, lib.MetadataFileName)); err != nil {
				return err
			}
		}
		return nil
	}

	res, err := lib.Acquire(ctx, cfg.TilesDir, path.Join(area, version), lib.TilesDirName, populate)
	if err != nil {
		return fmt.Errorf("failed to extract %s/%s: %w", area, version, err)
	}

	switch res.Status {
	case types.AcquireSkipped:
		log.Info().Str("path", res.FinalPath).Msg("Tiles already extracted, skipping")
	default:
		log.Info().Str("path", res.FinalPath).Msg("Tiles extracted")
	}
	return nil
}

// ExtractAll extracts every downloaded image found under the btrfs root.
// A failing pair is logged and the run continues with the next one; the
// returned error names every pair that failed.
func ExtractAll(ctx context.Context, cfg config.Config, deps Deps) error {
	pairs, err := lib.ListImages(cfg.BtrfsDir)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		log.Warn().Str("dir", cfg.BtrfsDir).Msg("No btrfs images found")
		return nil
	}
	return extractPairs(ctx, cfg, deps, pairs)
}

// ExtractAreaVersions extracts every downloaded version of one area,
// leaving other areas' images untouched. Unlike ExtractAll, an area with no
// downloaded images is an error: the operator named it explicitly.
func ExtractAreaVersions(ctx context.Context, cfg config.Config, deps Deps, area string) error {
	pairs, err := lib.ListImages(cfg.BtrfsDir)
	if err != nil {
		return err
	}

	var matching []types.Pair
	for _, p := range pairs {
		if p.Name == area {
			matching = append(matching, p)
		}
	}
	if len(matching) == 0 {
		return fmt.Errorf("no btrfs images found for area %s under %s", area, cfg.BtrfsDir)
	}
	return extractPairs(ctx, cfg, deps, matching)
}

// extractPairs runs ExtractArea over pairs, continuing past failures and
// naming every failed pair in the returned error.
func extractPairs(ctx context.Context, cfg config.Config, deps Deps, pairs []types.Pair) error {
	var failed []string
	for _, p := range pairs {
		log.Info().Str("pair", p.String()).Msg("Processing")
		if err := ExtractArea(ctx, cfg, deps, p.Name, p.Version); err != nil {
			log.Error().Err(err).Str("pair", p.String()).Msg("Extraction failed")
			failed = append(failed, p.String())
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("extraction failed for: %s", strings.Join(failed, ", "))
	}
	return nil
}

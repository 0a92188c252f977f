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

// namedAssets are the static resource categories every deployment needs.
var namedAssets = []string{"fonts", "styles", "natural_earth"}

// FetchAssets downloads the named asset archives plus every published
// sprite version. Each asset is its own acquisition; one failure is logged
// and the rest still download, with the collected failures surfaced at the
// end.
func FetchAssets(ctx context.Context, cfg config.Config, deps Deps) error {
	cdn := lib.NewClient(cfg.AssetsCDNURL)

	var failed []string
	for _, name := range namedAssets {
		if err := fetchAsset(ctx, cfg, deps, cdn, name); err != nil {
			log.Error().Err(err).Str("asset", name).Msg("Asset download failed")
			failed = append(failed, name)
		}
	}

	if err := fetchSprites(ctx, cfg, deps, cdn); err != nil {
		log.Error().Err(err).Msg("Sprite download failed")
		failed = append(failed, "sprites")
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to download assets: %s", strings.Join(failed, ", "))
	}
	log.Info().Msg("All assets downloaded")
	return nil
}

// fetchAsset acquires one named asset archive, which unpacks to an ofm/
// directory inside <assets_dir>/<name>.
func fetchAsset(ctx context.Context, cfg config.Config, deps Deps, cdn *lib.Client, name string) error {
	url := cdn.AssetURL(name)

	populate := func(ctx context.Context, staging string) error {
		archive := filepath.Join(staging, lib.AssetMarkerDirName+".tar.gz")
		log.Info().Str("url", url).Msg("Downloading")
		if err := deps.AssetTransfer.Fetch(ctx, url, archive); err != nil {
			return err
		}
		log.Info().Str("archive", archive).Msg("Extracting")
		if err := deps.Extract.Extract(ctx, archive, staging, 0); err != nil {
			return err
		}
		return os.Remove(archive)
	}

	res, err := lib.Acquire(ctx, cfg.AssetsDir, name, lib.AssetMarkerDirName, populate)
	if err != nil {
		return err
	}

	switch res.Status {
	case types.AcquireSkipped:
		log.Info().Str("asset", name).Msg("Asset already exists, skipping")
	default:
		log.Info().Str("asset", name).Msg("Asset downloaded")
	}
	return nil
}

// fetchSprites enumerates the sprite archives in the assets CDN listing and
// acquires each version into <assets_dir>/sprites/<version>. Sprite
// archives carry their version directory as the single top-level entry, so
// extraction strips one path component.
func fetchSprites(ctx context.Context, cfg config.Config, deps Deps, cdn *lib.Client) error {
	log.Info().Msg("Fetching sprite versions")
	archives, err := cdn.SpriteArchives(ctx)
	if err != nil {
		return err
	}

	var failed []string
	for _, objectPath := range archives {
		name := strings.TrimSuffix(path.Base(objectPath), ".tar.gz")
		url := cdn.ObjectURL(objectPath)

		populate := func(ctx context.Context, staging string) error {
			archive := filepath.Join(staging, name+".tar.gz")
			log.Info().Str("url", url).Msg("Downloading")
			if err := deps.AssetTransfer.Fetch(ctx, url, archive); err != nil {
				return err
			}
			if err := deps.Extract.Extract(ctx, archive, staging, 1); err != nil {
				return err
			}
			return os.Remove(archive)
		}

		res, err := lib.Acquire(ctx, cfg.AssetsDir, path.Join("sprites", name), "", populate)
		if err != nil {
			log.Error().Err(err).Str("sprite", name).Msg("Sprite download failed")
			failed = append(failed, name)
			continue
		}

		switch res.Status {
		case types.AcquireSkipped:
			log.Info().Str("sprite", name).Msg("Sprite version already exists, skipping")
		default:
			log.Info().Str("sprite", name).Msg("Sprite version downloaded")
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed sprite versions: %s", strings.Join(failed, ", "))
	}
	return nil
}

package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tilewarden/tilewarden/internal/tilewarden/config"
	"github.com/tilewarden/tilewarden/internal/tilewarden/lib"
)

// VersionsConfName holds one routing fragment per published (area, version).
const VersionsConfName = "tiles-versions.conf"

// LatestConfName holds the per-area latest/wildcard alias fragments.
const LatestConfName = "tiles-latest.conf"

// Publish regenerates the nginx routing fragments from the current state of
// the tiles tree and rewrites every TileJSON manifest for the configured
// public hostname. Regeneration is total: both fragment documents are fully
// overwritten every run, so the output is deterministic given the tree.
// It returns the number of per-version fragments written.
//
// Pairs missing their metadata document are skipped without error — they
// are acquisitions still in flight.
func Publish(cfg config.Config) (int, error) {
	log.Info().
		Str("tiles", cfg.TilesDir).
		Str("host", cfg.NginxHost).
		Msg("Generating nginx configuration")

	pairs, err := lib.ListPairs(cfg.TilesDir)
	if err != nil {
		return 0, err
	}

	var versionBuf bytes.Buffer
	count := 0
	for _, p := range pairs {
		tilejsonPath := lib.TileJSONPath(cfg.TilesDir, p.Name, p.Version)
		if _, err := os.Stat(tilejsonPath); err == nil {
			if err := lib.RewriteTileJSON(tilejsonPath, p.Name, p.Version, cfg.NginxHost); err != nil {
				log.Error().Err(err).Str("pair", p.String()).Msg("Failed to update TileJSON")
			}
		}

		fragment := lib.VersionFragment{
			Area:         p.Name,
			Version:      p.Version,
			TileJSONPath: tilejsonPath,
			TilesPath:    lib.TilesPath(cfg.TilesDir, p.Name, p.Version),
		}
		if err := lib.RenderVersionFragment(&versionBuf, fragment); err != nil {
			return 0, err
		}
		versionBuf.WriteString("\n")
		count++
		log.Info().Str("pair", p.String()).Msg("Version fragment generated")
	}

	var latestBuf bytes.Buffer
	latest := lib.LatestVersions(pairs)
	areas := make([]string, 0, len(latest))
	for area := range latest {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	for _, area := range areas {
		version := latest[area]
		tilejsonPath := lib.TileJSONPath(cfg.TilesDir, area, version)
		// The bare-path alias serves the TileJSON directly; without a
		// manifest there is nothing to alias.
		if _, err := os.Stat(tilejsonPath); err != nil {
			continue
		}

		fragment := lib.LatestFragment{
			Area:         area,
			Version:      version,
			VersionDir:   lib.VersionDir(cfg.TilesDir, area, version),
			TileJSONPath: tilejsonPath,
			TilesPath:    lib.TilesPath(cfg.TilesDir, area, version),
		}
		if err := lib.RenderLatestFragment(&latestBuf, fragment); err != nil {
			return 0, err
		}
		latestBuf.WriteString("\n")
		log.Info().Str("area", area).Str("version", version).Msg("Latest alias generated")
	}

	if err := os.MkdirAll(cfg.NginxIncludesDir, 0755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(cfg.NginxIncludesDir, VersionsConfName), versionBuf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", VersionsConfName, err)
	}
	if err := os.WriteFile(filepath.Join(cfg.NginxIncludesDir, LatestConfName), latestBuf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", LatestConfName, err)
	}

	log.Info().Int("versions", count).Int("areas", len(areas)).Msg("Configuration generation complete")
	return count, nil
}

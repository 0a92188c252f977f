package lib

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/tilewarden/tilewarden/internal/tilewarden/types"
)

// ListPairs enumerates the (area, version) pairs under tilesRoot that are
// publishable: both the tiles payload subtree and the metadata document
// must exist. Incomplete pairs are skipped silently — a missing metadata
// file just means an acquisition is still in flight, a normal transient
// state. Directories matched by the ignore rules (staging, lost+found,
// operator excludes) are never descended into.
//
// The walk is sorted at both levels, so the result is deterministic for a
// given tree.
func ListPairs(tilesRoot string) ([]types.Pair, error) {
	areaDirs, err := os.ReadDir(tilesRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var pairs []types.Pair
	for _, areaDir := range areaDirs {
		if !areaDir.IsDir() || IsPathIgnored(tilesRoot, filepath.Join(tilesRoot, areaDir.Name())) {
			continue
		}
		area := areaDir.Name()

		versionDirs, err := os.ReadDir(filepath.Join(tilesRoot, area))
		if err != nil {
			return nil, err
		}
		for _, versionDir := range versionDirs {
			if !versionDir.IsDir() {
				continue
			}
			version := versionDir.Name()

			if !DirExists(TilesPath(tilesRoot, area, version)) {
				continue
			}
			if _, err := os.Stat(filepath.Join(tilesRoot, area, version, MetadataFileName)); err != nil {
				continue
			}
			pairs = append(pairs, types.Pair{Name: area, Version: version})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Name != pairs[j].Name {
			return pairs[i].Name < pairs[j].Name
		}
		return pairs[i].Version < pairs[j].Version
	})
	return pairs, nil
}

// LatestVersions maps each area in pairs to its greatest version under
// lexicographic ordering (versions are zero-padded timestamps, so this is
// also chronological order).
func LatestVersions(pairs []types.Pair) map[string]string {
	latest := make(map[string]string)
	for _, p := range pairs {
		if p.Version > latest[p.Name] {
			latest[p.Name] = p.Version
		}
	}
	return latest
}

// ListImages enumerates the (area, version) pairs under imageRoot that hold
// a downloaded btrfs image ready for extraction.
func ListImages(imageRoot string) ([]types.Pair, error) {
	areaDirs, err := os.ReadDir(imageRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var pairs []types.Pair
	for _, areaDir := range areaDirs {
		if !areaDir.IsDir() || IsPathIgnored(imageRoot, filepath.Join(imageRoot, areaDir.Name())) {
			continue
		}
		area := areaDir.Name()

		versionDirs, err := os.ReadDir(filepath.Join(imageRoot, area))
		if err != nil {
			return nil, err
		}
		for _, versionDir := range versionDirs {
			if !versionDir.IsDir() {
				continue
			}
			version := versionDir.Name()
			if _, err := os.Stat(ImagePath(imageRoot, area, version)); err == nil {
				pairs = append(pairs, types.Pair{Name: area, Version: version})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Name != pairs[j].Name {
			return pairs[i].Name < pairs[j].Name
		}
		return pairs[i].Version < pairs[j].Version
	})
	return pairs, nil
}

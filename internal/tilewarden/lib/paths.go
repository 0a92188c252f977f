package lib

import (
	"os"
	"path/filepath"
	"strings"
)

// --- Constants ---

// ImageFileName is the decompressed btrfs image inside a version directory.
// Its presence is the completeness marker for an image acquisition.
const ImageFileName = "tiles.btrfs"

// CompressedImageName is the name the image is published under on the CDN.
const CompressedImageName = "tiles.btrfs.gz"

// TilesDirName is the payload subtree inside a mounted image and inside an
// extracted version directory. Its presence marks an extraction complete.
const TilesDirName = "tiles"

// MetadataFileName is the small metadata document carried next to the tiles
// inside an image. A version directory without it is not publishable.
const MetadataFileName = "metadata.json"

// TileJSONFileName is the per-version TileJSON manifest whose tile URL
// template gets rewritten for the public hostname before publishing.
const TileJSONFileName = "tilejson.json"

// AssetMarkerDirName is the directory an asset archive unpacks to; a
// non-empty one marks the asset as already downloaded.
const AssetMarkerDirName = "ofm"

// ListingFileName is the plain-text object listing every CDN publishes.
const ListingFileName = "files.txt"

// StagingDirName is the root-local directory holding in-progress
// acquisitions. It lives on the same filesystem as the final paths so the
// promote step is a single atomic rename.
const StagingDirName = "_staging"

// --- Path Helper Functions ---

// VersionDir returns the final directory for a (name, version) pair under
// a destination root. An empty version addresses an unversioned asset.
func VersionDir(root, name, version string) string {
	if version == "" {
		return filepath.Join(root, name)
	}
	return filepath.Join(root, name, version)
}

// ImagePath returns where a downloaded btrfs image lives for an area/version.
func ImagePath(imageRoot, area, version string) string {
	return filepath.Join(imageRoot, area, version, ImageFileName)
}

// TileJSONPath returns the manifest path inside an extracted version directory.
func TileJSONPath(tilesRoot, area, version string) string {
	return filepath.Join(tilesRoot, area, version, TileJSONFileName)
}

// TilesPath returns the payload subtree inside an extracted version directory.
func TilesPath(tilesRoot, area, version string) string {
	return filepath.Join(tilesRoot, area, version, TilesDirName)
}

// stagingPath returns the staging directory for a relative final path. The
// relative path is flattened so every pair stages as a single directory
// directly under the staging root.
func stagingPath(root, relPath string) string {
	return filepath.Join(root, StagingDirName, strings.ReplaceAll(relPath, "/", "_"))
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// DirNonEmpty reports whether path is a directory holding at least one entry.
func DirNonEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}

// Package config loads tilewarden's configuration with layered sources:
// built-in defaults, then an optional YAML file, then environment
// variables. The environment keys are the ones the deployment images have
// always used (AREA, BTRFS_DIR, NGINX_HOST, ...), so existing container
// setups keep working unchanged.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an explicit config file, overriding the search paths.
const ConfigPathEnvVar = "TILEWARDEN_CONFIG"

// defaultConfigPaths are searched in order when ConfigPathEnvVar is unset.
var defaultConfigPaths = []string{
	"tilewarden.yaml",
	"/etc/tilewarden/config.yaml",
}

// Config holds everything the provisioning pipeline needs. Immutable after
// Load.
type Config struct {
	// Area is the tile dataset to fetch (e.g. "planet" or "monaco").
	Area string `koanf:"area"`
	// Version is an explicit version identifier, or "latest" to resolve
	// from the CDN listing.
	Version string `koanf:"version"`

	// BtrfsDir holds downloaded btrfs images, one per area/version.
	BtrfsDir string `koanf:"btrfs_dir"`
	// TilesDir holds extracted tile trees served by nginx.
	TilesDir string `koanf:"tiles_dir"`
	// AssetsDir holds fonts, styles and sprites.
	AssetsDir string `koanf:"assets_dir"`

	// BtrfsCDNURL and AssetsCDNURL are independently configurable so
	// mirrors can serve one without the other.
	BtrfsCDNURL  string `koanf:"btrfs_cdn_url"`
	AssetsCDNURL string `koanf:"assets_cdn_url"`

	// NginxHost is the public hostname embedded in rewritten TileJSON
	// documents. "localhost" keeps plain HTTP.
	NginxHost string `koanf:"nginx_host"`
	// NginxIncludesDir receives the generated routing fragments.
	NginxIncludesDir string `koanf:"nginx_includes_dir"`
}

// Default returns the built-in configuration, matching the layout the
// deployment images ship with.
func Default() Config {
	return Config{
		Area:             "planet",
		Version:          "latest",
		BtrfsDir:         "/data/btrfs",
		TilesDir:         "/data/tiles",
		AssetsDir:        "/data/assets",
		BtrfsCDNURL:      "https://btrfs.openfreemap.com",
		AssetsCDNURL:     "https://assets.openfreemap.com",
		NginxHost:        "localhost",
		NginxIncludesDir: "/etc/nginx/includes",
	}
}

// envKeys is the allowlist of recognized environment variables and the
// config paths they map to. Anything else in the environment is ignored.
var envKeys = map[string]string{
	"AREA":               "area",
	"VERSION":            "version",
	"BTRFS_DIR":          "btrfs_dir",
	"TILES_DIR":          "tiles_dir",
	"ASSETS_DIR":         "assets_dir",
	"BTRFS_CDN_URL":      "btrfs_cdn_url",
	"ASSETS_CDN_URL":     "assets_cdn_url",
	"NGINX_HOST":         "nginx_host",
	"NGINX_INCLUDES_DIR": "nginx_includes_dir",
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in increasing precedence.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", func(s string) string {
		return envKeys[s]
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	for name, value := range map[string]string{
		"area":          c.Area,
		"btrfs_dir":     c.BtrfsDir,
		"tiles_dir":     c.TilesDir,
		"assets_dir":    c.AssetsDir,
		"btrfs_cdn_url": c.BtrfsCDNURL,
		"nginx_host":    c.NginxHost,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("config: %s must not be empty", name)
		}
	}
	return nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range defaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

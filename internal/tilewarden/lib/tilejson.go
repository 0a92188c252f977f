package lib

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// RewriteTileJSON patches a TileJSON document's tile URL template to point
// at the configured public hostname. The whole document is parsed, the
// tiles field replaced, and the result re-serialized compactly — never a
// text substitution, so unrelated fields survive untouched.
//
// The rewrite is idempotent: running it twice with the same hostname
// produces byte-identical output (map keys serialize in sorted order).
// localhost is the plain-HTTP development default; any other hostname gets
// https.
func RewriteTileJSON(path, area, version, host string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	doc["tiles"] = []string{TileURLTemplate(area, version, host)}

	out, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}
	return os.WriteFile(path, out, 0644)
}

// TileURLTemplate builds the public tile address template for a version,
// with {z}/{x}/{y} placeholders left for the map client to fill.
func TileURLTemplate(area, version, host string) string {
	protocol := "https"
	if host == "localhost" {
		protocol = "http"
	}
	return fmt.Sprintf("%s://%s/%s/%s/{z}/{x}/{y}.pbf", protocol, host, area, version)
}

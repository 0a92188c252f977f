package lib

import (
	"io"
	"text/template"
)

// VersionFragment feeds the per-version routing template: an exact-path
// rule serving the version's TileJSON and a prefix rule serving its tiles.
// Version-addressed content is immutable, so the tiles rule caches for ten
// years; the TileJSON may be regenerated, so it gets a week.
type VersionFragment struct {
	Area         string
	Version      string
	TileJSONPath string
	TilesPath    string
}

// LatestFragment feeds the per-area alias template: the area's bare path
// and a wildcard version pattern both resolve to the lexicographically
// greatest version. The bare-path TileJSON caches for a single day since
// "latest" moves with every publish.
type LatestFragment struct {
	Area         string
	Version      string
	VersionDir   string
	TileJSONPath string
	TilesPath    string
}

var versionTmpl = template.Must(template.New("version").Parse(`# Specific version: {{.Area}}/{{.Version}}
location = /{{.Area}}/{{.Version}} {
    alias {{.TileJSONPath}};
    expires 1w;
    default_type application/json;
    add_header 'Access-Control-Allow-Origin' '*' always;
    add_header Cache-Control public;
    add_header X-Robots-Tag "noindex, nofollow" always;
    add_header x-ofm-debug 'specific JSON {{.Area}} {{.Version}}';
}

location ^~ /{{.Area}}/{{.Version}}/ {
    alias {{.TilesPath}}/;
    try_files $uri @empty_tile;
    add_header Content-Encoding gzip;
    expires 10y;

    types {
        application/vnd.mapbox-vector-tile pbf;
    }

    add_header 'Access-Control-Allow-Origin' '*' always;
    add_header Cache-Control public;
    add_header X-Robots-Tag "noindex, nofollow" always;
    add_header x-ofm-debug 'specific PBF {{.Area}} {{.Version}}';
}
`))

var latestTmpl = template.Must(template.New("latest").Parse(`# Latest version redirect: {{.Area}} -> {{.Version}}
location = /{{.Area}} {
    alias {{.TileJSONPath}};
    expires 1d;
    default_type application/json;
    add_header 'Access-Control-Allow-Origin' '*' always;
    add_header Cache-Control public;
    add_header X-Robots-Tag "noindex, nofollow" always;
    add_header x-ofm-debug 'latest JSON {{.Area}}';
}

# Wildcard version support for {{.Area}}
location ~ ^/{{.Area}}/([^/]+)$ {
    root {{.VersionDir}};
    try_files /tilejson.json =404;
    expires 1w;
    default_type application/json;
    add_header 'Access-Control-Allow-Origin' '*' always;
    add_header Cache-Control public;
    add_header X-Robots-Tag "noindex, nofollow" always;
    add_header x-ofm-debug 'wildcard JSON {{.Area}}';
}

location ~ ^/{{.Area}}/([^/]+)/(.+)$ {
    root {{.TilesPath}}/;
    try_files /$2 @empty_tile;
    add_header Content-Encoding gzip;
    expires 10y;

    types {
        application/vnd.mapbox-vector-tile pbf;
    }

    add_header 'Access-Control-Allow-Origin' '*' always;
    add_header Cache-Control public;
    add_header X-Robots-Tag "noindex, nofollow" always;
    add_header x-ofm-debug 'wildcard PBF {{.Area}}';
}
`))

// RenderVersionFragment writes the routing rules for one concrete version.
func RenderVersionFragment(w io.Writer, f VersionFragment) error {
	return versionTmpl.Execute(w, f)
}

// RenderLatestFragment writes the latest-alias rules for one area.
func RenderLatestFragment(w io.Writer, f LatestFragment) error {
	return latestTmpl.Execute(w, f)
}

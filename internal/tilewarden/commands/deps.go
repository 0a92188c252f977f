// Package commands contains the provisioning orchestrators behind the
// tilewarden CLI.
package commands

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/tilewarden/tilewarden/internal/tilewarden/lib"
)

// Deps bundles the external tool capabilities the orchestrators shell out
// to. Tests substitute fakes so the acquisition logic runs without aria2c,
// loop mounts or rsync; production code uses DefaultDeps.
type Deps struct {
	// Transfer fetches image archives (16 parallel segments).
	Transfer lib.Transferer
	// AssetTransfer fetches asset archives (8 parallel segments; assets
	// are small and the CDN throttles aggressive splits).
	AssetTransfer lib.Transferer
	Decompress    lib.Decompressor
	Extract       lib.Extractor
	Mount         lib.ImageMounter
	Sync          lib.Syncer
}

// DefaultDeps wires the real external tools.
func DefaultDeps() Deps {
	return Deps{
		Transfer:      &lib.Aria2Transferer{Connections: 16},
		AssetTransfer: &lib.Aria2Transferer{Connections: 8},
		Decompress:    lib.NewDecompressor(),
		Extract:       lib.TarExtractor{},
		Mount:         lib.LoopMounter{},
		Sync:          lib.RsyncSyncer{},
	}
}

// log writes human-readable progress lines to standard output.
var log = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: "15:04:05",
}).With().Timestamp().Logger()

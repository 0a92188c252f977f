package types

// `json:"..."` tags are used where structures are logged or serialized.

// Pair identifies one acquisition: an area or asset path plus a version.
// Identity is unique per pair; no two concurrent acquisitions may target
// the same pair.
type Pair struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (p Pair) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "/" + p.Version
}

// AcquireStatus describes the outcome of an acquisition attempt.
type AcquireStatus string

const (
	// AcquireOK means content was downloaded and placed during this run.
	AcquireOK AcquireStatus = "ok"
	// AcquireSkipped means the final directory already held complete
	// output and no work (including network access) was performed.
	AcquireSkipped AcquireStatus = "skipped"
)

// AcquireResult reports where an acquisition's output lives and whether
// this run did the work or found it already done.
type AcquireResult struct {
	Status    AcquireStatus `json:"status"`
	FinalPath string        `json:"finalPath"`
}

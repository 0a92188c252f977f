package lib

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Transferer fetches a remote URL to a local file. Implementations must
// report success only once the transfer has fully completed; a partial
// transfer must surface as an error. Resume and retry behavior is the
// implementation's own business — no retry layer exists above this.
type Transferer interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Aria2Transferer downloads with aria2c, splitting the file into parallel
// segments. aria2c resumes interrupted segments itself; the exit status is
// the completeness contract.
type Aria2Transferer struct {
	// Connections is both the per-server connection count and the split
	// count. Image downloads use 16, asset downloads 8.
	Connections int
}

func (t *Aria2Transferer) Fetch(ctx context.Context, url, dest string) error {
	conns := t.Connections
	if conns <= 0 {
		conns = 16
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	args := []string{
		fmt.Sprintf("--max-connection-per-server=%d", conns),
		fmt.Sprintf("--split=%d", conns),
		"--min-split-size=1M",
		"--file-allocation=none",
		"--console-log-level=warn",
		"--summary-interval=5",
		"--download-result=hide",
		"-d", filepath.Dir(dest),
		"-o", filepath.Base(dest),
		url,
	}

	cmd := exec.CommandContext(ctx, "aria2c", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &ExternalToolFailure{Tool: "aria2c", Err: err}
	}
	return nil
}

// Package archive writes snapshots to the data directory, one JSON file
// per successful fetch. Files are named {prefix}_{YYYYMMDD_HHMMSS}.json;
// the second-resolution timestamp is what keeps names unique across a
// run, so nothing here is ever overwritten under normal pacing.
package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dpatel/binance-collector/internal/snapshot"
)

const timestampLayout = "20060102_150405"

// Archive owns the output directory.
type Archive struct {
	dir string
}

// New ensures the data directory exists and returns an Archive rooted
// there.
func New(dir string) (*Archive, error) {
	if dir == "" {
		dir = "binance_data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Dir returns the output directory.
func (a *Archive) Dir() string {
	return a.dir
}

// Filename builds the timestamped name a snapshot with the given prefix
// and capture time is saved under.
func Filename(prefix string, capturedAt time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, capturedAt.Format(timestampLayout))
}

// Save writes the snapshot payload, re-indented for readability, and
// returns the filename. The write is deliberately not atomic: an
// interrupt mid-write may leave a partial file, and no cleanup is
// attempted.
func (a *Archive) Save(snap snapshot.Snapshot) (string, error) {
	name := Filename(snap.Prefix, snap.CapturedAt)

	var buf bytes.Buffer
	if err := json.Indent(&buf, snap.Payload, "", "  "); err != nil {
		return "", fmt.Errorf("indent payload: %w", err)
	}
	buf.WriteByte('\n')

	if err := os.WriteFile(filepath.Join(a.dir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

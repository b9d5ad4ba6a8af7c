package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/coinsim/internal/config"
)

// RunDir is the directory holding every artifact of one run.
type RunDir struct {
	ID   uuid.UUID
	Path string
}

// NewRunDir creates <base>/<mode>_<timestamp>_<short id>.
func NewRunDir(base string, mode config.Mode, now time.Time) (*RunDir, error) {
	id := uuid.New()
	name := fmt.Sprintf("%s_%s_%s", mode, now.Format("20060102_150405"), id.String()[:8])
	path := filepath.Join(base, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &RunDir{ID: id, Path: path}, nil
}

// File returns the path of an artifact inside the directory.
func (d *RunDir) File(name string) string { return filepath.Join(d.Path, name) }

// Manifest describes a run so that its records can be traced back to the
// configuration and seed that produced them.
type Manifest struct {
	RunID      string        `json:"run_id"`
	Mode       config.Mode   `json:"mode"`
	Seed       uint64        `json:"seed"`
	Runs       int           `json:"runs,omitempty"`
	MaxRuns    int           `json:"max_runs,omitempty"`
	Parameters []int         `json:"parameters,omitempty"`
	Trim       float64       `json:"trim"`
	TrimCount  int           `json:"trim_count,omitempty"`
	Workers    int           `json:"workers"`
	BatchSize  int           `json:"batch_size"`
	Records    int           `json:"records"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Files      []string      `json:"files"`
}

// WriteManifest stores m as manifest.json.
func (d *RunDir) WriteManifest(m Manifest) (string, error) {
	m.RunID = d.ID.String()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}
	path := d.File("manifest.json")
	return path, os.WriteFile(path, append(data, '\n'), 0o644)
}

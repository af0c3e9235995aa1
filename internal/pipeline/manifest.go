package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/ridestats-cli/internal/utils"
)

const manifestFileName = "manifest.json"

// TableCount records how many rows of one input survived cleaning.
type TableCount struct {
	Table      string `json:"table"`
	Input      int    `json:"input"`
	Incomplete int    `json:"incomplete"`
	Filtered   int    `json:"filtered"`
	Output     int    `json:"output"`
}

// Manifest describes one run directory.
type Manifest struct {
	RunID        string       `json:"run_id"`
	CreatedAt    time.Time    `json:"created_at"`
	Region       string       `json:"region"`
	Year         int          `json:"year"`
	Month        int          `json:"month"`
	Tables       []TableCount `json:"tables"`
	ZeroDistance int          `json:"zero_distance_dropped"`
	Files        []string     `json:"files"`

	// Not serialized: directory holding manifest.json
	rootDir string `json:"-"`
}

// NewManifest builds an in-memory manifest for a result. Call Save() to persist.
func NewManifest(r *Result, dir string) *Manifest {
	m := &Manifest{
		RunID:        uuid.New().String(),
		CreatedAt:    time.Now(),
		Region:       r.Region,
		Year:         r.Year,
		Month:        r.Month,
		ZeroDistance: r.ZeroDistance,
		rootDir:      dir,
	}
	for _, c := range r.Cleaning {
		m.Tables = append(m.Tables, TableCount{Table: c.Table, Input: c.Input, Incomplete: c.Incomplete, Filtered: c.Filtered, Output: c.Output})
	}
	return m
}

// LoadManifest reads manifest.json from a run directory.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the run directory.
func (m *Manifest) RootDir() string { return m.rootDir }

// AddFiles records output files relative to the run directory.
func (m *Manifest) AddFiles(paths ...string) {
	for _, p := range paths {
		if rel, err := filepath.Rel(m.rootDir, p); err == nil {
			p = rel
		}
		m.Files = append(m.Files, filepath.ToSlash(p))
	}
	sort.Strings(m.Files)
}

// Save writes manifest.json using atomic write.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest root directory not set")
	}
	return utils.WriteJSON(filepath.Join(m.rootDir, manifestFileName), m)
}

// Package runlog persists a JSON manifest describing one pipeline run: the
// input, each step with the table shape after it, the files written and the
// selected features.
package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/immo-eda/internal/correlation"
	"github.com/KaramelBytes/immo-eda/internal/utils"
	"github.com/google/uuid"
)

const manifestFileName = "run.json"

// Manifest represents one run persisted on disk.
type Manifest struct {
	ID         string                `json:"id"`
	Input      string                `json:"input"`
	Target     string                `json:"target"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at,omitempty"`
	Steps      []Step                `json:"steps"`
	Outputs    []string              `json:"outputs,omitempty"`
	Selection  correlation.Selection `json:"selection"`
	Error      string                `json:"error,omitempty"`

	// Not serialized: directory holding run.json
	dir string `json:"-"`
}

// Step records the table shape after one pipeline step.
type Step struct {
	Name     string        `json:"name"`
	Rows     int           `json:"rows"`
	Columns  int           `json:"columns"`
	Duration time.Duration `json:"duration_ns"`
	Detail   string        `json:"detail,omitempty"`
}

// New constructs an in-memory manifest rooted at dir. Call Save to persist.
func New(dir, input, target string) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		Input:     input,
		Target:    target,
		StartedAt: time.Now(),
		dir:       dir,
	}
}

// Load reads run.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.dir = dir
	return &m, nil
}

// Dir returns the directory run.json is written to.
func (m *Manifest) Dir() string { return m.dir }

// Path returns the manifest file path.
func (m *Manifest) Path() string { return filepath.Join(m.dir, manifestFileName) }

// Record appends a step that began at start.
func (m *Manifest) Record(name string, rows, cols int, start time.Time, detail string) {
	m.Steps = append(m.Steps, Step{
		Name:     name,
		Rows:     rows,
		Columns:  cols,
		Duration: time.Since(start),
		Detail:   detail,
	})
}

// AddOutput records a file written by the run.
func (m *Manifest) AddOutput(paths ...string) {
	m.Outputs = append(m.Outputs, paths...)
}

// Finish stamps the end time and the error, if any.
func (m *Manifest) Finish(err error) {
	m.FinishedAt = time.Now()
	if err != nil {
		m.Error = err.Error()
	}
}

// Save writes run.json using atomic write.
func (m *Manifest) Save() error {
	if m.dir == "" {
		return errors.New("manifest directory not set")
	}
	if err := utils.EnsureDir(m.dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.Path(), data)
}

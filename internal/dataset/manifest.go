package dataset

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

	"github.com/KaramelBytes/ffcdb-cli/internal/utils"
)

const manifestFileName = "manifest.json"

// Manifest records the last cleaning run and the files produced from it.
type Manifest struct {
	RunID     string               `json:"run_id"`
	Source    Source               `json:"source"`
	Rows      int                  `json:"rows"`
	Fields    []string             `json:"fields"`
	Artifacts map[string]*Artifact `json:"artifacts"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`

	// Not serialized: directory holding manifest.json
	rootDir string `json:"-"`
}

// Source describes where the raw table came from.
type Source struct {
	URL     string `json:"url"`
	RawFile string `json:"raw_file"`
	Sheet   string `json:"sheet"`
}

// NewManifest constructs an in-memory manifest. Call Save() to persist.
func NewManifest(rootDir string, src Source) *Manifest {
	return &Manifest{
		Source:    src,
		Artifacts: make(map[string]*Artifact),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		rootDir:   rootDir,
	}
}

// LoadManifest loads manifest.json from dir.
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
	if m.Artifacts == nil {
		m.Artifacts = make(map[string]*Artifact)
	}
	m.rootDir = dir
	return &m, nil
}

// OpenManifest loads the manifest in dir, or starts a new one when none exists.
func OpenManifest(dir string, src Source) (*Manifest, error) {
	m, err := LoadManifest(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return NewManifest(dir, src), nil
	}
	if err != nil {
		return nil, err
	}
	m.Source = src
	return m, nil
}

// RootDir returns the directory holding manifest.json.
func (m *Manifest) RootDir() string { return m.rootDir }

// Save writes manifest.json using atomic write.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest directory not set")
	}
	m.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.rootDir, manifestFileName), data)
}

// RecordRun starts a new run: it stores the run identity and schema and
// drops artifacts of earlier runs.
func (m *Manifest) RecordRun(runID string, rows int, fields []string) {
	m.RunID = runID
	m.Rows = rows
	m.Fields = append([]string(nil), fields...)
	m.Artifacts = make(map[string]*Artifact)
	m.UpdatedAt = time.Now()
}

// AddArtifact registers a file produced from the current run. A second
// artifact with the same path replaces the first.
func (m *Manifest) AddArtifact(kind, path string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	if m.Artifacts == nil {
		m.Artifacts = make(map[string]*Artifact)
	}
	for id, a := range m.Artifacts {
		if a.Path == path {
			delete(m.Artifacts, id)
		}
	}
	a := &Artifact{
		ID:        uuid.NewString(),
		Kind:      kind,
		Path:      path,
		Name:      filepath.Base(path),
		Bytes:     info.Size(),
		CreatedAt: info.ModTime(),
	}
	m.Artifacts[a.ID] = a
	m.UpdatedAt = time.Now()
	return a, nil
}

// List returns artifacts ordered by kind, then name.
func (m *Manifest) List() []*Artifact {
	out := make([]*Artifact, 0, len(m.Artifacts))
	for _, a := range m.Artifacts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

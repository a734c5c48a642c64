// Package store persists the networks collection to a versioned JSON
// file and upgrades older on-disk schemas on load.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/config"
	"github.com/zackypick/polar/internal/model"
)

// CurrentVersion is the schema version this build reads and writes.
const CurrentVersion = 3

const fileName = "networks.json"

// NetworksFile is the persisted root document. Layouts carry the
// visual designer's per-network data; the orchestration core passes
// them through untouched.
type NetworksFile struct {
	Version  int                        `json:"version"`
	Networks []*model.Network           `json:"networks"`
	Layouts  map[string]json.RawMessage `json:"layouts"`
}

// Empty returns a current-version document with no networks.
func Empty() *NetworksFile {
	return &NetworksFile{
		Version:  CurrentVersion,
		Networks: []*model.Network{},
		Layouts:  map[string]json.RawMessage{},
	}
}

// Store reads and writes the networks file under a data directory.
type Store struct {
	dataDir   string
	legacyDir string
	force     bool
	log       *zap.Logger
}

// New creates a store from the process-wide config.
func New(cfg *config.Config, log *zap.Logger) *Store {
	return &Store{
		dataDir:   cfg.DataDir,
		legacyDir: cfg.LegacyDataDir,
		force:     cfg.ForceMigrations,
		log:       log,
	}
}

// Path is where the networks file lives.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, fileName)
}

// Load reads the networks file, pulling forward a legacy-location copy
// if nothing exists yet, and migrates older schemas to the current
// version. A migrated document is persisted before it is returned, so
// disk never lags what callers hold. With nothing on disk at all the
// result is an empty current-version document, not an error.
func (s *Store) Load() (*NetworksFile, error) {
	path := s.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.copyLegacy()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f := &NetworksFile{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if f.Layouts == nil {
		f.Layouts = map[string]json.RawMessage{}
	}

	if f.Version != CurrentVersion || s.force {
		if err := Migrate(f); err != nil {
			return nil, err
		}
		if err := s.Save(f); err != nil {
			return nil, fmt.Errorf("persisting migrated file: %w", err)
		}
	}
	return f, nil
}

// Save serializes the whole document pretty-printed and replaces the
// persisted file. The write goes to a temp file first and is renamed
// into place, so a failed write never corrupts a previously valid one.
func (s *Store) Save(f *NetworksFile) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing networks: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, ".networks-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("replacing networks file: %w", err)
	}
	return nil
}

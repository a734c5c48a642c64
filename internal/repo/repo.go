// Package repo holds the catalog of known node images: the latest and
// supported versions per implementation, plus compatibility
// constraints between lightning and backend versions. The catalog is
// owned by the update-check service; the orchestration core only
// reads it.
package repo

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zackypick/polar/internal/model"
)

// ImageState describes one implementation's published images.
type ImageState struct {
	Latest   string   `json:"latest"`
	Versions []string `json:"versions"`
	// Compatibility maps an image version to the minimum backend
	// version it can talk to. Implementations without constraints
	// leave it empty.
	Compatibility map[string]string `json:"compatibility,omitempty"`
}

// State is the full catalog keyed by implementation.
type State map[model.NodeImplementation]ImageState

// DefaultState is the catalog compiled into this build. An on-disk
// copy maintained by the update checker takes precedence when present.
func DefaultState() State {
	return State{
		model.ImplBitcoind: {
			Latest:   "27.0",
			Versions: []string{"27.0", "26.0", "25.1", "24.2"},
		},
		model.ImplLND: {
			Latest:   "0.17.5-beta",
			Versions: []string{"0.17.5-beta", "0.17.0-beta", "0.16.4-beta", "0.15.5-beta"},
			Compatibility: map[string]string{
				"0.17.5-beta": "25.1",
				"0.17.0-beta": "25.1",
				"0.16.4-beta": "24.2",
				"0.15.5-beta": "24.2",
			},
		},
		model.ImplCLightning: {
			Latest:   "24.02.2",
			Versions: []string{"24.02.2", "23.11", "23.08"},
		},
		model.ImplEclair: {
			Latest:   "0.10.0",
			Versions: []string{"0.10.0", "0.9.0", "0.8.0"},
		},
	}
}

// Load reads the catalog from path, falling back to the compiled-in
// defaults when no file exists.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading image catalog: %w", err)
	}
	state := State{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing image catalog: %w", err)
	}
	return state, nil
}

// Latest returns the newest known version for an implementation, or
// empty when the catalog has no entry.
func (s State) Latest(impl model.NodeImplementation) string {
	return s[impl].Latest
}

// Supported reports whether the catalog lists the given version.
func (s State) Supported(impl model.NodeImplementation, version string) bool {
	for _, v := range s[impl].Versions {
		if v == version {
			return true
		}
	}
	return false
}

// CheckCompatibility verifies a lightning image version can talk to
// the given backend version. No constraint recorded means compatible.
func (s State) CheckCompatibility(impl model.NodeImplementation, version, backendVersion string) error {
	min, ok := s[impl].Compatibility[version]
	if !ok {
		return nil
	}
	if compareVersions(backendVersion, min) < 0 {
		return fmt.Errorf("%s %s requires backend version %s or newer, network has %s",
			impl, version, min, backendVersion)
	}
	return nil
}

// Images returns every image:tag pair the catalog declares, the set a
// full pull would fetch.
func (s State) Images() []string {
	names := map[model.NodeImplementation]string{
		model.ImplBitcoind:   "bitcoind",
		model.ImplLND:        "lnd",
		model.ImplCLightning: "clightning",
		model.ImplEclair:     "eclair",
	}
	var out []string
	for _, impl := range []model.NodeImplementation{
		model.ImplBitcoind, model.ImplLND, model.ImplCLightning, model.ImplEclair,
	} {
		for _, v := range s[impl].Versions {
			out = append(out, fmt.Sprintf("polarlightning/%s:%s", names[impl], v))
		}
	}
	return out
}

package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zackypick/polar/internal/model"
)

func TestLoadFallsBackToDefaults(t *testing.T) {
	state, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultState(), state)
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repo-state.json")
	content := `{"bitcoind": {"latest": "28.0", "versions": ["28.0"]}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	state, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "28.0", state.Latest(model.ImplBitcoind))
	assert.True(t, state.Supported(model.ImplBitcoind, "28.0"))
	assert.False(t, state.Supported(model.ImplBitcoind, "27.0"))
}

func TestCheckCompatibility(t *testing.T) {
	state := DefaultState()

	// 0.17.5-beta needs bitcoind >= 25.1
	assert.NoError(t, state.CheckCompatibility(model.ImplLND, "0.17.5-beta", "27.0"))
	assert.NoError(t, state.CheckCompatibility(model.ImplLND, "0.17.5-beta", "25.1"))
	assert.Error(t, state.CheckCompatibility(model.ImplLND, "0.17.5-beta", "24.2"))

	// no constraint recorded means compatible
	assert.NoError(t, state.CheckCompatibility(model.ImplEclair, "0.10.0", "24.2"))
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"27.0", "26.0", 1},
		{"25.1", "25.1", 0},
		{"24.2", "25.1", -1},
		{"0.17.5-beta", "0.17.5", 0},
		{"0.17.0-beta", "0.16.4-beta", 1},
		{"1.0", "1.0.1", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compareVersions(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestImages(t *testing.T) {
	images := DefaultState().Images()
	assert.Contains(t, images, "polarlightning/bitcoind:27.0")
	assert.Contains(t, images, "polarlightning/clightning:24.02.2")
}

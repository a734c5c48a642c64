package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/config"
	"github.com/zackypick/polar/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := &config.Config{DataDir: t.TempDir()}
	return New(cfg, zap.NewNop())
}

func sampleFile(t *testing.T) *NetworksFile {
	t.Helper()
	n := model.NewNetwork("net-1", "testnet", "/tmp/polar/testnet")
	n.AddBitcoinNode("", "27.0")
	_, err := n.AddLightningNode("alice", model.ImplLND, "0.17.5-beta", "backend1")
	require.NoError(t, err)

	f := Empty()
	f.Networks = append(f.Networks, n)
	f.Layouts["net-1"] = json.RawMessage(`{"alice":{"x":10,"y":20}}`)
	return f
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	s := testStore(t)

	f, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, f.Version)
	assert.Empty(t, f.Networks)
	assert.NotNil(t, f.Layouts)

	// nothing gets written just for loading nothing
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)
	f := sampleFile(t)

	require.NoError(t, s.Save(f))
	loaded, err := s.Load()
	require.NoError(t, err)

	assert.Equal(t, f.Version, loaded.Version)
	assert.Equal(t, f.Networks, loaded.Networks)
	require.Contains(t, loaded.Layouts, "net-1")
	assert.JSONEq(t, string(f.Layouts["net-1"]), string(loaded.Layouts["net-1"]))
}

func TestSaveIsPrettyPrinted(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save(sampleFile(t)))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"version\": 3")
}

func TestLoadMigratesOldVersion(t *testing.T) {
	s := testStore(t)
	f := sampleFile(t)
	f.Version = 1
	f.Networks[0].Nodes.Bitcoin[0].Ports.ZMQBlock = 0
	f.Networks[0].Nodes.Bitcoin[0].Ports.ZMQTx = 0
	f.Networks[0].Nodes.Lightning[0].BackendName = ""
	require.NoError(t, s.Save(f))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, loaded.Version)
	assert.Equal(t, model.BaseBitcoindZMQBlock, loaded.Networks[0].Nodes.Bitcoin[0].Ports.ZMQBlock)
	assert.Equal(t, "backend1", loaded.Networks[0].Nodes.Lightning[0].BackendName)

	// the upgraded document was persisted before being returned
	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	onDisk := &NetworksFile{}
	require.NoError(t, json.Unmarshal(data, onDisk))
	assert.Equal(t, CurrentVersion, onDisk.Version)
}

func TestLoadRejectsFutureVersion(t *testing.T) {
	s := testStore(t)
	f := sampleFile(t)
	f.Version = CurrentVersion + 1
	require.NoError(t, s.Save(f))

	_, err := s.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestLoadCopiesLegacyFile(t *testing.T) {
	legacyDir := t.TempDir()
	cfg := &config.Config{DataDir: t.TempDir(), LegacyDataDir: legacyDir}
	s := New(cfg, zap.NewNop())

	legacy := sampleFile(t)
	legacy.Version = 1
	data, err := json.MarshalIndent(legacy, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(legacyDir, "networks.json"), data, 0o644))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, loaded.Version)
	require.Len(t, loaded.Networks, 1)
	assert.Equal(t, "testnet", loaded.Networks[0].Name)

	// the copy landed in the new location and was migrated in place
	_, err = os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestLoadIgnoresLegacyCopyFailure(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir(), LegacyDataDir: filepath.Join(t.TempDir(), "nope")}
	s := New(cfg, zap.NewNop())

	f, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, f.Networks)
}

func TestForceMigrationsRewritesCurrentFile(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir(), ForceMigrations: true}
	s := New(cfg, zap.NewNop())
	require.NoError(t, s.Save(sampleFile(t)))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, loaded.Version)
}

func TestMigrateUnknownIntermediateVersion(t *testing.T) {
	f := Empty()
	f.Version = 0
	err := Migrate(f)
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf("no migration from networks file version %d", 0), err.Error())
}

package docker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zackypick/polar/internal/model"
)

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	n := model.NewNetwork("net-1", "testnet", filepath.Join(root, "testnet"))
	n.AddBitcoinNode("", "27.0")
	_, err := n.AddLightningNode("alice", model.ImplLND, "0.17.5-beta", "backend1")
	require.NoError(t, err)
	_, err = n.AddLightningNode("bob", model.ImplCLightning, "24.02.2", "backend1")
	require.NoError(t, err)

	require.NoError(t, EnsureDirs(n))

	for _, dir := range []string{
		filepath.Join(n.Path, "volumes", "bitcoind", "backend1"),
		filepath.Join(n.Path, "volumes", "lnd", "alice"),
		// c-lightning needs both nested directories ahead of time
		filepath.Join(n.Path, "volumes", "c-lightning", "bob", "lightningd"),
		filepath.Join(n.Path, "volumes", "c-lightning", "bob", "rest-api"),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}

	// additive and idempotent
	require.NoError(t, EnsureDirs(n))
}

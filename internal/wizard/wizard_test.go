package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zackypick/polar/internal/model"
	"github.com/zackypick/polar/internal/repo"
)

func TestApplyBuildsTopology(t *testing.T) {
	n := model.NewNetwork("net-1", "test", t.TempDir())
	answers := &Answers{
		Name:            "test",
		LNDNodes:        2,
		CLightningNodes: 1,
		EclairNodes:     1,
		BitcoinNodes:    1,
	}

	require.NoError(t, Apply(n, answers, repo.DefaultState()))

	require.Len(t, n.Nodes.Bitcoin, 1)
	assert.Equal(t, "backend1", n.Nodes.Bitcoin[0].Name)
	require.Len(t, n.Nodes.Lightning, 4)
	assert.Equal(t, "alice", n.Nodes.Lightning[0].Name)
	assert.Equal(t, model.ImplLND, n.Nodes.Lightning[0].Implementation)
	assert.Equal(t, "bob", n.Nodes.Lightning[1].Name)
	assert.Equal(t, "carol", n.Nodes.Lightning[2].Name)
	assert.Equal(t, model.ImplCLightning, n.Nodes.Lightning[2].Implementation)
	assert.Equal(t, "dave", n.Nodes.Lightning[3].Name)
	assert.Equal(t, model.ImplEclair, n.Nodes.Lightning[3].Implementation)
}

func TestApplyAlwaysAddsBackend(t *testing.T) {
	n := model.NewNetwork("net-1", "test", t.TempDir())
	answers := &Answers{Name: "test", LNDNodes: 1}

	require.NoError(t, Apply(n, answers, repo.DefaultState()))
	require.Len(t, n.Nodes.Bitcoin, 1)
}

func TestApplyUsesLatestVersions(t *testing.T) {
	n := model.NewNetwork("net-1", "test", t.TempDir())
	answers := &Answers{Name: "test", LNDNodes: 1, BitcoinNodes: 1}
	versions := repo.DefaultState()

	require.NoError(t, Apply(n, answers, versions))
	assert.Equal(t, versions.Latest(model.ImplBitcoind), n.Nodes.Bitcoin[0].Version)
	assert.Equal(t, versions.Latest(model.ImplLND), n.Nodes.Lightning[0].Version)
}

func TestApplyOverflowNames(t *testing.T) {
	n := model.NewNetwork("net-1", "test", t.TempDir())
	answers := &Answers{Name: "test", LNDNodes: len(nodeNames) + 2, BitcoinNodes: 1}

	require.NoError(t, Apply(n, answers, repo.DefaultState()))
	last := n.Nodes.Lightning[len(n.Nodes.Lightning)-1]
	assert.Equal(t, "node17", last.Name)
}

func TestParseCount(t *testing.T) {
	got, err := parseCount("nodes", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = parseCount("nodes", "-1")
	assert.Error(t, err)
	_, err = parseCount("nodes", "two")
	assert.Error(t, err)
}

package lightning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/model"
)

func testNode(t *testing.T, impl model.NodeImplementation) *model.LightningNode {
	t.Helper()
	n := model.NewNetwork("net-1", "testnet", "/tmp/polar/testnet")
	n.AddBitcoinNode("", "27.0")
	node, err := n.AddLightningNode("alice", impl, "1.0", "backend1")
	require.NoError(t, err)
	return node
}

func TestFactoryResolvesEveryImplementation(t *testing.T) {
	f := NewFactory(Clients{}, zap.NewNop())

	for _, impl := range model.LightningImplementations {
		node := testNode(t, impl)
		svc, err := f.For(node)
		require.NoError(t, err, string(impl))
		assert.NotNil(t, svc)
	}
}

func TestFactoryUnknownImplementation(t *testing.T) {
	f := NewFactory(Clients{}, zap.NewNop())
	node := testNode(t, model.ImplLND)
	node.Implementation = model.NodeImplementation("ptarmigan")

	_, err := f.For(node)
	assert.Error(t, err)
}

func TestFactoryResolvesDistinctBindings(t *testing.T) {
	f := NewFactory(Clients{}, zap.NewNop())

	lnd, err := f.For(testNode(t, model.ImplLND))
	require.NoError(t, err)
	cln, err := f.For(testNode(t, model.ImplCLightning))
	require.NoError(t, err)

	assert.IsType(t, &lndService{}, lnd)
	assert.IsType(t, &clightningService{}, cln)
}

func TestWaitUntilOnlineRetries(t *testing.T) {
	attempts := 0
	err := waitUntilOnline(context.Background(), time.Millisecond, time.Second, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWaitUntilOnlineTimeout(t *testing.T) {
	err := waitUntilOnline(context.Background(), time.Millisecond, 10*time.Millisecond, func(context.Context) error {
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestParseRPCUrl(t *testing.T) {
	pubkey, host, err := ParseRPCUrl("02abc@alice:9735")
	require.NoError(t, err)
	assert.Equal(t, "02abc", pubkey)
	assert.Equal(t, "alice:9735", host)

	_, _, err = ParseRPCUrl("no-at-sign")
	assert.Error(t, err)
}

func TestParseChannelPoint(t *testing.T) {
	point, err := ParseChannelPoint("deadbeef:1")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", point.TxID)
	assert.Equal(t, 1, point.Index)
	assert.Equal(t, "deadbeef:1", point.String())

	_, err = ParseChannelPoint("deadbeef")
	assert.Error(t, err)
	_, err = ParseChannelPoint("deadbeef:x")
	assert.Error(t, err)
}

package bitcoin

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/model"
)

type fakeClient struct {
	mu        sync.Mutex
	heights   map[string]int
	infoCalls []string
	generated int
	sent      []float64
	sendErr   error
}

func newFakeClient() *fakeClient {
	return &fakeClient{heights: make(map[string]int)}
}

func (f *fakeClient) GetBlockchainInfo(ctx context.Context, n *model.Network, node *model.BitcoinNode) (*ChainInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls = append(f.infoCalls, node.Name)
	return &ChainInfo{Chain: "regtest", Blocks: f.heights[node.Name]}, nil
}

func (f *fakeClient) GetWalletInfo(ctx context.Context, n *model.Network, node *model.BitcoinNode) (*WalletInfo, error) {
	return &WalletInfo{Balance: 50}, nil
}

func (f *fakeClient) GetNewAddress(ctx context.Context, n *model.Network, node *model.BitcoinNode) (string, error) {
	return "bcrt1qaddress", nil
}

func (f *fakeClient) Generate(ctx context.Context, n *model.Network, node *model.BitcoinNode, blocks int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generated += blocks
	for name := range f.heights {
		f.heights[name] += blocks
	}
	hashes := make([]string, blocks)
	for i := range hashes {
		hashes[i] = fmt.Sprintf("hash%d", i)
	}
	return hashes, nil
}

func (f *fakeClient) SendToAddress(ctx context.Context, n *model.Network, node *model.BitcoinNode, address string, amount float64) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, amount)
	return "txid0", nil
}

func testNetwork(t *testing.T) *model.Network {
	t.Helper()
	n := model.NewNetwork("net-1", "test", t.TempDir())
	n.AddBitcoinNode("backend1", "27.0")
	n.AddBitcoinNode("backend2", "27.0")
	return n
}

func TestGetInfoCachesState(t *testing.T) {
	client := newFakeClient()
	client.heights["backend1"] = 101
	svc := NewService(client, 0, zap.NewNop())
	n := testNetwork(t)

	state, err := svc.GetInfo(context.Background(), n, n.Nodes.Bitcoin[0])
	require.NoError(t, err)
	assert.Equal(t, 101, state.Chain.Blocks)
	assert.Equal(t, 50.0, state.Wallet.Balance)

	cached := svc.State(n, "backend1")
	require.NotNil(t, cached)
	assert.Equal(t, 101, cached.Chain.Blocks)
	assert.Nil(t, svc.State(n, "backend2"))
}

func TestMineRejectsNegativeBlocks(t *testing.T) {
	client := newFakeClient()
	svc := NewService(client, 0, zap.NewNop())
	n := testNetwork(t)

	err := svc.Mine(context.Background(), n, n.Nodes.Bitcoin[0], -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
	assert.Zero(t, client.generated)
	assert.Empty(t, client.infoCalls)
}

func TestMineRefreshesStartedNodes(t *testing.T) {
	client := newFakeClient()
	client.heights["backend1"] = 0
	client.heights["backend2"] = 0
	svc := NewService(client, 0, zap.NewNop())
	n := testNetwork(t)
	n.Nodes.Bitcoin[0].Status = model.StatusStarted
	n.Nodes.Bitcoin[1].Status = model.StatusStarted

	require.NoError(t, svc.Mine(context.Background(), n, n.Nodes.Bitcoin[0], 3))
	assert.Equal(t, 3, client.generated)
	assert.ElementsMatch(t, []string{"backend1", "backend2"}, client.infoCalls)
	require.NotNil(t, svc.State(n, "backend2"))
	assert.Equal(t, 3, svc.State(n, "backend2").Chain.Blocks)
}

func TestMineSkipsStoppedNodes(t *testing.T) {
	client := newFakeClient()
	svc := NewService(client, 0, zap.NewNop())
	n := testNetwork(t)
	n.Nodes.Bitcoin[0].Status = model.StatusStarted

	require.NoError(t, svc.Mine(context.Background(), n, n.Nodes.Bitcoin[0], 1))
	assert.Equal(t, []string{"backend1"}, client.infoCalls)
	assert.Nil(t, svc.State(n, "backend2"))
}

func TestSendFundsAutoMines(t *testing.T) {
	client := newFakeClient()
	svc := NewService(client, 0, zap.NewNop())
	n := testNetwork(t)
	n.Nodes.Bitcoin[0].Status = model.StatusStarted

	txid, err := svc.SendFunds(context.Background(), n, n.Nodes.Bitcoin[0], "bcrt1qdest", 1.5, true)
	require.NoError(t, err)
	assert.Equal(t, "txid0", txid)
	assert.Equal(t, []float64{1.5}, client.sent)
	assert.Equal(t, AutoMineBlocks, client.generated)
}

func TestSendFundsWithoutAutoMine(t *testing.T) {
	client := newFakeClient()
	svc := NewService(client, 0, zap.NewNop())
	n := testNetwork(t)

	txid, err := svc.SendFunds(context.Background(), n, n.Nodes.Bitcoin[0], "bcrt1qdest", 0.25, false)
	require.NoError(t, err)
	assert.Equal(t, "txid0", txid)
	assert.Zero(t, client.generated)
}

func TestForgetAndClearNetwork(t *testing.T) {
	client := newFakeClient()
	svc := NewService(client, 0, zap.NewNop())
	n := testNetwork(t)

	_, err := svc.GetInfo(context.Background(), n, n.Nodes.Bitcoin[0])
	require.NoError(t, err)
	_, err = svc.GetInfo(context.Background(), n, n.Nodes.Bitcoin[1])
	require.NoError(t, err)

	svc.Forget(n, "backend1")
	assert.Nil(t, svc.State(n, "backend1"))
	assert.NotNil(t, svc.State(n, "backend2"))

	svc.ClearNetwork(n)
	assert.Nil(t, svc.State(n, "backend2"))

	other := model.NewNetwork("net-2", "other", t.TempDir())
	other.AddBitcoinNode("backend1", "27.0")
	_, err = svc.GetInfo(context.Background(), other, other.Nodes.Bitcoin[0])
	require.NoError(t, err)
	svc.ClearNetwork(n)
	assert.NotNil(t, svc.State(other, "backend1"))
}

package lightning

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/model"
)

// fakeLNDClient answers from canned data and records connect/open calls.
type fakeLNDClient struct {
	info        *LNDInfo
	peers       []LNDPeer
	channels    []LNDChannel
	pending     []LNDChannel
	connects    []string
	opens       []string
	failInfo    error
	failConnect error
}

func (f *fakeLNDClient) GetInfo(context.Context, *model.LightningNode) (*LNDInfo, error) {
	if f.failInfo != nil {
		return nil, f.failInfo
	}
	return f.info, nil
}

func (f *fakeLNDClient) WalletBalance(context.Context, *model.LightningNode) (*LNDWalletBalance, error) {
	return &LNDWalletBalance{TotalBalance: 150, ConfirmedBalance: 100, UnconfirmedBalance: 50}, nil
}

func (f *fakeLNDClient) NewAddress(context.Context, *model.LightningNode) (string, error) {
	return "bcrt1qtest", nil
}

func (f *fakeLNDClient) ListChannels(context.Context, *model.LightningNode) ([]LNDChannel, error) {
	return f.channels, nil
}

func (f *fakeLNDClient) PendingChannels(context.Context, *model.LightningNode) ([]LNDChannel, error) {
	return f.pending, nil
}

func (f *fakeLNDClient) ListPeers(context.Context, *model.LightningNode) ([]LNDPeer, error) {
	return f.peers, nil
}

func (f *fakeLNDClient) ConnectPeer(_ context.Context, _ *model.LightningNode, pubkey, host string) error {
	f.connects = append(f.connects, pubkey+"@"+host)
	return f.failConnect
}

func (f *fakeLNDClient) OpenChannel(_ context.Context, _ *model.LightningNode, pubkey string, _ int64, _ bool) (*LNDChannelPoint, error) {
	f.opens = append(f.opens, pubkey)
	return &LNDChannelPoint{FundingTxID: "deadbeef", OutputIndex: 1}, nil
}

func (f *fakeLNDClient) CloseChannel(context.Context, *model.LightningNode, string, int) error {
	return nil
}

func (f *fakeLNDClient) AddInvoice(context.Context, *model.LightningNode, int64, string) (string, error) {
	return "lnbcrt1invoice", nil
}

func (f *fakeLNDClient) PayInvoice(context.Context, *model.LightningNode, string, int64) (*LNDPayment, error) {
	return &LNDPayment{Preimage: "feed", AmountSats: 1000, Destination: "02bob"}, nil
}

func lndFixture(t *testing.T) (*lndService, *fakeLNDClient, *model.LightningNode) {
	t.Helper()
	client := &fakeLNDClient{
		info: &LNDInfo{
			IdentityPubkey:    "02alice",
			Alias:             "alice",
			SyncedToChain:     true,
			BlockHeight:       101,
			NumActiveChannels: 2,
		},
	}
	svc := &lndService{client: client, log: zap.NewNop()}
	return svc, client, testNode(t, model.ImplLND)
}

func TestLNDGetInfoNormalizes(t *testing.T) {
	svc, _, node := lndFixture(t)

	info, err := svc.GetInfo(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, "02alice", info.Pubkey)
	assert.Equal(t, "02alice@alice:9735", info.RPCUrl)
	assert.True(t, info.Synced)
	assert.Equal(t, 101, info.BlockHeight)
	assert.Equal(t, 2, info.ActiveChannels)
}

func TestLNDGetInfoWrapsError(t *testing.T) {
	svc, client, node := lndFixture(t)
	client.failInfo = errors.New("wallet locked")

	_, err := svc.GetInfo(context.Background(), node)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lnd alice")
	assert.Contains(t, err.Error(), "wallet locked")
}

func TestLNDGetBalances(t *testing.T) {
	svc, _, node := lndFixture(t)

	balances, err := svc.GetBalances(context.Background(), node)
	require.NoError(t, err)
	assert.Equal(t, &Balances{Total: 150, Confirmed: 100, Unconfirmed: 50}, balances)
}

func TestLNDGetChannelsMergesPending(t *testing.T) {
	svc, client, node := lndFixture(t)
	client.channels = []LNDChannel{
		{RemotePubkey: "02bob", ChannelPoint: "aa:0", Capacity: 100000, Active: true},
		{RemotePubkey: "02carol", ChannelPoint: "bb:1", Capacity: 50000, Active: false},
	}
	client.pending = []LNDChannel{
		{RemotePubkey: "02dave", ChannelPoint: "cc:0", Capacity: 20000},
	}

	channels, err := svc.GetChannels(context.Background(), node)
	require.NoError(t, err)
	require.Len(t, channels, 3)
	assert.Equal(t, "Open", channels[0].Status)
	assert.Equal(t, "Inactive", channels[1].Status)
	assert.Equal(t, "Opening", channels[2].Status)
}

func TestLNDConnectPeersSkipsExisting(t *testing.T) {
	svc, client, node := lndFixture(t)
	client.peers = []LNDPeer{{PubKey: "02bob", Address: "bob:9735"}}

	err := svc.ConnectPeers(context.Background(), node, []string{
		"02bob@bob:9735",
		"02carol@carol:9735",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"02carol@carol:9735"}, client.connects)
}

func TestLNDConnectPeersIgnoresIndividualFailures(t *testing.T) {
	svc, client, node := lndFixture(t)
	client.failConnect = errors.New("connection refused")

	err := svc.ConnectPeers(context.Background(), node, []string{"02carol@carol:9735"})
	assert.NoError(t, err)
}

func TestLNDOpenChannelConnectsFirst(t *testing.T) {
	svc, client, node := lndFixture(t)

	point, err := svc.OpenChannel(context.Background(), node, "02bob@bob:9735", 100000, false)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef:1", point.String())
	// the peer connection was established before funding
	assert.Equal(t, []string{"02bob@bob:9735"}, client.connects)
	assert.Equal(t, []string{"02bob"}, client.opens)
}

func TestLNDPayInvoice(t *testing.T) {
	svc, _, node := lndFixture(t)

	receipt, err := svc.PayInvoice(context.Background(), node, "lnbcrt1invoice", 1000)
	require.NoError(t, err)
	assert.Equal(t, "feed", receipt.Preimage)
	assert.Equal(t, int64(1000), receipt.Amount)
	assert.Equal(t, "02bob", receipt.Destination)
}

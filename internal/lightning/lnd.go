package lightning

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/model"
)

func init() {
	register(model.ImplLND, func(c Clients, log *zap.Logger) Service {
		return &lndService{client: c.LND, log: log}
	})
}

// LNDClient is the opaque control-API client for LND nodes. The
// implementation that actually speaks gRPC/REST lives outside this
// package; the wire shapes below are its response vocabulary.
type LNDClient interface {
	GetInfo(ctx context.Context, node *model.LightningNode) (*LNDInfo, error)
	WalletBalance(ctx context.Context, node *model.LightningNode) (*LNDWalletBalance, error)
	NewAddress(ctx context.Context, node *model.LightningNode) (string, error)
	ListChannels(ctx context.Context, node *model.LightningNode) ([]LNDChannel, error)
	PendingChannels(ctx context.Context, node *model.LightningNode) ([]LNDChannel, error)
	ListPeers(ctx context.Context, node *model.LightningNode) ([]LNDPeer, error)
	ConnectPeer(ctx context.Context, node *model.LightningNode, pubkey, host string) error
	OpenChannel(ctx context.Context, node *model.LightningNode, pubkey string, amountSats int64, private bool) (*LNDChannelPoint, error)
	CloseChannel(ctx context.Context, node *model.LightningNode, fundingTxID string, outputIndex int) error
	AddInvoice(ctx context.Context, node *model.LightningNode, amountSats int64, memo string) (string, error)
	PayInvoice(ctx context.Context, node *model.LightningNode, invoice string, amountSats int64) (*LNDPayment, error)
}

type LNDInfo struct {
	IdentityPubkey      string
	Alias               string
	SyncedToChain       bool
	BlockHeight         int
	NumActiveChannels   int
	NumPendingChannels  int
	NumInactiveChannels int
}

type LNDWalletBalance struct {
	TotalBalance       int64
	ConfirmedBalance   int64
	UnconfirmedBalance int64
}

type LNDChannel struct {
	RemotePubkey  string
	ChannelPoint  string
	Capacity      int64
	LocalBalance  int64
	RemoteBalance int64
	Active        bool
	Private       bool
}

type LNDPeer struct {
	PubKey  string
	Address string
}

type LNDChannelPoint struct {
	FundingTxID string
	OutputIndex int
}

type LNDPayment struct {
	Preimage    string
	AmountSats  int64
	Destination string
}

type lndService struct {
	client LNDClient
	log    *zap.Logger
}

func (s *lndService) WaitUntilOnline(ctx context.Context, node *model.LightningNode) error {
	return waitUntilOnline(ctx, onlinePollInterval, onlineTimeout, func(ctx context.Context) error {
		_, err := s.client.GetInfo(ctx, node)
		return err
	})
}

func (s *lndService) GetInfo(ctx context.Context, node *model.LightningNode) (*NodeInfo, error) {
	info, err := s.client.GetInfo(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("lnd %s: %w", node.Name, err)
	}
	return &NodeInfo{
		Pubkey:           info.IdentityPubkey,
		Alias:            info.Alias,
		RPCUrl:           fmt.Sprintf("%s@%s:%d", info.IdentityPubkey, node.Name, model.ContainerLNDP2P),
		Synced:           info.SyncedToChain,
		BlockHeight:      info.BlockHeight,
		ActiveChannels:   info.NumActiveChannels,
		PendingChannels:  info.NumPendingChannels,
		InactiveChannels: info.NumInactiveChannels,
	}, nil
}

func (s *lndService) GetBalances(ctx context.Context, node *model.LightningNode) (*Balances, error) {
	balance, err := s.client.WalletBalance(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("lnd %s: %w", node.Name, err)
	}
	return &Balances{
		Total:       balance.TotalBalance,
		Confirmed:   balance.ConfirmedBalance,
		Unconfirmed: balance.UnconfirmedBalance,
	}, nil
}

func (s *lndService) GetNewAddress(ctx context.Context, node *model.LightningNode) (string, error) {
	addr, err := s.client.NewAddress(ctx, node)
	if err != nil {
		return "", fmt.Errorf("lnd %s: %w", node.Name, err)
	}
	return addr, nil
}

func (s *lndService) GetChannels(ctx context.Context, node *model.LightningNode) ([]Channel, error) {
	open, err := s.client.ListChannels(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("lnd %s: %w", node.Name, err)
	}
	pending, err := s.client.PendingChannels(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("lnd %s: %w", node.Name, err)
	}

	var out []Channel
	for _, c := range open {
		status := "Open"
		if !c.Active {
			status = "Inactive"
		}
		out = append(out, lndChannel(c, status))
	}
	for _, c := range pending {
		out = append(out, lndChannel(c, "Opening"))
	}
	return out, nil
}

func lndChannel(c LNDChannel, status string) Channel {
	return Channel{
		Pubkey:        c.RemotePubkey,
		ChannelPoint:  c.ChannelPoint,
		Capacity:      c.Capacity,
		LocalBalance:  c.LocalBalance,
		RemoteBalance: c.RemoteBalance,
		Status:        status,
		Private:       c.Private,
	}
}

func (s *lndService) GetPeers(ctx context.Context, node *model.LightningNode) ([]Peer, error) {
	peers, err := s.client.ListPeers(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("lnd %s: %w", node.Name, err)
	}
	out := make([]Peer, len(peers))
	for i, p := range peers {
		out[i] = Peer{Pubkey: p.PubKey, Address: p.Address}
	}
	return out, nil
}

// ConnectPeers connects the node to every url it is not already
// peered with. Individual connect failures are logged and skipped so
// one unreachable peer does not block the rest.
func (s *lndService) ConnectPeers(ctx context.Context, node *model.LightningNode, rpcUrls []string) error {
	peers, err := s.GetPeers(ctx, node)
	if err != nil {
		return err
	}
	connected := make(map[string]bool, len(peers))
	for _, p := range peers {
		connected[p.Pubkey] = true
	}
	for _, url := range rpcUrls {
		pubkey, host, err := ParseRPCUrl(url)
		if err != nil {
			return err
		}
		if connected[pubkey] {
			continue
		}
		if err := s.client.ConnectPeer(ctx, node, pubkey, host); err != nil {
			s.log.Warn("connect peer failed",
				zap.String("node", node.Name), zap.String("peer", url), zap.Error(err))
		}
	}
	return nil
}

func (s *lndService) OpenChannel(ctx context.Context, from *model.LightningNode, toRPCUrl string, amountSats int64, private bool) (*ChannelPoint, error) {
	pubkey, _, err := ParseRPCUrl(toRPCUrl)
	if err != nil {
		return nil, err
	}
	// make sure the peer connection exists before funding
	if err := s.ConnectPeers(ctx, from, []string{toRPCUrl}); err != nil {
		return nil, err
	}
	point, err := s.client.OpenChannel(ctx, from, pubkey, amountSats, private)
	if err != nil {
		return nil, fmt.Errorf("lnd %s: %w", from.Name, err)
	}
	return &ChannelPoint{TxID: point.FundingTxID, Index: point.OutputIndex}, nil
}

func (s *lndService) CloseChannel(ctx context.Context, node *model.LightningNode, channelPoint string) error {
	point, err := ParseChannelPoint(channelPoint)
	if err != nil {
		return err
	}
	if err := s.client.CloseChannel(ctx, node, point.TxID, point.Index); err != nil {
		return fmt.Errorf("lnd %s: %w", node.Name, err)
	}
	return nil
}

func (s *lndService) CreateInvoice(ctx context.Context, node *model.LightningNode, amountSats int64, memo string) (string, error) {
	invoice, err := s.client.AddInvoice(ctx, node, amountSats, memo)
	if err != nil {
		return "", fmt.Errorf("lnd %s: %w", node.Name, err)
	}
	return invoice, nil
}

func (s *lndService) PayInvoice(ctx context.Context, node *model.LightningNode, invoice string, amountSats int64) (*PaymentReceipt, error) {
	payment, err := s.client.PayInvoice(ctx, node, invoice, amountSats)
	if err != nil {
		return nil, fmt.Errorf("lnd %s: %w", node.Name, err)
	}
	return &PaymentReceipt{
		Preimage:    payment.Preimage,
		Amount:      payment.AmountSats,
		Destination: payment.Destination,
	}, nil
}

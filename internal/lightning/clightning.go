package lightning

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/model"
)

func init() {
	register(model.ImplCLightning, func(c Clients, log *zap.Logger) Service {
		return &clightningService{client: c.CLightning, log: log}
	})
}

// CLightningClient is the opaque control-API client for c-lightning
// nodes. Amounts on this wire are millisatoshis.
type CLightningClient interface {
	GetInfo(ctx context.Context, node *model.LightningNode) (*CLNInfo, error)
	ListFunds(ctx context.Context, node *model.LightningNode) (*CLNFunds, error)
	NewAddress(ctx context.Context, node *model.LightningNode) (string, error)
	ListPeerChannels(ctx context.Context, node *model.LightningNode) ([]CLNChannel, error)
	ListPeers(ctx context.Context, node *model.LightningNode) ([]CLNPeer, error)
	Connect(ctx context.Context, node *model.LightningNode, id, host string) error
	FundChannel(ctx context.Context, node *model.LightningNode, id string, amountSats int64, private bool) (*CLNFundResult, error)
	Close(ctx context.Context, node *model.LightningNode, id string) error
	Invoice(ctx context.Context, node *model.LightningNode, amountMsat int64, label, description string) (string, error)
	Pay(ctx context.Context, node *model.LightningNode, bolt11 string) (*CLNPayment, error)
}

type CLNInfo struct {
	ID                  string
	Alias               string
	BlockHeight         int
	WarningBitcoindSync string
	NumActiveChannels   int
	NumPendingChannels  int
	NumInactiveChannels int
}

type CLNFunds struct {
	Outputs []CLNOutput
}

type CLNOutput struct {
	AmountMsat int64
	Status     string // confirmed or unconfirmed
}

type CLNChannel struct {
	PeerID        string
	FundingTxID   string
	FundingOutnum int
	TotalMsat     int64
	ToUsMsat      int64
	State         string
	Private       bool
}

type CLNPeer struct {
	ID        string
	NetAddr   string
	Connected bool
}

type CLNFundResult struct {
	TxID   string
	Outnum int
}

type CLNPayment struct {
	PaymentPreimage string
	AmountMsat      int64
	Destination     string
}

type clightningService struct {
	client CLightningClient
	log    *zap.Logger
}

func (s *clightningService) WaitUntilOnline(ctx context.Context, node *model.LightningNode) error {
	return waitUntilOnline(ctx, onlinePollInterval, onlineTimeout, func(ctx context.Context) error {
		_, err := s.client.GetInfo(ctx, node)
		return err
	})
}

func (s *clightningService) GetInfo(ctx context.Context, node *model.LightningNode) (*NodeInfo, error) {
	info, err := s.client.GetInfo(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("c-lightning %s: %w", node.Name, err)
	}
	return &NodeInfo{
		Pubkey:           info.ID,
		Alias:            info.Alias,
		RPCUrl:           fmt.Sprintf("%s@%s:%d", info.ID, node.Name, model.ContainerCLightningP2P),
		Synced:           info.WarningBitcoindSync == "",
		BlockHeight:      info.BlockHeight,
		ActiveChannels:   info.NumActiveChannels,
		PendingChannels:  info.NumPendingChannels,
		InactiveChannels: info.NumInactiveChannels,
	}, nil
}

func (s *clightningService) GetBalances(ctx context.Context, node *model.LightningNode) (*Balances, error) {
	funds, err := s.client.ListFunds(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("c-lightning %s: %w", node.Name, err)
	}
	balances := &Balances{}
	for _, out := range funds.Outputs {
		sats := out.AmountMsat / 1000
		balances.Total += sats
		if out.Status == "confirmed" {
			balances.Confirmed += sats
		} else {
			balances.Unconfirmed += sats
		}
	}
	return balances, nil
}

func (s *clightningService) GetNewAddress(ctx context.Context, node *model.LightningNode) (string, error) {
	addr, err := s.client.NewAddress(ctx, node)
	if err != nil {
		return "", fmt.Errorf("c-lightning %s: %w", node.Name, err)
	}
	return addr, nil
}

func (s *clightningService) GetChannels(ctx context.Context, node *model.LightningNode) ([]Channel, error) {
	channels, err := s.client.ListPeerChannels(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("c-lightning %s: %w", node.Name, err)
	}
	var out []Channel
	for _, c := range channels {
		out = append(out, Channel{
			Pubkey:        c.PeerID,
			ChannelPoint:  fmt.Sprintf("%s:%d", c.FundingTxID, c.FundingOutnum),
			Capacity:      c.TotalMsat / 1000,
			LocalBalance:  c.ToUsMsat / 1000,
			RemoteBalance: (c.TotalMsat - c.ToUsMsat) / 1000,
			Status:        clnChannelStatus(c.State),
			Private:       c.Private,
		})
	}
	return out, nil
}

func clnChannelStatus(state string) string {
	switch state {
	case "CHANNELD_NORMAL":
		return "Open"
	case "CHANNELD_AWAITING_LOCKIN", "DUALOPEND_AWAITING_LOCKIN", "OPENINGD":
		return "Opening"
	case "CHANNELD_SHUTTING_DOWN", "CLOSINGD_SIGEXCHANGE", "CLOSINGD_COMPLETE":
		return "Closing"
	}
	return state
}

func (s *clightningService) GetPeers(ctx context.Context, node *model.LightningNode) ([]Peer, error) {
	peers, err := s.client.ListPeers(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("c-lightning %s: %w", node.Name, err)
	}
	var out []Peer
	for _, p := range peers {
		if !p.Connected {
			continue
		}
		out = append(out, Peer{Pubkey: p.ID, Address: p.NetAddr})
	}
	return out, nil
}

func (s *clightningService) ConnectPeers(ctx context.Context, node *model.LightningNode, rpcUrls []string) error {
	peers, err := s.GetPeers(ctx, node)
	if err != nil {
		return err
	}
	connected := make(map[string]bool, len(peers))
	for _, p := range peers {
		connected[p.Pubkey] = true
	}
	for _, url := range rpcUrls {
		id, host, err := ParseRPCUrl(url)
		if err != nil {
			return err
		}
		if connected[id] {
			continue
		}
		if err := s.client.Connect(ctx, node, id, host); err != nil {
			s.log.Warn("connect peer failed",
				zap.String("node", node.Name), zap.String("peer", url), zap.Error(err))
		}
	}
	return nil
}

func (s *clightningService) OpenChannel(ctx context.Context, from *model.LightningNode, toRPCUrl string, amountSats int64, private bool) (*ChannelPoint, error) {
	id, _, err := ParseRPCUrl(toRPCUrl)
	if err != nil {
		return nil, err
	}
	if err := s.ConnectPeers(ctx, from, []string{toRPCUrl}); err != nil {
		return nil, err
	}
	result, err := s.client.FundChannel(ctx, from, id, amountSats, private)
	if err != nil {
		return nil, fmt.Errorf("c-lightning %s: %w", from.Name, err)
	}
	return &ChannelPoint{TxID: result.TxID, Index: result.Outnum}, nil
}

func (s *clightningService) CloseChannel(ctx context.Context, node *model.LightningNode, channelPoint string) error {
	point, err := ParseChannelPoint(channelPoint)
	if err != nil {
		return err
	}
	if err := s.client.Close(ctx, node, point.TxID); err != nil {
		return fmt.Errorf("c-lightning %s: %w", node.Name, err)
	}
	return nil
}

func (s *clightningService) CreateInvoice(ctx context.Context, node *model.LightningNode, amountSats int64, memo string) (string, error) {
	// invoice labels must be unique per node
	label := fmt.Sprintf("%s-%d", node.Name, time.Now().UnixNano())
	invoice, err := s.client.Invoice(ctx, node, amountSats*1000, label, memo)
	if err != nil {
		return "", fmt.Errorf("c-lightning %s: %w", node.Name, err)
	}
	return invoice, nil
}

func (s *clightningService) PayInvoice(ctx context.Context, node *model.LightningNode, invoice string, _ int64) (*PaymentReceipt, error) {
	payment, err := s.client.Pay(ctx, node, invoice)
	if err != nil {
		return nil, fmt.Errorf("c-lightning %s: %w", node.Name, err)
	}
	return &PaymentReceipt{
		Preimage:    payment.PaymentPreimage,
		Amount:      payment.AmountMsat / 1000,
		Destination: payment.Destination,
	}, nil
}

package bitcoin

import (
	"context"

	"github.com/zackypick/polar/internal/model"
)

// ChainInfo is a backend node's view of its chain.
type ChainInfo struct {
	Chain                string `json:"chain"`
	Blocks               int    `json:"blocks"`
	BestBlockHash        string `json:"bestblockhash"`
	InitialBlockDownload bool   `json:"initialblockdownload"`
}

// WalletInfo is a backend node's wallet summary.
type WalletInfo struct {
	Balance         float64 `json:"balance"`
	ImmatureBalance float64 `json:"immature_balance"`
	TxCount         int     `json:"txcount"`
}

// Client is the control surface this package needs from a bitcoind
// node. How it reaches the node is its own business.
type Client interface {
	GetBlockchainInfo(ctx context.Context, n *model.Network, node *model.BitcoinNode) (*ChainInfo, error)
	GetWalletInfo(ctx context.Context, n *model.Network, node *model.BitcoinNode) (*WalletInfo, error)
	GetNewAddress(ctx context.Context, n *model.Network, node *model.BitcoinNode) (string, error)
	Generate(ctx context.Context, n *model.Network, node *model.BitcoinNode, blocks int) ([]string, error)
	SendToAddress(ctx context.Context, n *model.Network, node *model.BitcoinNode, address string, amount float64) (string, error)
}

package bitcoin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/zackypick/polar/internal/docker"
	"github.com/zackypick/polar/internal/model"
)

// ExecClient drives bitcoind through the bitcoin-cli binary inside the
// node's own container, over the compose exec facility. The RPC wire
// format stays bitcoin-cli's problem; this client only parses its
// JSON answers.
type ExecClient struct {
	docker *docker.Controller
}

func NewExecClient(d *docker.Controller) *ExecClient {
	return &ExecClient{docker: d}
}

func (c *ExecClient) cli(ctx context.Context, n *model.Network, node *model.BitcoinNode, args ...string) (string, error) {
	cmd := append([]string{
		"bitcoin-cli",
		"-regtest",
		"-rpcuser=" + node.RPCUser,
		"-rpcpassword=" + node.RPCPass,
	}, args...)
	out, err := c.docker.Exec(ctx, n, node.Name, cmd...)
	if err != nil {
		return "", fmt.Errorf("bitcoin-cli %s on %s: %w", args[0], node.Name, err)
	}
	return strings.TrimSpace(out), nil
}

func (c *ExecClient) GetBlockchainInfo(ctx context.Context, n *model.Network, node *model.BitcoinNode) (*ChainInfo, error) {
	out, err := c.cli(ctx, n, node, "getblockchaininfo")
	if err != nil {
		return nil, err
	}
	info := &ChainInfo{}
	if err := json.Unmarshal([]byte(out), info); err != nil {
		return nil, fmt.Errorf("parsing getblockchaininfo from %s: %w", node.Name, err)
	}
	return info, nil
}

func (c *ExecClient) GetWalletInfo(ctx context.Context, n *model.Network, node *model.BitcoinNode) (*WalletInfo, error) {
	out, err := c.cli(ctx, n, node, "getwalletinfo")
	if err != nil {
		return nil, err
	}
	info := &WalletInfo{}
	if err := json.Unmarshal([]byte(out), info); err != nil {
		return nil, fmt.Errorf("parsing getwalletinfo from %s: %w", node.Name, err)
	}
	return info, nil
}

func (c *ExecClient) GetNewAddress(ctx context.Context, n *model.Network, node *model.BitcoinNode) (string, error) {
	return c.cli(ctx, n, node, "getnewaddress")
}

func (c *ExecClient) Generate(ctx context.Context, n *model.Network, node *model.BitcoinNode, blocks int) ([]string, error) {
	out, err := c.cli(ctx, n, node, "-generate", strconv.Itoa(blocks))
	if err != nil {
		return nil, err
	}
	var result struct {
		Address string   `json:"address"`
		Blocks  []string `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, fmt.Errorf("parsing generate output from %s: %w", node.Name, err)
	}
	return result.Blocks, nil
}

func (c *ExecClient) SendToAddress(ctx context.Context, n *model.Network, node *model.BitcoinNode, address string, amount float64) (string, error) {
	return c.cli(ctx, n, node, "sendtoaddress", address, strconv.FormatFloat(amount, 'f', -1, 64))
}

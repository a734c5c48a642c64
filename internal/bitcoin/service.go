// Package bitcoin keeps backend node state in sync: it fetches chain
// and wallet info, caches it per network and node, and propagates
// refreshes after mutations so dependent views stay consistent.
package bitcoin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zackypick/polar/internal/model"
)

// AutoMineBlocks is how many confirmations an auto-mined send gets.
const AutoMineBlocks = 6

// NodeState is the cached view of one backend node.
type NodeState struct {
	Chain  *ChainInfo
	Wallet *WalletInfo
}

// Service polls and mutates backend node state. Cached entries are
// keyed by network id plus node name and live until the node is
// removed or the network is torn down.
type Service struct {
	client Client
	// settle is how long mined blocks get to propagate before the
	// fan-out refresh. A heuristic constant, configurable because slow
	// machines need more; see config.BitcoinConfig.
	settle time.Duration
	log    *zap.Logger

	mu     sync.Mutex
	states map[string]*NodeState
}

func NewService(client Client, settle time.Duration, log *zap.Logger) *Service {
	return &Service{
		client: client,
		settle: settle,
		log:    log,
		states: make(map[string]*NodeState),
	}
}

func stateKey(n *model.Network, nodeName string) string {
	return n.ID + "/" + nodeName
}

// GetInfo fetches chain and wallet info for a node and caches it.
func (s *Service) GetInfo(ctx context.Context, n *model.Network, node *model.BitcoinNode) (*NodeState, error) {
	chain, err := s.client.GetBlockchainInfo(ctx, n, node)
	if err != nil {
		return nil, err
	}
	wallet, err := s.client.GetWalletInfo(ctx, n, node)
	if err != nil {
		return nil, err
	}
	state := &NodeState{Chain: chain, Wallet: wallet}
	s.mu.Lock()
	s.states[stateKey(n, node.Name)] = state
	s.mu.Unlock()
	return state, nil
}

// State returns the cached view of a node, or nil when nothing has
// been fetched yet.
func (s *Service) State(n *model.Network, nodeName string) *NodeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[stateKey(n, nodeName)]
}

// GetNewAddress asks the node's wallet for a fresh address.
func (s *Service) GetNewAddress(ctx context.Context, n *model.Network, node *model.BitcoinNode) (string, error) {
	return s.client.GetNewAddress(ctx, n, node)
}

// Mine generates blocks on one node, waits for propagation, then
// refreshes the info of every started bitcoin node in the network so
// their cached heights agree. The refreshes run concurrently with no
// ordering among them; Mine returns once all have finished.
func (s *Service) Mine(ctx context.Context, n *model.Network, node *model.BitcoinNode, blocks int) error {
	if blocks < 0 {
		return fmt.Errorf("cannot mine a negative number of blocks: %d", blocks)
	}
	if _, err := s.client.Generate(ctx, n, node, blocks); err != nil {
		return err
	}

	if s.settle > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.settle):
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, b := range n.StartedBitcoinNodes() {
		b := b
		g.Go(func() error {
			_, err := s.GetInfo(ctx, n, b)
			return err
		})
	}
	return g.Wait()
}

// SendFunds sends coins from a node's wallet. With autoMine set the
// transaction is immediately confirmed by mining AutoMineBlocks blocks
// on the same node.
func (s *Service) SendFunds(ctx context.Context, n *model.Network, node *model.BitcoinNode, address string, amount float64, autoMine bool) (string, error) {
	txid, err := s.client.SendToAddress(ctx, n, node, address, amount)
	if err != nil {
		return "", err
	}
	s.log.Debug("sent funds", zap.String("node", node.Name), zap.String("txid", txid))
	if autoMine {
		if err := s.Mine(ctx, n, node, AutoMineBlocks); err != nil {
			return txid, err
		}
	}
	return txid, nil
}

// Forget clears the cached state of one node.
func (s *Service) Forget(n *model.Network, nodeName string) {
	s.mu.Lock()
	delete(s.states, stateKey(n, nodeName))
	s.mu.Unlock()
}

// ClearNetwork drops every cached entry belonging to a network.
func (s *Service) ClearNetwork(n *model.Network) {
	prefix := n.ID + "/"
	s.mu.Lock()
	for key := range s.states {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			delete(s.states, key)
		}
	}
	s.mu.Unlock()
}

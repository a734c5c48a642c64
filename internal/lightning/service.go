// Package lightning gives every supported Lightning implementation a
// single control surface. Callers resolve a node to its binding
// through the Factory once and never branch on the implementation tag
// themselves; each binding maps its implementation's wire shapes onto
// the normalized types in this package.
package lightning

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/model"
)

// Service is the uniform capability interface over one Lightning
// implementation. Every method takes the node to act on; results are
// normalized shapes independent of the implementation's wire format.
type Service interface {
	WaitUntilOnline(ctx context.Context, node *model.LightningNode) error
	GetInfo(ctx context.Context, node *model.LightningNode) (*NodeInfo, error)
	GetBalances(ctx context.Context, node *model.LightningNode) (*Balances, error)
	GetNewAddress(ctx context.Context, node *model.LightningNode) (string, error)
	GetChannels(ctx context.Context, node *model.LightningNode) ([]Channel, error)
	GetPeers(ctx context.Context, node *model.LightningNode) ([]Peer, error)
	ConnectPeers(ctx context.Context, node *model.LightningNode, rpcUrls []string) error
	OpenChannel(ctx context.Context, from *model.LightningNode, toRPCUrl string, amountSats int64, private bool) (*ChannelPoint, error)
	CloseChannel(ctx context.Context, node *model.LightningNode, channelPoint string) error
	CreateInvoice(ctx context.Context, node *model.LightningNode, amountSats int64, memo string) (string, error)
	PayInvoice(ctx context.Context, node *model.LightningNode, invoice string, amountSats int64) (*PaymentReceipt, error)
}

// Clients bundles the per-implementation control-API clients. They are
// external collaborators; this package only defines the interfaces it
// needs from them.
type Clients struct {
	LND        LNDClient
	CLightning CLightningClient
	Eclair     EclairClient
}

var bindings = map[model.NodeImplementation]func(Clients, *zap.Logger) Service{}

// register adds an implementation binding. Each binding file calls
// this in its init().
func register(impl model.NodeImplementation, build func(Clients, *zap.Logger) Service) {
	bindings[impl] = build
}

// Factory resolves nodes to their implementation's Service binding.
type Factory struct {
	services map[model.NodeImplementation]Service
}

// NewFactory instantiates every registered binding against the given
// clients.
func NewFactory(clients Clients, log *zap.Logger) *Factory {
	services := make(map[model.NodeImplementation]Service, len(bindings))
	for impl, build := range bindings {
		services[impl] = build(clients, log)
	}
	return &Factory{services: services}
}

// For returns the binding for a node's implementation tag.
func (f *Factory) For(node *model.LightningNode) (Service, error) {
	svc, ok := f.services[node.Implementation]
	if !ok {
		return nil, fmt.Errorf("no lightning binding for implementation %q", node.Implementation)
	}
	return svc, nil
}

// waitUntilOnline polls check until it succeeds or the timeout lapses.
// Node containers accept API calls a few seconds after start; every
// binding funnels its WaitUntilOnline through this.
func waitUntilOnline(ctx context.Context, interval, timeout time.Duration, check func(context.Context) error) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		if lastErr = check(ctx); lastErr == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("node did not come online within %s: %w", timeout, lastErr)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

const (
	onlinePollInterval = 2 * time.Second
	onlineTimeout      = 2 * time.Minute
)

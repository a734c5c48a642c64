package model

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default regtest wallet credentials baked into every bitcoin node.
// RPCAuth is the salted form of the same user/pass pair, used on the
// bitcoind command line so the password never appears in plain text.
const (
	DefaultRPCUser = "polaruser"
	DefaultRPCPass = "polarpass"
	RPCAuth        = "polaruser:5e5e98c21f5c6260fef7508e2a16756b$$66b03f92df30b11de8e4b1b1cd5b1b4281aa25205bd57df9be82caf6dc10baec"
)

// AutoMineMode controls background mining for a network. The
// orchestration core treats it as declared data; the scheduler that
// acts on it lives with the caller.
type AutoMineMode string

const (
	AutoMineOff AutoMineMode = "off"
	AutoMine30s AutoMineMode = "30s"
	AutoMine1m  AutoMineMode = "1m"
	AutoMine5m  AutoMineMode = "5m"
	AutoMine10m AutoMineMode = "10m"
)

// Nodes holds a network's two ordered node sequences.
type Nodes struct {
	Bitcoin   []*BitcoinNode   `json:"bitcoin"`
	Lightning []*LightningNode `json:"lightning"`
}

// Network is a named collection of bitcoin and lightning nodes plus
// their declared relationships. It is the single writable source of
// truth for declared state; the docker controller and the backend
// sync only write node status back into it, never topology shape.
type Network struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Status   Status       `json:"status"`
	Path     string       `json:"path"`
	AutoMine AutoMineMode `json:"autoMine"`
	Nodes    Nodes        `json:"nodes"`
}

// NewNetwork creates an empty stopped network rooted at path.
func NewNetwork(id, name, path string) *Network {
	return &Network{
		ID:       id,
		Name:     name,
		Status:   StatusStopped,
		Path:     path,
		AutoMine: AutoMineOff,
	}
}

var nameRule = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validate checks the user-supplied parts of the network definition.
func (n *Network) Validate() error {
	err := validation.ValidateStruct(n,
		validation.Field(&n.ID, validation.Required),
		validation.Field(&n.Name, validation.Required, validation.Length(1, 64),
			validation.Match(nameRule).Error("must be lowercase letters, digits, and hyphens")),
		validation.Field(&n.Path, validation.Required),
	)
	if err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, node := range n.allNodes() {
		if err := validation.Validate(node.Name,
			validation.Required, validation.Match(nameRule)); err != nil {
			return fmt.Errorf("node %q: %w", node.Name, err)
		}
		if seen[node.Name] {
			return fmt.Errorf("duplicate node name %q", node.Name)
		}
		seen[node.Name] = true
	}
	return nil
}

func (n *Network) allNodes() []*CommonNode {
	var out []*CommonNode
	for _, b := range n.Nodes.Bitcoin {
		out = append(out, &b.CommonNode)
	}
	for _, l := range n.Nodes.Lightning {
		out = append(out, &l.CommonNode)
	}
	return out
}

func (n *Network) nextNodeID() int {
	next := 0
	for _, node := range n.allNodes() {
		if node.ID >= next {
			next = node.ID + 1
		}
	}
	return next
}

// freeBitcoinIndex returns the lowest port-block index no bitcoin node
// occupies. Blocks freed by RemoveNode are handed out again before new
// ones are opened; surviving nodes never move.
func (n *Network) freeBitcoinIndex() int {
	used := make(map[int]bool, len(n.Nodes.Bitcoin))
	for _, b := range n.Nodes.Bitcoin {
		used[bitcoinIndexOf(b.Ports)] = true
	}
	i := 0
	for used[i] {
		i++
	}
	return i
}

func (n *Network) freeLightningIndex(impl NodeImplementation) int {
	used := make(map[int]bool, len(n.Nodes.Lightning))
	for _, l := range n.Nodes.Lightning {
		if l.Implementation == impl {
			used[lightningIndexOf(impl, l.Ports)] = true
		}
	}
	i := 0
	for used[i] {
		i++
	}
	return i
}

// AddBitcoinNode appends a bitcoin node with default credentials and
// the lowest free port block. An empty name picks the first unused
// backend1, backend2, ... so a removed node's name can be reissued.
func (n *Network) AddBitcoinNode(name, version string) *BitcoinNode {
	index := n.freeBitcoinIndex()
	if name == "" {
		for i := 1; ; i++ {
			candidate := fmt.Sprintf("backend%d", i)
			if n.Node(candidate) == nil {
				name = candidate
				break
			}
		}
	}
	node := &BitcoinNode{
		CommonNode: CommonNode{
			ID:             n.nextNodeID(),
			Name:           name,
			Implementation: ImplBitcoind,
			Version:        version,
			Status:         StatusStopped,
		},
		RPCUser: DefaultRPCUser,
		RPCPass: DefaultRPCPass,
		Ports:   bitcoinPortsAt(index),
	}
	n.Nodes.Bitcoin = append(n.Nodes.Bitcoin, node)
	return node
}

// AddLightningNode appends a lightning node bound to the named backend.
// An empty backend name leaves the reference unresolved; BackendFor
// falls back to the first bitcoin node at use time.
func (n *Network) AddLightningNode(name string, impl NodeImplementation, version, backend string) (*LightningNode, error) {
	switch impl {
	case ImplLND, ImplCLightning, ImplEclair:
	default:
		return nil, fmt.Errorf("unknown lightning implementation %q", impl)
	}
	index := n.freeLightningIndex(impl)
	node := &LightningNode{
		CommonNode: CommonNode{
			ID:             n.nextNodeID(),
			Name:           name,
			Implementation: impl,
			Version:        version,
			Status:         StatusStopped,
		},
		BackendName: backend,
		Ports:       lightningPortsAt(impl, index),
	}
	n.Nodes.Lightning = append(n.Nodes.Lightning, node)
	return node, nil
}

// RemoveNode deletes the named node from the topology. It reports
// whether a node was removed. Stopping and removing its container is
// the docker controller's job and happens separately.
func (n *Network) RemoveNode(name string) bool {
	for i, b := range n.Nodes.Bitcoin {
		if b.Name == name {
			n.Nodes.Bitcoin = append(n.Nodes.Bitcoin[:i], n.Nodes.Bitcoin[i+1:]...)
			return true
		}
	}
	for i, l := range n.Nodes.Lightning {
		if l.Name == name {
			n.Nodes.Lightning = append(n.Nodes.Lightning[:i], n.Nodes.Lightning[i+1:]...)
			return true
		}
	}
	return false
}

// BitcoinNode finds a bitcoin node by name.
func (n *Network) BitcoinNode(name string) *BitcoinNode {
	for _, b := range n.Nodes.Bitcoin {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// LightningNode finds a lightning node by name.
func (n *Network) LightningNode(name string) *LightningNode {
	for _, l := range n.Nodes.Lightning {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Node finds any node by name.
func (n *Network) Node(name string) *CommonNode {
	if b := n.BitcoinNode(name); b != nil {
		return &b.CommonNode
	}
	if l := n.LightningNode(name); l != nil {
		return &l.CommonNode
	}
	return nil
}

// BackendFor resolves a lightning node's backend reference. A dangling
// or empty reference falls back to the network's first bitcoin node.
// The fallback masks a dangling reference rather than surfacing it;
// kept for compatibility with previously saved networks.
func (n *Network) BackendFor(ln *LightningNode) (*BitcoinNode, error) {
	if b := n.BitcoinNode(ln.BackendName); b != nil {
		return b, nil
	}
	if len(n.Nodes.Bitcoin) > 0 {
		return n.Nodes.Bitcoin[0], nil
	}
	return nil, fmt.Errorf("network %s has no bitcoin nodes to back %s", n.Name, ln.Name)
}

// StartedBitcoinNodes returns the bitcoin nodes currently marked started.
func (n *Network) StartedBitcoinNodes() []*BitcoinNode {
	var out []*BitcoinNode
	for _, b := range n.Nodes.Bitcoin {
		if b.Status.Running() {
			out = append(out, b)
		}
	}
	return out
}

// SetStatus drives the network and every node to the given status.
func (n *Network) SetStatus(s Status) {
	n.Status = s
	for _, node := range n.allNodes() {
		node.Status = s
	}
}

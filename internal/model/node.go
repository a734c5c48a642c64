package model

import "fmt"

// NodeImplementation identifies which software a node runs.
type NodeImplementation string

const (
	ImplBitcoind   NodeImplementation = "bitcoind"
	ImplLND        NodeImplementation = "LND"
	ImplCLightning NodeImplementation = "c-lightning"
	ImplEclair     NodeImplementation = "eclair"
)

// LightningImplementations lists every supported Lightning variant.
var LightningImplementations = []NodeImplementation{ImplLND, ImplCLightning, ImplEclair}

// ParseLightningImplementation maps a user-supplied tag to a known
// Lightning implementation.
func ParseLightningImplementation(s string) (NodeImplementation, error) {
	switch s {
	case "lnd", "LND":
		return ImplLND, nil
	case "c-lightning", "clightning", "core-lightning":
		return ImplCLightning, nil
	case "eclair":
		return ImplEclair, nil
	}
	return "", fmt.Errorf("unknown lightning implementation %q", s)
}

// CommonNode holds the identity shared by every node variant.
// Name is unique within its network and doubles as the compose
// service name, so it must already be docker-safe when set.
type CommonNode struct {
	ID             int                `json:"id"`
	Name           string             `json:"name"`
	Implementation NodeImplementation `json:"implementation"`
	Version        string             `json:"version"`
	Status         Status             `json:"status"`
}

// BitcoinPorts are the host-side ports assigned to a bitcoin node.
type BitcoinPorts struct {
	RPC      int `json:"rpc"`
	P2P      int `json:"p2p"`
	ZMQBlock int `json:"zmqBlock"`
	ZMQTx    int `json:"zmqTx"`
}

// BitcoinNode is a backend chain node.
type BitcoinNode struct {
	CommonNode
	RPCUser string       `json:"rpcUser"`
	RPCPass string       `json:"rpcPass"`
	Ports   BitcoinPorts `json:"ports"`
}

// LightningPorts are the host-side ports assigned to a lightning node.
// Not every implementation uses all of them; unused ports stay zero.
type LightningPorts struct {
	REST int `json:"rest"`
	GRPC int `json:"grpc,omitempty"`
	P2P  int `json:"p2p"`
}

// LightningNode is a Lightning implementation node. BackendName refers
// to a bitcoin node in the same network by name; resolution (including
// the first-node fallback for dangling references) happens in
// Network.BackendFor.
type LightningNode struct {
	CommonNode
	BackendName string         `json:"backendName"`
	Ports       LightningPorts `json:"ports"`
}

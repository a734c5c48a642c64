package compose

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/zackypick/polar/internal/model"
)

// Builder produces compose documents for networks. UID and GID are
// injected into every service so containers chown their data
// directories back to the invoking host user instead of root.
type Builder struct {
	UID string
	GID string
}

// NewBuilder creates a Builder for the current host user. On windows
// the ids stay at the image defaults.
func NewBuilder() *Builder {
	b := &Builder{UID: "1000", GID: "1000"}
	if runtime.GOOS != "windows" {
		b.UID = strconv.Itoa(os.Getuid())
		b.GID = strconv.Itoa(os.Getgid())
	}
	return b
}

// Build produces the full document for a network: one service per
// node in both sequences. An unknown lightning implementation is a
// contract violation by the caller and fails the whole build.
func (b *Builder) Build(n *model.Network) (*File, error) {
	f := &File{
		Name:     fmt.Sprintf("polar-%s", n.Name),
		Services: make(map[string]Service, len(n.Nodes.Bitcoin)+len(n.Nodes.Lightning)),
	}
	for _, node := range n.Nodes.Bitcoin {
		f.Services[node.Name] = b.bitcoindService(n, node)
	}
	for _, node := range n.Nodes.Lightning {
		backend, err := n.BackendFor(node)
		if err != nil {
			return nil, err
		}
		svc, err := b.lightningService(n, node, backend)
		if err != nil {
			return nil, err
		}
		f.Services[node.Name] = svc
	}
	return f, nil
}

func (b *Builder) common(n *model.Network, node *model.CommonNode, image string) Service {
	return Service{
		Image:         fmt.Sprintf("polarlightning/%s:%s", image, node.Version),
		ContainerName: fmt.Sprintf("polar-%s-%s", shortID(n.ID), node.Name),
		Hostname:      node.Name,
		Environment:   map[string]string{"USERID": b.UID, "GROUPID": b.GID},
		Restart:       "always",
	}
}

func (b *Builder) bitcoindService(n *model.Network, node *model.BitcoinNode) Service {
	svc := b.common(n, &node.CommonNode, "bitcoind")
	svc.Command = joinFlags(
		"bitcoind",
		"-server=1",
		"-regtest=1",
		fmt.Sprintf("-rpcauth=%s", model.RPCAuth),
		"-debug=1",
		fmt.Sprintf("-zmqpubrawblock=tcp://0.0.0.0:%d", model.ContainerBitcoindZMQBlock),
		fmt.Sprintf("-zmqpubrawtx=tcp://0.0.0.0:%d", model.ContainerBitcoindZMQTx),
		"-txindex=1",
		"-dnsseed=0",
		"-upnp=0",
		"-rpcbind=0.0.0.0",
		"-rpcallowip=0.0.0.0/0",
		fmt.Sprintf("-rpcport=%d", model.ContainerBitcoindRPC),
		"-listen=1",
		"-listenonion=0",
		"-fallbackfee=0.0002",
	)
	svc.Volumes = []string{
		fmt.Sprintf("./volumes/bitcoind/%s:/home/bitcoin/.bitcoin", node.Name),
	}
	svc.Ports = []string{
		portMap(node.Ports.RPC, model.ContainerBitcoindRPC),
		portMap(node.Ports.P2P, model.ContainerBitcoindP2P),
		portMap(node.Ports.ZMQBlock, model.ContainerBitcoindZMQBlock),
		portMap(node.Ports.ZMQTx, model.ContainerBitcoindZMQTx),
	}
	return svc
}

func (b *Builder) lightningService(n *model.Network, node *model.LightningNode, backend *model.BitcoinNode) (Service, error) {
	switch node.Implementation {
	case model.ImplLND:
		return b.lndService(n, node, backend), nil
	case model.ImplCLightning:
		return b.clightningService(n, node, backend), nil
	case model.ImplEclair:
		return b.eclairService(n, node, backend), nil
	}
	return Service{}, fmt.Errorf("no service template for implementation %q", node.Implementation)
}

func (b *Builder) lndService(n *model.Network, node *model.LightningNode, backend *model.BitcoinNode) Service {
	svc := b.common(n, &node.CommonNode, "lnd")
	svc.Command = joinFlags(
		"lnd",
		"--noseedbackup",
		"--trickledelay=5000",
		fmt.Sprintf("--alias=%s", node.Name),
		fmt.Sprintf("--externalip=%s", node.Name),
		fmt.Sprintf("--tlsextradomain=%s", node.Name),
		fmt.Sprintf("--listen=0.0.0.0:%d", model.ContainerLNDP2P),
		fmt.Sprintf("--rpclisten=0.0.0.0:%d", model.ContainerLNDGRPC),
		fmt.Sprintf("--restlisten=0.0.0.0:%d", model.ContainerLNDREST),
		"--bitcoin.active",
		"--bitcoin.regtest",
		"--bitcoin.node=bitcoind",
		fmt.Sprintf("--bitcoind.rpchost=%s", backend.Name),
		fmt.Sprintf("--bitcoind.rpcuser=%s", backend.RPCUser),
		fmt.Sprintf("--bitcoind.rpcpass=%s", backend.RPCPass),
		fmt.Sprintf("--bitcoind.zmqpubrawblock=tcp://%s:%d", backend.Name, model.ContainerBitcoindZMQBlock),
		fmt.Sprintf("--bitcoind.zmqpubrawtx=tcp://%s:%d", backend.Name, model.ContainerBitcoindZMQTx),
	)
	svc.Volumes = []string{
		fmt.Sprintf("./volumes/lnd/%s:/home/lnd/.lnd", node.Name),
	}
	svc.Ports = []string{
		portMap(node.Ports.REST, model.ContainerLNDREST),
		portMap(node.Ports.GRPC, model.ContainerLNDGRPC),
		portMap(node.Ports.P2P, model.ContainerLNDP2P),
	}
	return svc
}

func (b *Builder) clightningService(n *model.Network, node *model.LightningNode, backend *model.BitcoinNode) Service {
	svc := b.common(n, &node.CommonNode, "clightning")
	svc.Command = joinFlags(
		"lightningd",
		fmt.Sprintf("--alias=%s", node.Name),
		fmt.Sprintf("--addr=0.0.0.0:%d", model.ContainerCLightningP2P),
		"--network=regtest",
		fmt.Sprintf("--bitcoin-rpcuser=%s", backend.RPCUser),
		fmt.Sprintf("--bitcoin-rpcpassword=%s", backend.RPCPass),
		fmt.Sprintf("--bitcoin-rpcconnect=%s", backend.Name),
		fmt.Sprintf("--bitcoin-rpcport=%d", model.ContainerBitcoindRPC),
		"--log-level=debug",
		"--dev-bitcoind-poll=2",
		"--dev-fast-gossip",
	)
	svc.Volumes = []string{
		fmt.Sprintf("./volumes/c-lightning/%s/lightningd:/home/clightning/.lightning", node.Name),
		fmt.Sprintf("./volumes/c-lightning/%s/rest-api:/opt/c-lightning-REST/certs", node.Name),
	}
	svc.Ports = []string{
		portMap(node.Ports.REST, model.ContainerCLightningREST),
		portMap(node.Ports.P2P, model.ContainerCLightningP2P),
	}
	return svc
}

func (b *Builder) eclairService(n *model.Network, node *model.LightningNode, backend *model.BitcoinNode) Service {
	svc := b.common(n, &node.CommonNode, "eclair")
	svc.Command = joinFlags(
		"polar-eclair",
		fmt.Sprintf("--node-alias=%s", node.Name),
		fmt.Sprintf("--server.port=%d", model.ContainerEclairP2P),
		"--api.enabled=true",
		"--api.binding-ip=0.0.0.0",
		fmt.Sprintf("--api.port=%d", model.ContainerEclairREST),
		fmt.Sprintf("--api.password=%s", backend.RPCPass),
		"--chain=regtest",
		fmt.Sprintf("--bitcoind.host=%s", backend.Name),
		fmt.Sprintf("--bitcoind.rpcport=%d", model.ContainerBitcoindRPC),
		fmt.Sprintf("--bitcoind.rpcuser=%s", backend.RPCUser),
		fmt.Sprintf("--bitcoind.rpcpassword=%s", backend.RPCPass),
		fmt.Sprintf("--bitcoind.zmqblock=tcp://%s:%d", backend.Name, model.ContainerBitcoindZMQBlock),
		fmt.Sprintf("--bitcoind.zmqtx=tcp://%s:%d", backend.Name, model.ContainerBitcoindZMQTx),
		"--on-chain-fees.feerate-tolerance.ratio-low=0.00001",
		"--on-chain-fees.feerate-tolerance.ratio-high=10000.0",
	)
	svc.Volumes = []string{
		fmt.Sprintf("./volumes/eclair/%s:/home/eclair/.eclair", node.Name),
	}
	svc.Ports = []string{
		portMap(node.Ports.REST, model.ContainerEclairREST),
		portMap(node.Ports.P2P, model.ContainerEclairP2P),
	}
	return svc
}

func portMap(host, container int) string {
	return fmt.Sprintf("%d:%d", host, container)
}

func joinFlags(parts ...string) string {
	return strings.Join(parts, " ")
}

// shortID trims a uuid network id down to its first segment for
// container names. Non-uuid ids pass through unchanged.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

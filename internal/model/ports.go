package model

// Host-side base ports per implementation. A node's host port is the
// base plus its port-block index. Indexes are handed out lowest-free
// first among nodes of the same implementation, so every node in a
// network gets a distinct, predictable port and removing a node frees
// its block for the next one added.
const (
	BaseBitcoindRPC      = 18443
	BaseBitcoindP2P      = 19444
	BaseBitcoindZMQBlock = 28334
	BaseBitcoindZMQTx    = 29335

	BaseLNDGRPC = 10001
	BaseLNDREST = 8081
	BaseLNDP2P  = 9735

	BaseCLightningREST = 8181
	BaseCLightningP2P  = 9835

	BaseEclairREST = 8281
	BaseEclairP2P  = 9935
)

// Container-internal ports, fixed by each implementation's defaults.
const (
	ContainerBitcoindRPC      = 18443
	ContainerBitcoindP2P      = 18444
	ContainerBitcoindZMQBlock = 28334
	ContainerBitcoindZMQTx    = 28335

	ContainerLNDGRPC = 10009
	ContainerLNDREST = 8080
	ContainerLNDP2P  = 9735

	ContainerCLightningREST = 8080
	ContainerCLightningP2P  = 9735

	ContainerEclairREST = 8080
	ContainerEclairP2P  = 9735
)

// bitcoinIndexOf recovers the port-block index a node occupies.
func bitcoinIndexOf(p BitcoinPorts) int {
	return p.RPC - BaseBitcoindRPC
}

// lightningIndexOf recovers the port-block index a node occupies.
func lightningIndexOf(impl NodeImplementation, p LightningPorts) int {
	switch impl {
	case ImplLND:
		return p.REST - BaseLNDREST
	case ImplCLightning:
		return p.REST - BaseCLightningREST
	case ImplEclair:
		return p.REST - BaseEclairREST
	}
	return 0
}

func bitcoinPortsAt(index int) BitcoinPorts {
	return BitcoinPorts{
		RPC:      BaseBitcoindRPC + index,
		P2P:      BaseBitcoindP2P + index,
		ZMQBlock: BaseBitcoindZMQBlock + index,
		ZMQTx:    BaseBitcoindZMQTx + index,
	}
}

func lightningPortsAt(impl NodeImplementation, index int) LightningPorts {
	switch impl {
	case ImplLND:
		return LightningPorts{
			REST: BaseLNDREST + index,
			GRPC: BaseLNDGRPC + index,
			P2P:  BaseLNDP2P + index,
		}
	case ImplCLightning:
		return LightningPorts{
			REST: BaseCLightningREST + index,
			P2P:  BaseCLightningP2P + index,
		}
	case ImplEclair:
		return LightningPorts{
			REST: BaseEclairREST + index,
			P2P:  BaseEclairP2P + index,
		}
	}
	return LightningPorts{}
}

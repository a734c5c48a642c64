package lightning

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeInfo is the implementation-independent shape of a node's
// identity and sync state.
type NodeInfo struct {
	Pubkey           string
	Alias            string
	RPCUrl           string // pubkey@host:port, reachable inside the docker network
	Synced           bool
	BlockHeight      int
	ActiveChannels   int
	PendingChannels  int
	InactiveChannels int
}

// Balances is the on-chain wallet balance in satoshis.
type Balances struct {
	Total       int64
	Confirmed   int64
	Unconfirmed int64
}

// Peer is a connected peer.
type Peer struct {
	Pubkey  string
	Address string
}

// Channel is one payment channel, open or pending.
type Channel struct {
	Pubkey        string
	ChannelPoint  string
	Capacity      int64
	LocalBalance  int64
	RemoteBalance int64
	Status        string
	Private       bool
}

// ChannelPoint identifies a channel by its funding output.
type ChannelPoint struct {
	TxID  string
	Index int
}

func (p ChannelPoint) String() string {
	return fmt.Sprintf("%s:%d", p.TxID, p.Index)
}

// ParseChannelPoint parses the txid:index form.
func ParseChannelPoint(s string) (ChannelPoint, error) {
	txid, idx, ok := strings.Cut(s, ":")
	if !ok || txid == "" {
		return ChannelPoint{}, fmt.Errorf("invalid channel point %q", s)
	}
	index, err := strconv.Atoi(idx)
	if err != nil {
		return ChannelPoint{}, fmt.Errorf("invalid channel point %q", s)
	}
	return ChannelPoint{TxID: txid, Index: index}, nil
}

// PaymentReceipt is the proof of a settled invoice.
type PaymentReceipt struct {
	Preimage    string
	Amount      int64
	Destination string
}

// ParseRPCUrl splits a pubkey@host:port peering url.
func ParseRPCUrl(url string) (pubkey, host string, err error) {
	pubkey, host, ok := strings.Cut(url, "@")
	if !ok || pubkey == "" || host == "" {
		return "", "", fmt.Errorf("invalid rpc url %q, want pubkey@host", url)
	}
	return pubkey, host, nil
}

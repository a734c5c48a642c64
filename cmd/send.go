package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zackypick/polar/internal/ui"
)

var (
	sendNode     string
	sendAutoMine bool
)

var sendCmd = &cobra.Command{
	Use:   "send <network> <address> <amount>",
	Short: "Send coins from a backend wallet",
	Args:  cobra.ExactArgs(3),
	RunE:  runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendNode, "node", "", "bitcoin node to send from (default: first)")
	sendCmd.Flags().BoolVar(&sendAutoMine, "auto-mine", true, "mine confirmations after sending")
}

func runSend(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	doc, err := a.store.Load()
	if err != nil {
		return err
	}
	n, err := a.network(doc, args[0])
	if err != nil {
		return err
	}

	amount, err := strconv.ParseFloat(args[2], 64)
	if err != nil || amount <= 0 {
		return fmt.Errorf("invalid amount %q", args[2])
	}

	node, err := pickBitcoinNode(n, sendNode)
	if err != nil {
		return err
	}
	txid, err := a.bitcoin.SendFunds(cmd.Context(), n, node, args[1], amount, sendAutoMine)
	if err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Sent %s BTC from %s", args[2], node.Name))
	fmt.Println(ui.Hint("txid: " + txid))
	return nil
}

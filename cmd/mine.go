package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zackypick/polar/internal/model"
	"github.com/zackypick/polar/internal/ui"
)

var mineNode string

var mineCmd = &cobra.Command{
	Use:   "mine <network> [blocks]",
	Short: "Mine blocks on a network's backend",
	Long: `Mine blocks on one bitcoin node and wait for every running backend to
catch up. Defaults to one block.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMine,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVar(&mineNode, "node", "", "bitcoin node to mine on (default: first)")
}

func runMine(cmd *cobra.Command, args []string) error {
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

	blocks := 1
	if len(args) > 1 {
		if blocks, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid block count %q", args[1])
		}
	}

	node, err := pickBitcoinNode(n, mineNode)
	if err != nil {
		return err
	}
	if err := a.bitcoin.Mine(cmd.Context(), n, node, blocks); err != nil {
		return err
	}

	if state := a.bitcoin.State(n, node.Name); state != nil {
		ui.Success(fmt.Sprintf("Mined %d blocks on %s (height %d)", blocks, node.Name, state.Chain.Blocks))
	} else {
		ui.Success(fmt.Sprintf("Mined %d blocks on %s", blocks, node.Name))
	}
	return nil
}

func pickBitcoinNode(n *model.Network, name string) (*model.BitcoinNode, error) {
	if name == "" {
		if len(n.Nodes.Bitcoin) == 0 {
			return nil, fmt.Errorf("network %s has no bitcoin nodes", n.Name)
		}
		return n.Nodes.Bitcoin[0], nil
	}
	node := n.BitcoinNode(name)
	if node == nil {
		return nil, fmt.Errorf("bitcoin node %q not found in %s", name, n.Name)
	}
	return node, nil
}

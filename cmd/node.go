package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zackypick/polar/internal/model"
	"github.com/zackypick/polar/internal/store"
	"github.com/zackypick/polar/internal/ui"
	"github.com/zackypick/polar/internal/util"
)

var (
	nodeImpl    string
	nodeVersion string
	nodeBackend string
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Manage individual nodes of a network",
}

var nodeAddCmd = &cobra.Command{
	Use:   "add <network> <name>",
	Short: "Add a node to a network",
	Args:  cobra.ExactArgs(2),
	RunE:  runNodeAdd,
}

var nodeRemoveCmd = &cobra.Command{
	Use:     "remove <network> <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a node and its container",
	Args:    cobra.ExactArgs(2),
	RunE:    runNodeRemove,
}

var nodeStartCmd = &cobra.Command{
	Use:   "start <network> <name>",
	Short: "Start a single node",
	Args:  cobra.ExactArgs(2),
	RunE:  runNodeStart,
}

var nodeStopCmd = &cobra.Command{
	Use:   "stop <network> <name>",
	Short: "Stop a single node",
	Args:  cobra.ExactArgs(2),
	RunE:  runNodeStop,
}

func init() {
	rootCmd.AddCommand(nodeCmd)
	nodeCmd.AddCommand(nodeAddCmd, nodeRemoveCmd, nodeStartCmd, nodeStopCmd)

	nodeAddCmd.Flags().StringVar(&nodeImpl, "impl", string(model.ImplLND), "implementation: bitcoind, LND, c-lightning, eclair")
	nodeAddCmd.Flags().StringVar(&nodeVersion, "version", "", "image version (default: latest known)")
	nodeAddCmd.Flags().StringVar(&nodeBackend, "backend", "", "bitcoin node backing a lightning node (default: first)")
}

func runNodeAdd(cmd *cobra.Command, args []string) error {
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

	name := util.SafeName(args[1])
	if n.Node(name) != nil {
		return fmt.Errorf("node %q already exists in %s", name, n.Name)
	}

	if nodeImpl == string(model.ImplBitcoind) {
		version := nodeVersion
		if version == "" {
			version = a.versions.Latest(model.ImplBitcoind)
		}
		n.AddBitcoinNode(name, version)
	} else {
		impl, err := model.ParseLightningImplementation(nodeImpl)
		if err != nil {
			return err
		}
		version := nodeVersion
		if version == "" {
			version = a.versions.Latest(impl)
		}
		if nodeBackend != "" {
			if n.BitcoinNode(nodeBackend) == nil {
				return fmt.Errorf("backend %q not found in %s", nodeBackend, n.Name)
			}
		}
		ln, err := n.AddLightningNode(name, impl, version, nodeBackend)
		if err != nil {
			return err
		}
		b, err := n.BackendFor(ln)
		if err != nil {
			return err
		}
		if err := a.versions.CheckCompatibility(impl, version, b.Version); err != nil {
			n.RemoveNode(name)
			return err
		}
	}

	return finishTopologyChange(a, doc, n, fmt.Sprintf("Added %s to %s", name, n.Name))
}

func runNodeRemove(cmd *cobra.Command, args []string) error {
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

	name := args[1]
	node := n.Node(name)
	if node == nil {
		return fmt.Errorf("node %q not found in %s", name, n.Name)
	}

	// compose stop leaves the container on disk, so the rm must run
	// even for a stopped node; once the service drops out of the
	// compose file nothing else would ever reap it.
	if err := a.docker.RemoveNode(cmd.Context(), n, name); err != nil {
		return err
	}
	n.RemoveNode(name)
	a.bitcoin.Forget(n, name)

	return finishTopologyChange(a, doc, n, fmt.Sprintf("Removed %s from %s", name, n.Name))
}

func runNodeStart(cmd *cobra.Command, args []string) error {
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

	startErr := a.docker.StartNode(cmd.Context(), n, args[1])
	if err := a.store.Save(doc); err != nil {
		return err
	}
	if startErr != nil {
		return startErr
	}
	ui.Success(fmt.Sprintf("Started %s", args[1]))
	return nil
}

func runNodeStop(cmd *cobra.Command, args []string) error {
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

	stopErr := a.docker.StopNode(cmd.Context(), n, args[1])
	a.bitcoin.Forget(n, args[1])
	if err := a.store.Save(doc); err != nil {
		return err
	}
	if stopErr != nil {
		return stopErr
	}
	ui.Success(fmt.Sprintf("Stopped %s", args[1]))
	return nil
}

// finishTopologyChange rewrites the compose document and persists the
// topology after a node add or remove.
func finishTopologyChange(a *app, doc *store.NetworksFile, n *model.Network, msg string) error {
	if err := a.docker.WriteComposeFile(n); err != nil {
		return err
	}
	if err := a.store.Save(doc); err != nil {
		return err
	}
	ui.Success(msg)
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zackypick/polar/internal/ui"
)

var stopCmd = &cobra.Command{
	Use:   "stop <network>",
	Short: "Stop all containers of a network",
	Args:  cobra.ExactArgs(1),
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
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

	ui.StepStarted("stopping " + n.Name)
	stopErr := a.docker.StopNetwork(cmd.Context(), n)
	a.bitcoin.ClearNetwork(n)

	if err := a.store.Save(doc); err != nil {
		return err
	}
	if stopErr != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to stop "+n.Name, stopErr.Error(), ""))
		return stopErr
	}
	ui.StepDone("stopped "+n.Name, "")
	return nil
}

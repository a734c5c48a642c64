package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zackypick/polar/internal/ui"
)

var startCmd = &cobra.Command{
	Use:   "start <network>",
	Short: "Start all containers of a network",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
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

	ui.StepStarted("starting " + n.Name)
	startErr := a.docker.StartNetwork(cmd.Context(), n)

	// The lifecycle call mutates node statuses either way; persist
	// what actually happened before reporting it.
	if err := a.store.Save(doc); err != nil {
		return err
	}
	if startErr != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to start "+n.Name, startErr.Error(),
			"check that docker is running and the images are pulled (polar doctor)"))
		return startErr
	}
	ui.StepDone("started "+n.Name, "")
	return nil
}

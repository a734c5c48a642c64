package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zackypick/polar/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List networks and their nodes",
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	doc, err := a.store.Load()
	if err != nil {
		return err
	}

	if len(doc.Networks) == 0 {
		fmt.Println(ui.Hint("No networks yet. Create one with: polar create"))
		return nil
	}

	for _, n := range doc.Networks {
		fmt.Printf("%s  %s\n", ui.Bold(n.Name), ui.StatusBadge(n.Status))
		for _, b := range n.Nodes.Bitcoin {
			fmt.Printf("  %-12s %-12s %-8s %s\n", b.Name, b.Implementation, b.Version, ui.StatusBadge(b.Status))
		}
		for _, l := range n.Nodes.Lightning {
			fmt.Printf("  %-12s %-12s %-8s %s\n", l.Name, l.Implementation, l.Version, ui.StatusBadge(l.Status))
		}
	}
	return nil
}

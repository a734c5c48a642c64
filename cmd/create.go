package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zackypick/polar/internal/model"
	"github.com/zackypick/polar/internal/ui"
	"github.com/zackypick/polar/internal/util"
	"github.com/zackypick/polar/internal/wizard"
)

var (
	createLND        int
	createCLightning int
	createEclair     int
	createBitcoind   int
	createNoWizard   bool
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new network",
	Long: `Create a network and write its docker compose file. Without flags an
interactive wizard asks for the topology; with --no-wizard the node
count flags are used as given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().IntVar(&createLND, "lnd", 2, "number of LND nodes")
	createCmd.Flags().IntVar(&createCLightning, "clightning", 0, "number of Core Lightning nodes")
	createCmd.Flags().IntVar(&createEclair, "eclair", 0, "number of Eclair nodes")
	createCmd.Flags().IntVar(&createBitcoind, "bitcoind", 1, "number of Bitcoin Core nodes")
	createCmd.Flags().BoolVar(&createNoWizard, "no-wizard", false, "build the topology from flags without prompting")
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	answers := &wizard.Answers{
		Name:            name,
		LNDNodes:        createLND,
		CLightningNodes: createCLightning,
		EclairNodes:     createEclair,
		BitcoinNodes:    createBitcoind,
	}
	if !createNoWizard {
		if answers, err = wizard.Run(name); err != nil {
			return err
		}
	}
	answers.Name = util.SafeName(answers.Name)

	doc, err := a.store.Load()
	if err != nil {
		return err
	}
	if n, _ := a.network(doc, answers.Name); n != nil {
		return fmt.Errorf("network %q already exists", answers.Name)
	}

	id := uuid.NewString()
	path := filepath.Join(a.cfg.NetworksDir(), id)
	n := model.NewNetwork(id, answers.Name, path)
	if err := wizard.Apply(n, answers, a.versions); err != nil {
		return err
	}

	if err := a.docker.WriteComposeFile(n); err != nil {
		return err
	}

	doc.Networks = append(doc.Networks, n)
	if err := a.store.Save(doc); err != nil {
		return err
	}

	ui.Success(fmt.Sprintf("Created network %s with %d nodes", ui.Bold(n.Name), len(n.Nodes.Bitcoin)+len(n.Nodes.Lightning)))
	fmt.Println(ui.Hint(fmt.Sprintf("Start it with: polar start %s", n.Name)))
	return nil
}

// Package wizard is the interactive network creation flow. The form
// collects answers, Apply turns them into a topology; Apply is a pure
// function so it can be driven from flags as well as from the form.
package wizard

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/zackypick/polar/internal/model"
	"github.com/zackypick/polar/internal/repo"
)

// Answers holds everything needed to build a new network.
type Answers struct {
	Name            string
	LNDNodes        int
	CLightningNodes int
	EclairNodes     int
	BitcoinNodes    int
}

// Run executes the interactive form and returns the user's answers.
func Run(defaultName string) (*Answers, error) {
	answers := &Answers{
		Name:         defaultName,
		LNDNodes:     2,
		BitcoinNodes: 1,
	}

	lnd := fmt.Sprintf("%d", answers.LNDNodes)
	cln := "0"
	eclair := "0"
	bitcoind := fmt.Sprintf("%d", answers.BitcoinNodes)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Network name").
				Description("Lowercase letters, digits and dashes.").
				Value(&answers.Name),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("LND nodes").
				Value(&lnd),
			huh.NewInput().
				Title("Core Lightning nodes").
				Value(&cln),
			huh.NewInput().
				Title("Eclair nodes").
				Value(&eclair),
			huh.NewInput().
				Title("Bitcoin Core nodes").
				Description("At least one is needed to back the lightning nodes.").
				Value(&bitcoind),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	var err error
	if answers.LNDNodes, err = parseCount("LND nodes", lnd); err != nil {
		return nil, err
	}
	if answers.CLightningNodes, err = parseCount("Core Lightning nodes", cln); err != nil {
		return nil, err
	}
	if answers.EclairNodes, err = parseCount("Eclair nodes", eclair); err != nil {
		return nil, err
	}
	if answers.BitcoinNodes, err = parseCount("Bitcoin Core nodes", bitcoind); err != nil {
		return nil, err
	}
	return answers, nil
}

func parseCount(field, value string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n < 0 {
		return 0, fmt.Errorf("%s: %q is not a valid count", field, value)
	}
	return n, nil
}

// nodeNames are handed out to lightning nodes in order; overflow nodes
// get a numbered fallback name.
var nodeNames = []string{
	"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi",
	"ivan", "judy", "mallory", "niaj", "olivia", "peggy", "rupert",
}

// Apply populates a network from the answers using the latest known
// version of each implementation. At least one bitcoin node is always
// added so the lightning nodes have a backend.
func Apply(n *model.Network, answers *Answers, versions repo.State) error {
	backends := answers.BitcoinNodes
	if backends < 1 {
		backends = 1
	}
	for i := 0; i < backends; i++ {
		n.AddBitcoinNode("", versions.Latest(model.ImplBitcoind))
	}

	next := 0
	name := func() string {
		defer func() { next++ }()
		if next < len(nodeNames) {
			return nodeNames[next]
		}
		return fmt.Sprintf("node%d", next+1)
	}

	add := func(count int, impl model.NodeImplementation) error {
		for i := 0; i < count; i++ {
			if _, err := n.AddLightningNode(name(), impl, versions.Latest(impl), ""); err != nil {
				return err
			}
		}
		return nil
	}
	if err := add(answers.LNDNodes, model.ImplLND); err != nil {
		return err
	}
	if err := add(answers.CLightningNodes, model.ImplCLightning); err != nil {
		return err
	}
	if err := add(answers.EclairNodes, model.ImplEclair); err != nil {
		return err
	}
	return n.Validate()
}

package store

import (
	"fmt"

	"github.com/zackypick/polar/internal/model"
)

// A migration upgrades a document from one schema version to the next.
// Steps must be pure shape rewrites with no I/O so they can run in
// sequence and be tested in isolation.
type migration struct {
	from  int
	note  string
	apply func(f *NetworksFile)
}

var migrations = []migration{
	{from: 1, note: "assign zmq ports to bitcoin nodes", apply: migrateZMQPorts},
	{from: 2, note: "backfill lightning backend references", apply: migrateBackendRefs},
}

// Migrate upgrades f in place to CurrentVersion. A version newer than
// this build knows is an error: writing it back would risk silently
// destroying data a newer version put there.
func Migrate(f *NetworksFile) error {
	if f.Version > CurrentVersion {
		return fmt.Errorf("networks file version %d is newer than supported version %d", f.Version, CurrentVersion)
	}
	for f.Version < CurrentVersion {
		step, ok := stepFrom(f.Version)
		if !ok {
			return fmt.Errorf("no migration from networks file version %d", f.Version)
		}
		step.apply(f)
		f.Version++
	}
	return nil
}

func stepFrom(version int) (migration, bool) {
	for _, m := range migrations {
		if m.from == version {
			return m, true
		}
	}
	return migration{}, false
}

// v1 predates zmq support; nodes saved then have zero zmq ports.
func migrateZMQPorts(f *NetworksFile) {
	for _, n := range f.Networks {
		for i, b := range n.Nodes.Bitcoin {
			if b.Ports.ZMQBlock == 0 {
				b.Ports.ZMQBlock = model.BaseBitcoindZMQBlock + i
			}
			if b.Ports.ZMQTx == 0 {
				b.Ports.ZMQTx = model.BaseBitcoindZMQTx + i
			}
		}
	}
}

// v2 allowed lightning nodes with no recorded backend; pin them to the
// network's first bitcoin node so the reference is explicit on disk.
func migrateBackendRefs(f *NetworksFile) {
	for _, n := range f.Networks {
		if len(n.Nodes.Bitcoin) == 0 {
			continue
		}
		first := n.Nodes.Bitcoin[0].Name
		for _, l := range n.Nodes.Lightning {
			if l.BackendName == "" {
				l.BackendName = first
			}
		}
	}
}

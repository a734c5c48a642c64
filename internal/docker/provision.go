package docker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zackypick/polar/internal/model"
)

// EnsureDirs creates every node's host-side data directory before the
// container runtime gets a chance to. A directory created by the
// runtime on first mount is owned by the container's internal user
// (root on most Linux images), which locks the host process out of it;
// pre-creating under the invoking user avoids that entirely.
// Creating an already-existing directory is not an error.
func EnsureDirs(n *model.Network) error {
	for _, b := range n.Nodes.Bitcoin {
		if err := EnsureNodeDirs(n, &b.CommonNode); err != nil {
			return err
		}
	}
	for _, l := range n.Nodes.Lightning {
		if err := EnsureNodeDirs(n, &l.CommonNode); err != nil {
			return err
		}
	}
	return nil
}

// EnsureNodeDirs creates the data directories for a single node.
// c-lightning splits its storage into a daemon directory and a REST
// certificate directory, both of which must exist ahead of time.
func EnsureNodeDirs(n *model.Network, node *model.CommonNode) error {
	base := NodeDataDir(n, node)
	dirs := []string{base}
	if node.Implementation == model.ImplCLightning {
		dirs = []string{
			filepath.Join(base, "lightningd"),
			filepath.Join(base, "rest-api"),
		}
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("provisioning %s: %w", dir, err)
		}
	}
	return nil
}

// NodeDataDir is the host path mounted into the node's container:
// <network-root>/volumes/<implementation>/<node-name>.
func NodeDataDir(n *model.Network, node *model.CommonNode) string {
	return filepath.Join(n.Path, "volumes", strings.ToLower(string(node.Implementation)), node.Name)
}

// Package docker is the only place that talks to the container
// runtime. It drives docker and the compose tool through a command
// runner, normalizes their failures, and keeps node status fields in
// step with what it did.
package docker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/zackypick/polar/internal/compose"
	"github.com/zackypick/polar/internal/config"
	"github.com/zackypick/polar/internal/model"
)

// Controller issues container lifecycle operations for networks.
// Callers must not run two operations against the same network
// concurrently; the controller does not lock per network.
type Controller struct {
	cfg     *config.Config
	builder *compose.Builder
	runner  CommandRunner
	log     *zap.Logger
}

// NewController wires a controller onto a runner. The config is the
// process-wide set-once source for the docker socket and compose
// executable overrides.
func NewController(cfg *config.Config, builder *compose.Builder, runner CommandRunner, log *zap.Logger) *Controller {
	return &Controller{cfg: cfg, builder: builder, runner: runner, log: log}
}

func (c *Controller) env() []string {
	if c.cfg.Docker.Socket != "" {
		return []string{"DOCKER_HOST=" + c.cfg.Docker.Socket}
	}
	return nil
}

// run executes a command, strips color codes from both channels, and
// on failure surfaces the stderr text as the single error message.
func (c *Controller) run(ctx context.Context, dir, name string, args ...string) (string, error) {
	c.log.Debug("exec", zap.String("cmd", name), zap.Strings("args", args), zap.String("dir", dir))
	stdout, stderr, err := c.runner.Run(ctx, dir, c.env(), name, args...)
	stdout = StripANSI(stdout)
	stderr = StripANSI(stderr)
	if err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		c.log.Debug("exec failed", zap.String("cmd", name), zap.String("stderr", msg))
		return "", &CommandError{Message: msg}
	}
	return stdout, nil
}

// composeRun executes the compose tool against a network's document.
// The standalone binary from config wins over the docker plugin.
func (c *Controller) composeRun(ctx context.Context, n *model.Network, args ...string) (string, error) {
	name := "docker"
	full := []string{"compose"}
	if c.cfg.Docker.ComposePath != "" {
		name = c.cfg.Docker.ComposePath
		full = nil
	}
	full = append(full, "-f", compose.FileName)
	full = append(full, args...)
	return c.run(ctx, n.Path, name, full...)
}

// DetectVersions probes the docker engine and the compose tool
// independently. Probe failures are swallowed into empty strings
// unless strict is set; installation diagnostics want the failure,
// the rest of the app just wants whatever is known.
func (c *Controller) DetectVersions(ctx context.Context, strict bool) (dockerVersion, composeVersion string, err error) {
	dockerVersion, derr := c.run(ctx, "", "docker", "version", "--format", "{{.Server.Version}}")
	if derr != nil {
		if strict {
			return "", "", derr
		}
		dockerVersion = ""
	}
	dockerVersion = strings.TrimSpace(dockerVersion)

	name := "docker"
	args := []string{"compose", "version", "--short"}
	if c.cfg.Docker.ComposePath != "" {
		name = c.cfg.Docker.ComposePath
		args = []string{"version", "--short"}
	}
	composeVersion, cerr := c.run(ctx, "", name, args...)
	if cerr != nil {
		if strict {
			return "", "", cerr
		}
		composeVersion = ""
	}
	return dockerVersion, strings.TrimSpace(composeVersion), nil
}

// PulledImages returns the de-duplicated locally available image tags.
// Untagged images are excluded. Absence of images is a valid state, so
// any failure yields an empty result instead of an error.
func (c *Controller) PulledImages(ctx context.Context) []string {
	out, err := c.run(ctx, "", "docker", "images", "--format", "{{.Repository}}:{{.Tag}}")
	if err != nil {
		c.log.Debug("listing images failed", zap.Error(err))
		return nil
	}
	seen := make(map[string]bool)
	var images []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "<none>") || seen[line] {
			continue
		}
		seen[line] = true
		images = append(images, line)
	}
	return images
}

// WriteComposeFile regenerates and writes the network's compose
// document. Building is pure; this is the one place the result
// reaches disk.
func (c *Controller) WriteComposeFile(n *model.Network) error {
	f, err := c.builder.Build(n)
	if err != nil {
		return err
	}
	data, err := f.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(n.Path, 0o755); err != nil {
		return fmt.Errorf("creating network dir: %w", err)
	}
	return os.WriteFile(compose.FilePath(n.Path), data, 0o644)
}

// StartNetwork provisions directories, writes the compose document,
// and brings the whole network up.
func (c *Controller) StartNetwork(ctx context.Context, n *model.Network) error {
	n.SetStatus(model.StatusStarting)
	if err := EnsureDirs(n); err != nil {
		n.SetStatus(model.StatusError)
		return err
	}
	if err := c.WriteComposeFile(n); err != nil {
		n.SetStatus(model.StatusError)
		return err
	}
	if _, err := c.composeRun(ctx, n, "up", "-d"); err != nil {
		n.SetStatus(model.StatusError)
		return err
	}
	n.SetStatus(model.StatusStarted)
	c.log.Info("network started", zap.String("network", n.Name))
	return nil
}

// StopNetwork brings the whole network down.
func (c *Controller) StopNetwork(ctx context.Context, n *model.Network) error {
	n.SetStatus(model.StatusStopping)
	if _, err := c.composeRun(ctx, n, "down"); err != nil {
		n.SetStatus(model.StatusError)
		return err
	}
	n.SetStatus(model.StatusStopped)
	c.log.Info("network stopped", zap.String("network", n.Name))
	return nil
}

// StartNode starts one node's container. The target is always stopped
// first: if a previous start wedged the container, this takes it back
// through Stopped before starting, instead of resuming a half-started
// one. That stop is best-effort and its failure is ignored.
func (c *Controller) StartNode(ctx context.Context, n *model.Network, nodeName string) error {
	node := n.Node(nodeName)
	if node == nil {
		return fmt.Errorf("node %q not found in network %s", nodeName, n.Name)
	}
	node.Status = model.StatusStopping
	if _, err := c.composeRun(ctx, n, "stop", nodeName); err != nil {
		c.log.Debug("pre-start stop failed", zap.String("node", nodeName), zap.Error(err))
	}
	node.Status = model.StatusStarting
	if err := EnsureNodeDirs(n, node); err != nil {
		node.Status = model.StatusError
		return err
	}
	if err := c.WriteComposeFile(n); err != nil {
		node.Status = model.StatusError
		return err
	}
	if _, err := c.composeRun(ctx, n, "up", "-d", "--no-deps", nodeName); err != nil {
		node.Status = model.StatusError
		return err
	}
	node.Status = model.StatusStarted
	return nil
}

// StopNode stops one node's container.
func (c *Controller) StopNode(ctx context.Context, n *model.Network, nodeName string) error {
	node := n.Node(nodeName)
	if node == nil {
		return fmt.Errorf("node %q not found in network %s", nodeName, n.Name)
	}
	node.Status = model.StatusStopping
	if _, err := c.composeRun(ctx, n, "stop", nodeName); err != nil {
		node.Status = model.StatusError
		return err
	}
	node.Status = model.StatusStopped
	return nil
}

// RemoveNode stops and removes one node's container. The topology
// entry is the caller's to delete; this only tears down the runtime
// side, so it is valid whether the entry is removed before or after.
func (c *Controller) RemoveNode(ctx context.Context, n *model.Network, nodeName string) error {
	if _, err := c.composeRun(ctx, n, "stop", nodeName); err != nil {
		c.log.Debug("pre-remove stop failed", zap.String("node", nodeName), zap.Error(err))
	}
	if _, err := c.composeRun(ctx, n, "rm", "-f", nodeName); err != nil {
		return err
	}
	if node := n.Node(nodeName); node != nil {
		node.Status = model.StatusStopped
	}
	return nil
}

// Exec runs a command inside a node's container and returns its
// stdout. Used to drive node control tools without a host-side client.
func (c *Controller) Exec(ctx context.Context, n *model.Network, serviceName string, cmd ...string) (string, error) {
	args := append([]string{"exec", "-T", serviceName}, cmd...)
	return c.composeRun(ctx, n, args...)
}

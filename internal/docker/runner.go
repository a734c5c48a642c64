package docker

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// CommandRunner executes one external command and returns its captured
// standard output and standard error text. It exists so the controller
// can be driven against a fake in tests.
type CommandRunner interface {
	Run(ctx context.Context, dir string, env []string, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands with os/exec. env entries are appended to
// the process environment.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	return out.String(), errOut.String(), err
}

package compose

import (
	"context"
	"fmt"

	"github.com/compose-spec/compose-go/v2/cli"
	composetypes "github.com/compose-spec/compose-go/v2/types"
)

// Parse loads a generated compose file back through the compose-go
// loader. It proves the document the builder wrote is one the
// composition tool will accept, without shelling out.
func Parse(ctx context.Context, path string) (*composetypes.Project, error) {
	opts, err := cli.NewProjectOptions(
		[]string{path},
		cli.WithDotEnv,
		cli.WithInterpolation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("project options: %w", err)
	}

	project, err := cli.ProjectFromOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return project, nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zackypick/polar/internal/compose"
	"github.com/zackypick/polar/internal/ui"
)

var validateCmd = &cobra.Command{
	Use:   "validate <network>",
	Short: "Validate a network's generated compose file",
	Long: `Regenerate the network's docker compose document and run it through the
compose parser, reporting what a 'docker compose up' would see.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	if err := a.docker.WriteComposeFile(n); err != nil {
		return err
	}
	project, err := compose.Parse(cmd.Context(), compose.FilePath(n.Path))
	if err != nil {
		ui.ValidationErr("compose", err.Error(), "")
		return err
	}

	for name, svc := range project.Services {
		ui.ValidationOK(name, svc.Image)
	}
	ui.Success(fmt.Sprintf("%s: %d services valid", n.Name, len(project.Services)))
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zackypick/polar/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the docker environment and pulled images",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	fmt.Println(ui.Bold("Checking docker environment..."))

	dockerVersion, composeVersion, err := a.docker.DetectVersions(cmd.Context(), true)
	if err != nil {
		ui.ValidationErr("docker", err.Error(), "is the docker daemon running?")
		return err
	}
	ui.ValidationOK("docker", dockerVersion)
	ui.ValidationOK("compose", composeVersion)

	pulled := map[string]bool{}
	for _, img := range a.docker.PulledImages(cmd.Context()) {
		pulled[img] = true
	}
	missing := 0
	for _, img := range a.versions.Images() {
		if pulled[img] {
			ui.ValidationOK("image", img)
		} else {
			missing++
			ui.ValidationErr("image", img+" not pulled", "docker pull "+img)
		}
	}
	if missing > 0 {
		ui.Warn(fmt.Sprintf("%d images missing; networks using them will fail to start", missing))
	} else {
		ui.Success("All images present")
	}
	return nil
}

package main

import (
	"os"

	"github.com/zackypick/polar/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

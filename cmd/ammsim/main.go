package main

import (
	"os"

	"github.com/tmsdkeys/pairpool/cmd/ammsim/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

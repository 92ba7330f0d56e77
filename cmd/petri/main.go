package main

import (
	"log"

	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(0)

	root := &cobra.Command{
		Use:           "petri",
		Short:         "petri is an infinite-grid Life-like cellular automaton engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCommand(),
		newStepCommand(),
		newConvertCommand(),
		newShellCommand(),
	)

	if err := root.Execute(); err != nil {
		log.Fatalf("petri: %v", err)
	}
}

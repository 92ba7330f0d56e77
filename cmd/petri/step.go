package main

import (
	"fmt"
	"log"
	"os"

	"github.com/oriumgames/petri"
	"github.com/spf13/cobra"
)

func newStepCommand() *cobra.Command {
	var (
		generations uint64
		ruleStr     string
		outPath     string
	)

	cmd := &cobra.Command{
		Use:   "step <pattern>",
		Short: "Advance a pattern a number of generations and emit RLE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := petri.NewEngine(petri.Settings{})
			if err := loadPattern(engine, args[0]); err != nil {
				return err
			}
			if ruleStr != "" {
				if err := engine.SetRule(ruleStr); err != nil {
					return err
				}
			}

			if generations > 0 {
				err := engine.JumpTo(engine.Generation()+generations, func(current, target uint64) {
					log.Printf("generation %d/%d, population %d", current, target, engine.Population())
				})
				if err != nil {
					return err
				}
			}

			rle, w, h := engine.ExportRLE()
			log.Printf("generation %d, population %d, %dx%d, %d chunks",
				engine.Generation(), engine.Population(), w, h, engine.Store().ChunkCount())

			if outPath == "" {
				fmt.Print(rle)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(rle), 0644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			return nil
		},
	}

	cmd.Flags().Uint64VarP(&generations, "generations", "n", 1, "generations to advance")
	cmd.Flags().StringVar(&ruleStr, "rule", "", "rule string, e.g. B36/S23 (default: B3/S23, or the rule stored in a .ptri snapshot; RLE header rules are not read)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout)")
	return cmd
}

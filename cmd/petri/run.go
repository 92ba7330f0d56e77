package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/oriumgames/petri"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	var (
		fps    float64
		width  int
		height int
		gens   uint64
	)

	cmd := &cobra.Command{
		Use:   "run [pattern]",
		Short: "Run a pattern in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := petri.NewEngine(petri.Settings{TargetFPS: fps})
			loaded := false
			if len(args) == 1 {
				if err := loadPattern(engine, args[0]); err != nil {
					return err
				}
				loaded = true
			}

			ctrl := petri.NewController(engine)
			defer ctrl.Close()

			ctrl.Send(petri.InitRequest{Cols: width, Rows: height, Preserve: loaded})
			ctrl.Send(petri.ViewportMoveRequest{X: -width / 2, Y: -height / 2})
			ctrl.Send(petri.SetFPSRequest{FPS: fps})
			ctrl.Send(petri.StartRequest{})

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			defer signal.Stop(interrupt)

			// Clear the screen once; every frame repaints from the top.
			fmt.Print("\x1b[2J")
			for {
				select {
				case msg := <-ctrl.Updates():
					u, ok := msg.(petri.Update)
					if !ok {
						continue
					}
					fmt.Print("\x1b[H")
					fmt.Print(renderText(u.Grid, width, height))
					fmt.Printf("gen %-10d pop %-8d chunks %-6d fps %.1f/%.1f rule %s\n",
						u.Generation, u.Population, u.Chunks, u.FPS.Actual, u.FPS.Target, u.Rule)
					if gens > 0 && u.Generation >= gens {
						return nil
					}
				case <-interrupt:
					return nil
				}
			}
		},
	}

	cmd.Flags().Float64Var(&fps, "fps", 10, "target generations per second (0, 60]")
	cmd.Flags().IntVar(&width, "width", 80, "viewport width in cells")
	cmd.Flags().IntVar(&height, "height", 40, "viewport height in cells")
	cmd.Flags().Uint64Var(&gens, "gens", 0, "stop after this many generations (0 = run until interrupted)")
	return cmd
}

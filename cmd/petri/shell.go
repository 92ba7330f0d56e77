package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/oriumgames/petri"
	"github.com/spf13/cobra"
)

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [pattern]",
		Short: "Drive the engine interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The shell offers undo, so it needs the history ring on.
			engine := petri.NewEngine(petri.DefaultSettings())
			if len(args) == 1 {
				if err := loadPattern(engine, args[0]); err != nil {
					return err
				}
			}
			sh := &shell{ctrl: petri.NewController(engine)}
			return sh.run()
		},
	}
}

// shell is a readline loop that translates commands into controller
// requests. Updates arrive asynchronously; the latest frame is kept for the
// show command and event messages are printed as they come.
type shell struct {
	ctrl *petri.Controller

	mu     sync.Mutex
	latest *petri.Update
}

func (s *shell) run() error {
	rl, err := readline.New("petri> ")
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	s.ctrl.Send(petri.InitRequest{Cols: 60, Rows: 30, Preserve: true})

	done := make(chan struct{})
	go s.drain(rl, done)
	defer func() {
		s.ctrl.Close()
		<-done
	}()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := s.dispatch(fields); err != nil {
			fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
		}
	}
}

// drain consumes controller messages until the update channel closes.
func (s *shell) drain(rl *readline.Instance, done chan struct{}) {
	defer close(done)
	for msg := range s.ctrl.Updates() {
		switch m := msg.(type) {
		case petri.Update:
			s.mu.Lock()
			s.latest = &m
			s.mu.Unlock()
		case petri.RuleChanged:
			fmt.Fprintf(rl.Stderr(), "rule set to %s\n", m.Rule)
		case petri.RuleError:
			fmt.Fprintf(rl.Stderr(), "rule rejected: %s\n", m.Message)
		case petri.ExportData:
			fmt.Fprintf(rl.Stderr(), "%s", m.RLE)
		case petri.JumpProgress:
			fmt.Fprintf(rl.Stderr(), "jump %d/%d\n", m.Current, m.Target)
		case petri.JumpComplete:
			fmt.Fprintf(rl.Stderr(), "jumped to generation %d\n", m.Generation)
		case petri.JumpError:
			fmt.Fprintf(rl.Stderr(), "jump rejected: %s\n", m.Message)
		}
	}
}

// dispatch turns one command line into controller requests.
func (s *shell) dispatch(fields []string) error {
	switch fields[0] {
	case "step":
		n := 1
		if len(fields) > 1 {
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return fmt.Errorf("step count %q: %w", fields[1], err)
			}
			n = v
		}
		for i := 0; i < n; i++ {
			s.ctrl.Send(petri.StepRequest{})
		}
	case "run":
		s.ctrl.Send(petri.StartRequest{})
	case "stop":
		s.ctrl.Send(petri.StopRequest{})
	case "undo":
		s.ctrl.Send(petri.ReverseRequest{})
	case "clear":
		s.ctrl.Send(petri.ClearRequest{})
	case "export":
		s.ctrl.Send(petri.ExportRequest{})
	case "rule":
		if len(fields) != 2 {
			return fmt.Errorf("usage: rule <B.../S...>")
		}
		s.ctrl.Send(petri.SetRuleRequest{Rule: fields[1]})
	case "fps":
		if len(fields) != 2 {
			return fmt.Errorf("usage: fps <value>")
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return fmt.Errorf("fps %q: %w", fields[1], err)
		}
		s.ctrl.Send(petri.SetFPSRequest{FPS: v})
	case "random":
		density := 0.3
		if len(fields) > 1 {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return fmt.Errorf("density %q: %w", fields[1], err)
			}
			density = v
		}
		s.ctrl.Send(petri.RandomizeRequest{Density: density})
	case "history":
		if len(fields) < 2 || (fields[1] != "on" && fields[1] != "off") {
			return fmt.Errorf("usage: history on|off [size]")
		}
		size := 20
		if len(fields) > 2 {
			v, err := strconv.Atoi(fields[2])
			if err != nil {
				return fmt.Errorf("history size %q: %w", fields[2], err)
			}
			size = v
		}
		s.ctrl.Send(petri.SetHistoryRequest{Enabled: fields[1] == "on", Size: size})
	case "jump":
		if len(fields) != 2 {
			return fmt.Errorf("usage: jump <generation>")
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("generation %q: %w", fields[1], err)
		}
		s.ctrl.Send(petri.JumpRequest{Target: v})
	case "view":
		if len(fields) != 3 {
			return fmt.Errorf("usage: view <x> <y>")
		}
		x, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("x %q: %w", fields[1], err)
		}
		y, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("y %q: %w", fields[2], err)
		}
		s.ctrl.Send(petri.ViewportMoveRequest{X: x, Y: y})
	case "show":
		s.mu.Lock()
		u := s.latest
		s.mu.Unlock()
		if u == nil {
			return fmt.Errorf("no frame yet")
		}
		w := 60
		h := len(u.Grid) / ((w + 31) / 32)
		fmt.Print(renderText(u.Grid, w, h))
		fmt.Printf("gen %d  pop %d  chunks %d  rule %s  history %d\n",
			u.Generation, u.Population, u.Chunks, u.Rule, u.HistorySize)
	case "help":
		fmt.Println("commands: step [n], run, stop, undo, history on|off [n], clear, rule <r>, fps <v>, random [d], jump <g>, view <x> <y>, show, export, quit")
	default:
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return nil
}

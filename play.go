package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/match3/game/engine"
	"github.com/wricardo/match3/game/service"
)

const playHelp = `Commands:
  r1 c1 r2 c2         swap (r1,c1) with (r2,c2), e.g. "0 1 2 1"
  check r1 c1 r2 c2   test a swap without playing it
  new [preset]        start a new game
  history             list moves
  help                show this help
  quit                leave
`

func (a *app) playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play in the terminal, reading moves as 'r1 c1 r2 c2'",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "preset",
				Usage:   "preset to play (default preset when empty)",
				Sources: cli.EnvVars("MATCH3_PRESET"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, svc, err := a.initializeServices(cmd)
			if err != nil {
				return err
			}
			return play(ctx, svc, cmd.String("preset"), a.in, a.out)
		},
	}
}

// play runs the terminal loop until quit or end of input
func play(ctx context.Context, svc service.GameService, preset string, in io.Reader, out io.Writer) error {
	info, err := svc.NewGame(ctx, preset)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%dx%d)\n\n", info.Name, info.Width, info.Height)
	writeBoard(out, info.Board)
	fmt.Fprint(out, playHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "q", "exit":
			return nil

		case "help", "h", "?":
			fmt.Fprint(out, playHelp)

		case "new", "n":
			name := preset
			if len(fields) > 1 {
				name = fields[1]
			}
			info, err := svc.NewGame(ctx, name)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%s (%dx%d)\n\n", info.Name, info.Width, info.Height)
			writeBoard(out, info.Board)

		case "history":
			h, err := svc.History(ctx, service.HistoryOptions{Limit: 100, Order: "asc"})
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			for _, m := range h.Moves {
				fmt.Fprintf(out, "#%d %s <-> %s legal=%t passes=%d cleared=%d\n",
					m.Number, m.From, m.To, m.Legal, m.Passes, m.Cleared)
			}

		case "check":
			from, to, err := parseSwap(fields[1:])
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			ok, err := svc.CanMove(ctx, from, to)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%s <-> %s legal=%t\n", from, to, ok)

		default:
			from, to, err := parseSwap(fields)
			if err != nil {
				fmt.Fprintf(out, "error: %v (type help for commands)\n", err)
				continue
			}
			result, err := svc.Move(ctx, from, to)
			if result == nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			writeMove(out, result)
			if err != nil && errors.Is(err, engine.ErrCascadeLimit) {
				fmt.Fprintln(out, "cascade limit reached, board left as shown")
			} else if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
	}
}

func parseSwap(fields []string) (engine.Position, engine.Position, error) {
	if len(fields) != 4 {
		return engine.Position{}, engine.Position{}, fmt.Errorf("expected 4 numbers, got %d", len(fields))
	}
	var n [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return engine.Position{}, engine.Position{}, fmt.Errorf("not a number: %q", f)
		}
		n[i] = v
	}
	return engine.Position{Row: n[0], Col: n[1]}, engine.Position{Row: n[2], Col: n[3]}, nil
}

func writeBoard(out io.Writer, board [][]string) {
	for _, row := range board {
		fmt.Fprintln(out, strings.Join(row, " "))
	}
	fmt.Fprintln(out)
}

func writeMove(out io.Writer, result *service.MoveResult) {
	if !result.Legal {
		fmt.Fprintf(out, "no match: %s <-> %s\n", result.From, result.To)
		return
	}

	for _, e := range result.Effects {
		switch e.Kind {
		case engine.MatchEffect:
			fmt.Fprintf(out, "  match %s %s x%d\n", e.Axis, e.Value, len(e.Positions))
		case engine.RefillEffect:
			fmt.Fprintln(out, "  refill")
		}
	}
	fmt.Fprintln(out)
	writeBoard(out, result.Board)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/match3/game/config"
	"github.com/wricardo/match3/game/engine"
)

func (a *app) presetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: "inspect board presets",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list valid presets",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					presets, err := config.NewManager(cmd.String("preset-dir"))
					if err != nil {
						return err
					}
					return listPresets(presets, a.out)
				},
			},
			{
				Name:      "show",
				Usage:     "print a preset and its starting board",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "output format, json or yaml",
						Value: "yaml",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected one preset name, got %d", cmd.Args().Len())
					}
					presets, err := config.NewManager(cmd.String("preset-dir"))
					if err != nil {
						return err
					}
					return showPreset(presets, cmd.Args().First(), cmd.String("format"), a.out)
				},
			},
			{
				Name:      "validate",
				Usage:     "validate every preset file in a directory",
				ArgsUsage: "[dir]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := cmd.String("preset-dir")
					if cmd.Args().Len() > 0 {
						dir = cmd.Args().First()
					}
					return validatePresets(dir, a.out)
				},
			},
			{
				Name:  "analyze",
				Usage: "print tile counts, starting runs and legal moves for each preset",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					presets, err := config.NewManager(cmd.String("preset-dir"))
					if err != nil {
						return err
					}
					return analyzePresets(presets, a.out)
				},
			},
		},
	}
}

func listPresets(presets *config.Manager, out io.Writer) error {
	infos, err := presets.ListPresets()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tTILES\tDESCRIPTION")
	for _, p := range infos {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%s\n",
			p.PresetID, p.Name, p.Width, p.Height, strings.Join(p.Tiles, ""), p.Description)
	}
	return w.Flush()
}

func showPreset(presets *config.Manager, name, format string, out io.Writer) error {
	preset, err := presets.LoadPreset(name)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(preset); err != nil {
			return err
		}
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(preset); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q, use json or yaml", format)
	}

	board, err := preset.NewBoard(nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nStarting board:\n%s", board)
	return nil
}

func validatePresets(dir string, out io.Writer) error {
	results, err := config.ValidateDir(dir)
	if err != nil {
		return err
	}

	invalid := 0
	for _, r := range results {
		status := "OK"
		if !r.Valid {
			status = "INVALID"
			invalid++
		}
		fmt.Fprintf(out, "%s: %s\n", r.File, status)
		for _, note := range r.Notes {
			fmt.Fprintf(out, "  %s\n", note)
		}
	}

	fmt.Fprintf(out, "\n%d file(s), %d invalid\n", len(results), invalid)
	if invalid > 0 {
		return fmt.Errorf("%d invalid preset file(s)", invalid)
	}
	return nil
}

// PresetAnalysis summarizes the starting board of a preset
type PresetAnalysis struct {
	Tiles      map[string]int
	Runs       int
	LegalMoves [][2]engine.Position
}

// analyzePreset builds the starting board and counts what is on it. Every pair
// of positions sharing a row or column is tried as a move.
func analyzePreset(p *config.Preset) (*PresetAnalysis, error) {
	board, err := p.NewBoard(nil)
	if err != nil {
		return nil, err
	}

	a := &PresetAnalysis{Tiles: make(map[string]int)}
	for _, row := range board.Values() {
		for _, v := range row {
			a.Tiles[v]++
		}
	}
	a.Runs = len(board.Matches())

	for r := 0; r < board.Height(); r++ {
		for c := 0; c < board.Width(); c++ {
			from := engine.Position{Row: r, Col: c}
			// Right along the row, then down the column, so each pair is tried once
			for c2 := c + 1; c2 < board.Width(); c2++ {
				to := engine.Position{Row: r, Col: c2}
				if board.CanMove(from, to) {
					a.LegalMoves = append(a.LegalMoves, [2]engine.Position{from, to})
				}
			}
			for r2 := r + 1; r2 < board.Height(); r2++ {
				to := engine.Position{Row: r2, Col: c}
				if board.CanMove(from, to) {
					a.LegalMoves = append(a.LegalMoves, [2]engine.Position{from, to})
				}
			}
		}
	}
	return a, nil
}

func analyzePresets(presets *config.Manager, out io.Writer) error {
	infos, err := presets.ListPresets()
	if err != nil {
		return err
	}

	for _, info := range infos {
		fmt.Fprintf(out, "\n=== %s (%s) ===\n", info.Name, info.Filename)

		preset, err := presets.LoadPreset(info.PresetID)
		if err != nil {
			fmt.Fprintf(out, "Error loading preset: %v\n", err)
			continue
		}
		a, err := analyzePreset(preset)
		if err != nil {
			fmt.Fprintf(out, "Error building board: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "Board: %dx%d\n", preset.Width, preset.Height)

		tiles := make([]string, 0, len(a.Tiles))
		for t := range a.Tiles {
			tiles = append(tiles, t)
		}
		sort.Strings(tiles)
		parts := make([]string, len(tiles))
		for i, t := range tiles {
			parts[i] = fmt.Sprintf("%s=%d", t, a.Tiles[t])
		}
		fmt.Fprintf(out, "Tiles: %s\n", strings.Join(parts, " "))

		fmt.Fprintf(out, "Runs on starting board: %d\n", a.Runs)
		fmt.Fprintf(out, "Legal moves: %d\n", len(a.LegalMoves))
		if len(a.LegalMoves) == 0 {
			fmt.Fprintln(out, "⚠️  No legal moves from the starting board")
		}
	}
	return nil
}

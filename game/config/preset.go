package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/wricardo/match3/game/engine"
)

// Validation limits
const (
	MinBoardSize = 3
	MaxBoardSize = 50
	MinTileKinds = 2
)

// Preset describes how to build a board
type Preset struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Width       int      `json:"width" yaml:"width"`
	Height      int      `json:"height" yaml:"height"`
	Tiles       []string `json:"tiles" yaml:"tiles"`
	Layout      []string `json:"layout,omitempty" yaml:"layout,omitempty"`
	Refill      string   `json:"refill,omitempty" yaml:"refill,omitempty"`
	Seed        uint64   `json:"seed" yaml:"seed"`
	MaxPasses   int      `json:"max_passes,omitempty" yaml:"max_passes,omitempty"`
}

// PresetInfo summarizes a preset file for listings
type PresetInfo struct {
	Filename    string   `json:"filename"`
	PresetID    string   `json:"preset_id"` // identifier to pass to LoadPreset
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Tiles       []string `json:"tiles"`
}

// ValidatePreset checks a preset for correctness
func ValidatePreset(p *Preset) error {
	if p == nil {
		return fmt.Errorf("config validation: preset cannot be nil")
	}
	if p.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if p.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if p.Width < MinBoardSize || p.Width > MaxBoardSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, p.Width)
	}
	if p.Height < MinBoardSize || p.Height > MaxBoardSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, p.Height)
	}

	if len(p.Tiles) < MinTileKinds {
		return fmt.Errorf("config validation: tiles must list at least %d values, got %d", MinTileKinds, len(p.Tiles))
	}
	known := make(map[string]bool, len(p.Tiles))
	for i, tile := range p.Tiles {
		if utf8.RuneCountInString(tile) != 1 {
			return fmt.Errorf("config validation: tiles[%d] must be a single character, got %q", i, tile)
		}
		if known[tile] {
			return fmt.Errorf("config validation: tile %q is listed twice", tile)
		}
		known[tile] = true
	}

	if len(p.Layout) > 0 {
		if len(p.Layout) != p.Height {
			return fmt.Errorf("config validation: layout must have %d rows to match height, got %d", p.Height, len(p.Layout))
		}
		for i, row := range p.Layout {
			if n := utf8.RuneCountInString(row); n != p.Width {
				return fmt.Errorf("config validation: row %d must have %d characters to match width, got %d", i+1, p.Width, n)
			}
			for j, ch := range row {
				if !known[string(ch)] {
					return fmt.Errorf("config validation: invalid tile '%c' at row %d, col %d", ch, i+1, j+1)
				}
			}
		}
	}

	for i, ch := range []rune(p.Refill) {
		if !known[string(ch)] {
			return fmt.Errorf("config validation: invalid refill tile '%c' at index %d", ch, i)
		}
	}

	if p.MaxPasses < 0 {
		return fmt.Errorf("config validation: max_passes cannot be negative, got %d", p.MaxPasses)
	}

	return nil
}

// Supplier returns a fresh supplier for the preset: the layout cells row by
// row, then the refill sequence, then seeded random tiles.
func (p *Preset) Supplier() engine.Supplier[string] {
	return engine.NewChainSupplier[string](
		engine.NewSequenceSupplier(splitChars(strings.Join(p.Layout, ""))...),
		engine.NewSequenceSupplier(splitChars(p.Refill)...),
		engine.NewRandomSupplier(p.Tiles, p.Seed),
	)
}

// NewBoard validates the preset and builds a board from it
func (p *Preset) NewBoard(logger *zap.Logger) (*engine.Board[string], error) {
	if err := ValidatePreset(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreset, err)
	}

	board, err := engine.New[string](p.Supplier(), p.Width, p.Height,
		engine.WithLogger(logger),
		engine.WithMaxPasses(p.MaxPasses),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build board for preset '%s': %w", p.Name, err)
	}
	return board, nil
}

// Info summarizes the preset under the given file name and id
func (p *Preset) Info(filename, id string) *PresetInfo {
	return &PresetInfo{
		Filename:    filename,
		PresetID:    id,
		Name:        p.Name,
		Description: p.Description,
		Width:       p.Width,
		Height:      p.Height,
		Tiles:       p.Tiles,
	}
}

// DefaultPreset returns the built-in preset used when no preset files are available
func DefaultPreset() *Preset {
	return &Preset{
		Name:        "default",
		Description: "Built-in 8x8 board with five tile kinds",
		Width:       8,
		Height:      8,
		Tiles:       []string{"R", "G", "B", "Y", "P"},
		Seed:        1,
	}
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, ch := range s {
		out = append(out, string(ch))
	}
	return out
}

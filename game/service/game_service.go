package service

import (
	"context"
	"errors"

	"github.com/wricardo/match3/game/config"
	"github.com/wricardo/match3/game/engine"
)

var (
	ErrNoActiveGame = errors.New("no active game")
	ErrOffBoard     = errors.New("position is off the board")
)

// GameService defines all game-related operations
type GameService interface {
	// Game lifecycle
	NewGame(ctx context.Context, preset string) (*GameInfo, error)
	State(ctx context.Context) (*GameInfo, error)

	// Board operations
	Tile(ctx context.Context, pos engine.Position) (*TileInfo, error)
	CanMove(ctx context.Context, from, to engine.Position) (bool, error)
	Move(ctx context.Context, from, to engine.Position) (*MoveResult, error)
	History(ctx context.Context, opts HistoryOptions) (*HistoryResponse, error)

	// Presets
	ListPresets(ctx context.Context) ([]*config.PresetInfo, error)
	LoadPreset(ctx context.Context, name string) (*config.Preset, error)

	// Subscribe registers fn for every later event. The returned function removes it.
	Subscribe(fn EventListener) (unsubscribe func())
}

// PresetStore handles preset loading
type PresetStore interface {
	LoadPreset(name string) (*config.Preset, error)
	ListPresets() ([]*config.PresetInfo, error)
	GetDefault() *config.Preset
}

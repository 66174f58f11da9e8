package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/match3/game/engine"
)

// GameInfo describes the active game
type GameInfo struct {
	GameID    uuid.UUID              `json:"game_id"`
	Preset    string                 `json:"preset"` // preset id the game was started from
	Name      string                 `json:"name"`
	Width     int                    `json:"width"`
	Height    int                    `json:"height"`
	Board     [][]string             `json:"board"`
	Matches   []engine.Match[string] `json:"matches"` // unresolved runs, e.g. from a preset layout
	Moves     int                    `json:"moves"`
	StartedAt time.Time              `json:"started_at"`
}

// TileInfo is the value held at one position
type TileInfo struct {
	Position engine.Position `json:"position"`
	Value    string          `json:"value"`
	Filled   bool            `json:"filled"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	ID      uuid.UUID               `json:"id"`
	From    engine.Position         `json:"from"`
	To      engine.Position         `json:"to"`
	Legal   bool                    `json:"legal"`
	Effects []engine.Effect[string] `json:"effects"`
	Board   [][]string              `json:"board"`
	Passes  int                     `json:"passes"`
	Cleared int                     `json:"cleared"`
	Error   string                  `json:"error,omitempty"`
}

// MoveRecord is one entry of the move history
type MoveRecord struct {
	ID        uuid.UUID       `json:"id"`
	Number    int             `json:"number"`
	From      engine.Position `json:"from"`
	To        engine.Position `json:"to"`
	Legal     bool            `json:"legal"`
	Passes    int             `json:"passes"`
	Cleared   int             `json:"cleared"`
	Timestamp time.Time       `json:"timestamp"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []MoveRecord `json:"moves"`
	TotalMoves  int          `json:"total_moves"`
	Page        int          `json:"page"`
	PageSize    int          `json:"page_size"`
	TotalPages  int          `json:"total_pages"`
	HasNext     bool         `json:"has_next"`
	HasPrevious bool         `json:"has_previous"`
}

// EventType names the kind of Event
type EventType string

const (
	EventNewGame EventType = "new_game"
	EventEffect  EventType = "effect"
	EventBoard   EventType = "board"
)

// Event is what subscribers receive. Effect is set for EventEffect, Board for
// the other two.
type Event struct {
	Type   EventType              `json:"type"`
	MoveID uuid.UUID              `json:"move_id,omitempty"`
	Effect *engine.Effect[string] `json:"effect,omitempty"`
	Board  [][]string             `json:"board,omitempty"`
}

// EventListener receives service events
type EventListener func(Event)

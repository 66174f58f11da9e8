package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/match3/game/config"
	"github.com/wricardo/match3/game/engine"
)

// game is the active board and its bookkeeping
type game struct {
	id        uuid.UUID
	presetID  string
	preset    *config.Preset
	board     *engine.Board[string]
	history   []MoveRecord
	startedAt time.Time
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	presets PresetStore
	logger  *zap.Logger

	mu      sync.Mutex
	current *game
	moveID  uuid.UUID // id of the move being resolved, read by the board listener

	subMu     sync.RWMutex
	listeners map[int]EventListener
	nextSubID int
}

// NewGameService creates a new game service instance. No game is active until NewGame is called.
func NewGameService(presets PresetStore, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		presets:   presets,
		logger:    logger,
		listeners: make(map[int]EventListener),
	}
}

// NewGame replaces the active game with a fresh board built from the named
// preset, or from the default preset when name is empty.
func (s *gameServiceImpl) NewGame(ctx context.Context, presetName string) (*GameInfo, error) {
	preset, presetID, err := s.resolvePreset(presetName)
	if err != nil {
		return nil, err
	}

	board, err := preset.NewBoard(s.logger.Named("engine"))
	if err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := &game{
		id:        uuid.New(),
		presetID:  presetID,
		preset:    preset,
		board:     board,
		history:   []MoveRecord{},
		startedAt: time.Now(),
	}
	board.Subscribe(func(e engine.Effect[string]) {
		effect := e
		s.publish(Event{Type: EventEffect, MoveID: s.moveID, Effect: &effect})
	})
	s.current = g

	s.logger.Info("new game",
		zap.String("game_id", g.id.String()),
		zap.String("preset", presetID),
		zap.Int("width", board.Width()),
		zap.Int("height", board.Height()),
	)

	s.publish(Event{Type: EventNewGame, Board: board.Values()})
	return s.info(g), nil
}

// resolvePreset loads the named preset and returns it with its id
func (s *gameServiceImpl) resolvePreset(name string) (*config.Preset, string, error) {
	if name == "" {
		preset := s.presets.GetDefault()
		if preset == nil {
			return nil, "", fmt.Errorf("no default preset: %w", config.ErrPresetNotFound)
		}
		return preset, s.presetID(preset), nil
	}

	preset, err := s.presets.LoadPreset(name)
	if err != nil {
		if errors.Is(err, config.ErrPresetNotFound) {
			if available := s.availablePresets(); len(available) > 0 {
				return nil, "", fmt.Errorf("preset '%s': %w. Available presets: %v", name, err, available)
			}
		}
		return nil, "", fmt.Errorf("failed to load preset %s: %w", name, err)
	}
	return preset, name, nil
}

// presetID looks up the id of a preset by display name
func (s *gameServiceImpl) presetID(preset *config.Preset) string {
	infos, err := s.presets.ListPresets()
	if err == nil {
		for _, info := range infos {
			if info.Name == preset.Name {
				return info.PresetID
			}
		}
	}
	return preset.Name
}

func (s *gameServiceImpl) availablePresets() []string {
	infos, err := s.presets.ListPresets()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.PresetID)
	}
	return ids
}

// State returns the active game
func (s *gameServiceImpl) State(ctx context.Context) (*GameInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveGame
	}
	return s.info(s.current), nil
}

// Tile returns the value at pos
func (s *gameServiceImpl) Tile(ctx context.Context, pos engine.Position) (*TileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveGame
	}

	value, filled := s.current.board.TileValueAt(pos)
	if !filled {
		return nil, fmt.Errorf("%w: %s on a %dx%d board", ErrOffBoard, pos, s.current.board.Width(), s.current.board.Height())
	}
	return &TileInfo{Position: pos, Value: value, Filled: filled}, nil
}

// CanMove reports whether swapping from and to would create a match
func (s *gameServiceImpl) CanMove(ctx context.Context, from, to engine.Position) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, ErrNoActiveGame
	}
	return s.current.board.CanMove(from, to), nil
}

// Move applies a swap and records it. An illegal swap is recorded too, with
// Legal false and no effects. When the board fails mid-cascade the partial
// result is returned along with the error.
func (s *gameServiceImpl) Move(ctx context.Context, from, to engine.Position) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.current
	if g == nil {
		return nil, ErrNoActiveGame
	}

	s.moveID = uuid.New()
	defer func() { s.moveID = uuid.Nil }()

	legal := g.board.CanMove(from, to)
	effects, moveErr := g.board.Move(from, to)

	passes, cleared := summarize(effects)

	result := &MoveResult{
		ID:      s.moveID,
		From:    from,
		To:      to,
		Legal:   legal,
		Effects: effects,
		Board:   g.board.Values(),
		Passes:  passes,
		Cleared: cleared,
	}

	g.history = append(g.history, MoveRecord{
		ID:        s.moveID,
		Number:    len(g.history) + 1,
		From:      from,
		To:        to,
		Legal:     legal,
		Passes:    passes,
		Cleared:   cleared,
		Timestamp: time.Now(),
	})

	if moveErr != nil {
		result.Error = moveErr.Error()
		s.logger.Error("move failed",
			zap.String("move_id", s.moveID.String()),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Int("effects", len(effects)),
			zap.Error(moveErr),
		)
	} else {
		s.logger.Info("move",
			zap.String("move_id", s.moveID.String()),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
			zap.Bool("legal", legal),
			zap.Int("passes", passes),
			zap.Int("cleared", cleared),
		)
	}

	if legal {
		s.publish(Event{Type: EventBoard, MoveID: s.moveID, Board: result.Board})
	}

	if moveErr != nil {
		return result, fmt.Errorf("move %s -> %s: %w", from, to, moveErr)
	}
	return result, nil
}

// summarize counts refill effects as passes and distinct matched positions as
// cleared tiles. A tile in both a row and a column match of the same pass is
// cleared once, so it counts once.
func summarize(effects []engine.Effect[string]) (passes, cleared int) {
	pass := make(map[engine.Position]bool)
	for _, e := range effects {
		switch e.Kind {
		case engine.RefillEffect:
			passes++
			cleared += len(pass)
			clear(pass)
		case engine.MatchEffect:
			for _, p := range e.Positions {
				pass[p] = true
			}
		}
	}
	// Matches of a pass that never reached its refill
	return passes, cleared + len(pass)
}

// History returns a page of the move history
func (s *gameServiceImpl) History(ctx context.Context, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNoActiveGame
	}

	history := s.current.history
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []MoveRecord{}
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListPresets returns the available presets
func (s *gameServiceImpl) ListPresets(ctx context.Context) ([]*config.PresetInfo, error) {
	return s.presets.ListPresets()
}

// LoadPreset returns one preset by name
func (s *gameServiceImpl) LoadPreset(ctx context.Context, name string) (*config.Preset, error) {
	return s.presets.LoadPreset(name)
}

// Subscribe registers fn for every later event
func (s *gameServiceImpl) Subscribe(fn EventListener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.listeners, id)
	}
}

// publish fans e out to every listener. Listeners run on the caller's
// goroutine, with the game lock held, and must not call back into the service.
func (s *gameServiceImpl) publish(e Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for _, fn := range s.listeners {
		fn(e)
	}
}

// info builds a GameInfo; the caller holds s.mu
func (s *gameServiceImpl) info(g *game) *GameInfo {
	matches := g.board.Matches()
	if matches == nil {
		matches = []engine.Match[string]{}
	}
	return &GameInfo{
		GameID:    g.id,
		Preset:    g.presetID,
		Name:      g.preset.Name,
		Width:     g.board.Width(),
		Height:    g.board.Height(),
		Board:     g.board.Values(),
		Matches:   matches,
		Moves:     len(g.history),
		StartedAt: g.startedAt,
	}
}

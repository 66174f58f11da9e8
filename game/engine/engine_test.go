package engine_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/match3/game/engine"
)

// chars splits rows of single-character tiles into one flat, row-major slice
func chars(rows ...string) []string {
	var out []string
	for _, row := range rows {
		out = append(out, strings.Split(row, "")...)
	}
	return out
}

// newBoard builds a board from rows of characters followed by refill values
func newBoard(t *testing.T, rows []string, refill string, opts ...engine.Option) *engine.Board[string] {
	t.Helper()
	values := append(chars(rows...), chars(refill)...)
	b, err := engine.New[string](engine.NewSequenceSupplier(values...), len(rows[0]), len(rows), opts...)
	require.NoError(t, err)
	return b
}

func rowsOf(b *engine.Board[string]) []string {
	var out []string
	for _, row := range b.Values() {
		out = append(out, strings.Join(row, ""))
	}
	return out
}

func pos(row, col int) engine.Position {
	return engine.Position{Row: row, Col: col}
}

var threeByFour = []string{
	"ABA",
	"DBC",
	"DAC",
	"CDD",
}

var fourByFour = []string{
	"ABAC",
	"DCAC",
	"DADD",
	"CCDC",
}

func TestNew(t *testing.T) {
	b := newBoard(t, threeByFour, "")

	assert.Equal(t, 3, b.Width())
	assert.Equal(t, 4, b.Height())
	assert.Equal(t, threeByFour, rowsOf(b))
}

func TestNew_InvalidDimensions(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
	}{
		{"ZeroWidth", 0, 3},
		{"ZeroHeight", 3, 0},
		{"NegativeWidth", -1, 3},
		{"NegativeHeight", 3, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			supplier := engine.SupplierFunc[string](func() (string, error) {
				calls++
				return "A", nil
			})

			b, err := engine.New[string](supplier, tc.width, tc.height)
			require.ErrorIs(t, err, engine.ErrInvalidDimensions)
			assert.Nil(t, b)
			assert.Zero(t, calls, "supplier must not be called")
		})
	}
}

func TestNew_SupplierFailure(t *testing.T) {
	_, err := engine.New[string](engine.NewSequenceSupplier("A", "B"), 2, 2)
	require.ErrorIs(t, err, engine.ErrSupplierExhausted)
}

func TestNew_NilSupplier(t *testing.T) {
	_, err := engine.New[string](nil, 2, 2)
	require.Error(t, err)
}

func TestTileValueAt(t *testing.T) {
	b := newBoard(t, threeByFour, "")

	v, ok := b.TileValueAt(pos(1, 2))
	require.True(t, ok)
	assert.Equal(t, "C", v)

	outside := []engine.Position{
		pos(-1, 0), pos(0, -1), pos(4, 0), pos(0, 3), pos(4, 3), pos(-5, -5), pos(100, 1),
	}
	for _, p := range outside {
		v, ok := b.TileValueAt(p)
		assert.False(t, ok, "TileValueAt(%s)", p)
		assert.Empty(t, v)
	}
}

func TestCanMove_FixedBoard(t *testing.T) {
	b := newBoard(t, fourByFour, "")

	assert.True(t, b.CanMove(pos(2, 1), pos(0, 1)))
	assert.False(t, b.CanMove(pos(0, 0), pos(0, 0)))
}

func TestCanMove_Rejections(t *testing.T) {
	b := newBoard(t, fourByFour, "")

	cases := []struct {
		name     string
		from, to engine.Position
	}{
		{"SameTile", pos(1, 1), pos(1, 1)},
		{"Diagonal", pos(0, 0), pos(1, 1)},
		{"DifferentRowAndColumn", pos(2, 1), pos(0, 3)},
		{"FromOutOfBounds", pos(-1, 1), pos(0, 1)},
		{"ToOutOfBounds", pos(0, 1), pos(0, 4)},
		{"NoMatchCreated", pos(3, 0), pos(3, 3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, b.CanMove(tc.from, tc.to))
		})
	}
}

func TestCanMove_NonAdjacentSameRow(t *testing.T) {
	b := newBoard(t, []string{"ABCAA"}, "")

	assert.True(t, b.CanMove(pos(0, 0), pos(0, 2)))
}

func TestCanMove_NeverMutatesBoard(t *testing.T) {
	b := newBoard(t, fourByFour, "")
	before := b.Values()

	for r1 := -1; r1 <= 4; r1++ {
		for c1 := -1; c1 <= 4; c1++ {
			for r2 := -1; r2 <= 4; r2++ {
				for c2 := -1; c2 <= 4; c2++ {
					b.CanMove(pos(r1, c1), pos(r2, c2))
				}
			}
		}
	}

	assert.Equal(t, before, b.Values())
}

func TestMove_SingleRowMatch(t *testing.T) {
	b := newBoard(t, threeByFour, "BCD")

	require.True(t, b.CanMove(pos(0, 1), pos(2, 1)))
	effects, err := b.Move(pos(0, 1), pos(2, 1))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"BCD",
		"DBC",
		"DBC",
		"CDD",
	}, rowsOf(b))

	require.Len(t, effects, 2)
	assert.Equal(t, engine.MatchEffect, effects[0].Kind)
	assert.Equal(t, engine.RowAxis, effects[0].Axis)
	assert.Equal(t, "A", effects[0].Value)
	assert.Equal(t, []engine.Position{pos(0, 0), pos(0, 1), pos(0, 2)}, effects[0].Positions)

	last := effects[len(effects)-1]
	assert.Equal(t, engine.RefillEffect, last.Kind)
	assert.Equal(t, b.Values(), last.Board)
	assert.Empty(t, b.Matches())
}

func TestMove_IllegalIsNoOp(t *testing.T) {
	cases := []struct {
		name     string
		from, to engine.Position
	}{
		{"SameTile", pos(0, 0), pos(0, 0)},
		{"Diagonal", pos(0, 0), pos(1, 1)},
		{"OutOfBounds", pos(0, 0), pos(0, 9)},
		{"NoMatch", pos(0, 0), pos(0, 2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBoard(t, threeByFour, "")
			before := b.Values()

			effects, err := b.Move(tc.from, tc.to)
			require.NoError(t, err)
			assert.Empty(t, effects)
			assert.Equal(t, before, b.Values())
		})
	}
}

func TestMove_Cascade(t *testing.T) {
	b := newBoard(t, threeByFour, "BBB"+"ACACB")

	effects, err := b.Move(pos(0, 1), pos(2, 1))
	require.NoError(t, err)

	kinds := make([]engine.EffectKind, len(effects))
	for i, e := range effects {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []engine.EffectKind{
		engine.MatchEffect,
		engine.RefillEffect,
		engine.MatchEffect,
		engine.MatchEffect,
		engine.RefillEffect,
	}, kinds)

	// second pass: row 0 of B first, then the column of B through (0,1)
	assert.Equal(t, engine.RowAxis, effects[2].Axis)
	assert.Equal(t, "B", effects[2].Value)
	assert.Equal(t, engine.ColumnAxis, effects[3].Axis)
	assert.Equal(t, []engine.Position{pos(0, 1), pos(1, 1), pos(2, 1)}, effects[3].Positions)

	assert.Equal(t, [][]string{
		{"B", "B", "B"},
		{"D", "B", "C"},
		{"D", "B", "C"},
		{"C", "D", "D"},
	}, effects[1].Board)

	assert.Equal(t, []string{
		"ACB",
		"DAC",
		"DCC",
		"CDD",
	}, rowsOf(b))
	assert.Empty(t, b.Matches())
}

func TestMove_SharedTileClearedOnce(t *testing.T) {
	// the swap completes row 2 and column 2 through (2,2); five distinct
	// tiles are cleared so exactly five refill values are consumed
	b := newBoard(t, []string{
		"ABXC",
		"CDXA",
		"XXYD",
		"BAXC",
	}, "EFGHI")

	effects, err := b.Move(pos(2, 2), pos(3, 2))
	require.NoError(t, err)

	require.Len(t, effects, 3)
	assert.Equal(t, engine.RowAxis, effects[0].Axis)
	assert.Equal(t, []engine.Position{pos(2, 0), pos(2, 1), pos(2, 2)}, effects[0].Positions)
	assert.Equal(t, engine.ColumnAxis, effects[1].Axis)
	assert.Equal(t, []engine.Position{pos(0, 2), pos(1, 2), pos(2, 2)}, effects[1].Positions)
	assert.Equal(t, engine.RefillEffect, effects[2].Kind)

	assert.Equal(t, []string{
		"EFGC",
		"ABHA",
		"CDID",
		"BAYC",
	}, rowsOf(b))
}

func TestMove_RowMatchesBeforeColumnMatchesAndRefillLast(t *testing.T) {
	b := newBoard(t, []string{
		"ABXC",
		"CDXA",
		"XXYD",
		"BAXC",
	}, "EFGHI")

	effects, err := b.Move(pos(2, 2), pos(3, 2))
	require.NoError(t, err)

	sawColumn := false
	for i, e := range effects {
		switch {
		case e.Kind == engine.RefillEffect:
			if i > 0 {
				assert.Equal(t, engine.MatchEffect, effects[i-1].Kind)
			}
			sawColumn = false
		case e.Axis == engine.ColumnAxis:
			sawColumn = true
		case e.Axis == engine.RowAxis:
			assert.False(t, sawColumn, "row match emitted after a column match in the same pass")
		}
	}
	assert.Equal(t, engine.RefillEffect, effects[len(effects)-1].Kind)
}

func TestMove_SupplierFailurePropagates(t *testing.T) {
	b := newBoard(t, threeByFour, "B")

	effects, err := b.Move(pos(0, 1), pos(2, 1))
	require.ErrorIs(t, err, engine.ErrSupplierExhausted)
	require.Len(t, effects, 1)
	assert.Equal(t, engine.MatchEffect, effects[0].Kind)
}

func TestMove_CascadeLimit(t *testing.T) {
	b := newBoard(t, threeByFour, "BBB"+"ACACB", engine.WithMaxPasses(1))

	effects, err := b.Move(pos(0, 1), pos(2, 1))
	require.ErrorIs(t, err, engine.ErrCascadeLimit)
	require.Len(t, effects, 2)
	assert.Equal(t, engine.RefillEffect, effects[1].Kind)
}

func TestMove_RandomBoardsSettle(t *testing.T) {
	for seed := uint64(1); seed <= 25; seed++ {
		supplier := engine.NewRandomSupplier([]string{"A", "B", "C", "D", "E"}, seed)
		b, err := engine.New[string](supplier, 7, 7)
		require.NoError(t, err)

		from, to, ok := firstLegalMove(b)
		if !ok {
			continue
		}

		effects, err := b.Move(from, to)
		require.NoError(t, err, "seed %d", seed)
		require.NotEmpty(t, effects, "seed %d", seed)
		assert.Equal(t, engine.RefillEffect, effects[len(effects)-1].Kind, "seed %d", seed)
		assert.Empty(t, b.Matches(), "seed %d", seed)
	}
}

func firstLegalMove(b *engine.Board[string]) (engine.Position, engine.Position, bool) {
	for r := 0; r < b.Height(); r++ {
		for c := 0; c < b.Width(); c++ {
			for _, next := range []engine.Position{pos(r, c+1), pos(r+1, c)} {
				if b.CanMove(pos(r, c), next) {
					return pos(r, c), next, true
				}
			}
		}
	}
	return engine.Position{}, engine.Position{}, false
}

func TestSubscribe(t *testing.T) {
	var seen []engine.Effect[string]
	values := append(chars(threeByFour...), chars("BCD"+"ACA")...)
	b, err := engine.New[string](engine.NewSequenceSupplier(values...), 3, 4)
	require.NoError(t, err)

	unsubscribe := b.Subscribe(func(e engine.Effect[string]) {
		seen = append(seen, e)
	})

	b.CanMove(pos(0, 1), pos(2, 1))
	_, err = b.Move(pos(0, 0), pos(0, 2))
	require.NoError(t, err)
	assert.Empty(t, seen, "validation and illegal moves must not notify listeners")

	effects, err := b.Move(pos(0, 1), pos(2, 1))
	require.NoError(t, err)
	assert.Equal(t, effects, seen)

	unsubscribe()
	seen = nil
	effects, err = b.Move(pos(0, 0), pos(0, 1))
	require.NoError(t, err)
	assert.NotEmpty(t, effects)
	assert.Empty(t, seen)
}

func TestSubscribe_MultipleListenersInOrder(t *testing.T) {
	b := newBoard(t, threeByFour, "BCD")

	var order []string
	b.Subscribe(func(e engine.Effect[string]) { order = append(order, "first:"+string(e.Kind)) })
	b.Subscribe(func(e engine.Effect[string]) { order = append(order, "second:"+string(e.Kind)) })

	_, err := b.Move(pos(0, 1), pos(2, 1))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"first:match", "second:match",
		"first:refill", "second:refill",
	}, order)
}

func TestBoard_String(t *testing.T) {
	b := newBoard(t, []string{"AB", "CD"}, "")
	assert.Equal(t, "A B\nC D\n", b.String())
}

func TestSequenceSupplier(t *testing.T) {
	s := engine.NewSequenceSupplier(1, 2)
	assert.Equal(t, 2, s.Remaining())

	v, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	_, err = s.Next()
	assert.True(t, errors.Is(err, engine.ErrSupplierExhausted))
}

func TestCyclingSupplier(t *testing.T) {
	s := engine.NewCyclingSupplier("A", "B")
	var got []string
	for i := 0; i < 5; i++ {
		v, err := s.Next()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []string{"A", "B", "A", "B", "A"}, got)

	_, err := engine.NewCyclingSupplier[string]().Next()
	assert.ErrorIs(t, err, engine.ErrSupplierExhausted)
}

func TestChainSupplier(t *testing.T) {
	boom := errors.New("boom")
	s := engine.NewChainSupplier[string](
		engine.NewSequenceSupplier("A"),
		engine.NewSequenceSupplier[string](),
		engine.NewSequenceSupplier("B"),
		engine.SupplierFunc[string](func() (string, error) { return "", boom }),
	)

	v, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "A", v)
	v, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, "B", v)
	_, err = s.Next()
	assert.ErrorIs(t, err, boom)
}

type scriptedSource []int

func (s *scriptedSource) IntN(n int) int {
	v := (*s)[0] % n
	*s = (*s)[1:]
	return v
}

func TestRandomSupplier(t *testing.T) {
	src := scriptedSource{2, 0, 1}
	s := engine.NewRandomSupplierFrom([]string{"A", "B", "C"}, &src)

	var got []string
	for i := 0; i < 3; i++ {
		v, err := s.Next()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []string{"C", "A", "B"}, got)

	_, err := engine.NewRandomSupplier[string](nil, 1).Next()
	assert.ErrorIs(t, err, engine.ErrSupplierExhausted)
}

func TestRandomSupplier_SeedIsDeterministic(t *testing.T) {
	alphabet := []string{"A", "B", "C", "D"}
	a := engine.NewRandomSupplier(alphabet, 7)
	b := engine.NewRandomSupplier(alphabet, 7)
	for i := 0; i < 50; i++ {
		va, _ := a.Next()
		vb, _ := b.Next()
		require.Equal(t, va, vb)
	}
}

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/match3/game/engine"
)

func validPreset() *Preset {
	return &Preset{
		Name:        "Tutorial",
		Description: "Three columns, four rows",
		Width:       3,
		Height:      4,
		Tiles:       []string{"A", "B", "C", "D"},
		Layout:      []string{"ABA", "DBC", "DAC", "CDD"},
		Refill:      "BCD",
		Seed:        7,
	}
}

func TestValidatePreset(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(p *Preset)
		wantErr string
	}{
		{"Valid", func(p *Preset) {}, ""},
		{"NoLayout", func(p *Preset) { p.Layout = nil }, ""},
		{"MissingName", func(p *Preset) { p.Name = "" }, "name is required"},
		{"MissingDescription", func(p *Preset) { p.Description = "" }, "description is required"},
		{"WidthTooSmall", func(p *Preset) { p.Width = 2 }, "width must be between"},
		{"HeightTooLarge", func(p *Preset) { p.Height = MaxBoardSize + 1 }, "height must be between"},
		{"OneTileKind", func(p *Preset) { p.Tiles = []string{"A"} }, "at least 2 values"},
		{"MultiCharTile", func(p *Preset) { p.Tiles = []string{"A", "BB"} }, "single character"},
		{"DuplicateTile", func(p *Preset) { p.Tiles = []string{"A", "B", "A"} }, "listed twice"},
		{"LayoutRowCount", func(p *Preset) { p.Layout = p.Layout[:3] }, "layout must have 4 rows"},
		{"LayoutRowWidth", func(p *Preset) { p.Layout[1] = "DB" }, "row 2 must have 3 characters"},
		{"LayoutUnknownTile", func(p *Preset) { p.Layout[2] = "DXC" }, "invalid tile 'X' at row 3, col 2"},
		{"RefillUnknownTile", func(p *Preset) { p.Refill = "BZ" }, "invalid refill tile 'Z' at index 1"},
		{"NegativeMaxPasses", func(p *Preset) { p.MaxPasses = -1 }, "max_passes cannot be negative"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPreset()
			tc.mutate(p)

			err := ValidatePreset(p)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation: ")
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidatePreset_Nil(t *testing.T) {
	assert.Error(t, ValidatePreset(nil))
}

func TestPreset_NewBoardUsesLayoutThenRefill(t *testing.T) {
	p := validPreset()

	board, err := p.NewBoard(nil)
	require.NoError(t, err)
	assert.Equal(t, "A B A\nD B C\nD A C\nC D D\n", board.String())

	_, err = board.Move(engine.Position{Row: 0, Col: 1}, engine.Position{Row: 2, Col: 1})
	require.NoError(t, err)
	assert.Equal(t, "B C D\nD B C\nD B C\nC D D\n", board.String())
}

func TestPreset_NewBoardRandomFillIsSeeded(t *testing.T) {
	p := validPreset()
	p.Layout = nil
	p.Refill = ""

	first, err := p.NewBoard(nil)
	require.NoError(t, err)
	second, err := p.NewBoard(nil)
	require.NoError(t, err)

	assert.Equal(t, first.Values(), second.Values())
	for _, row := range first.Values() {
		for _, v := range row {
			assert.Contains(t, p.Tiles, v)
		}
	}
}

func TestPreset_NewBoardRejectsInvalid(t *testing.T) {
	p := validPreset()
	p.Width = 0

	_, err := p.NewBoard(nil)
	require.ErrorIs(t, err, ErrInvalidPreset)
}

func TestPreset_SupplierFallsBackToRandom(t *testing.T) {
	p := validPreset()
	s := p.Supplier()

	var got []string
	for i := 0; i < 20; i++ {
		v, err := s.Next()
		require.NoError(t, err)
		got = append(got, v)
	}

	assert.Equal(t, "ABADBCDACCDDBCD", strings.Join(got[:15], ""))
	for _, v := range got[15:] {
		assert.Contains(t, p.Tiles, v)
	}
}

func TestDefaultPreset_IsValid(t *testing.T) {
	p := DefaultPreset()
	require.NoError(t, ValidatePreset(p))

	board, err := p.NewBoard(nil)
	require.NoError(t, err)
	assert.Equal(t, 8, board.Width())
	assert.Equal(t, 8, board.Height())
}

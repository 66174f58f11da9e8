package engine_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/match3/game/engine"
)

// formatTrace renders effects one per line; refill snapshots follow indented
func formatTrace(effects []engine.Effect[string]) string {
	var sb strings.Builder
	for _, e := range effects {
		switch e.Kind {
		case engine.MatchEffect:
			fmt.Fprintf(&sb, "%s %s %s %v\n", e.Kind, e.Axis, e.Value, e.Positions)
		case engine.RefillEffect:
			fmt.Fprintf(&sb, "%s\n", e.Kind)
			for _, row := range e.Board {
				fmt.Fprintf(&sb, "  %s\n", strings.Join(row, " "))
			}
		}
	}
	return sb.String()
}

func TestMove_GoldenTraces(t *testing.T) {
	cases := []struct {
		name     string
		rows     []string
		refill   string
		from, to engine.Position
	}{
		{
			name:   "cascade",
			rows:   threeByFour,
			refill: "BBB" + "ACACB",
			from:   pos(0, 1),
			to:     pos(2, 1),
		},
		{
			name: "shared_tile",
			rows: []string{
				"ABXC",
				"CDXA",
				"XXYD",
				"BAXC",
			},
			refill: "EFGHI",
			from:   pos(2, 2),
			to:     pos(3, 2),
		},
	}

	g := goldie.New(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBoard(t, tc.rows, tc.refill)

			effects, err := b.Move(tc.from, tc.to)
			require.NoError(t, err)

			g.Assert(t, tc.name, []byte(formatTrace(effects)))
		})
	}
}

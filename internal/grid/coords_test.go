package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLayoutRoundTrip(t *testing.T) {
	for _, l := range []Layout{{1, 1}, {3, 4}, {4, 3}, {1, 7}, {7, 1}} {
		for i := 0; i < l.Length(); i++ {
			at, err := l.Coordinates(i)
			require.NoError(t, err)
			require.Equal(t, i, l.Index(at))
		}
	}
}

func TestLayoutCoordinatesOutOfRange(t *testing.T) {
	l := Layout{Rows: 3, Cols: 4}
	for _, i := range []int{-1, 12, 100} {
		_, err := l.Coordinates(i)
		require.ErrorIs(t, err, ErrOutOfRange)
	}
	_, err := Layout{}.Coordinates(0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestLayoutAt(t *testing.T) {
	l := Layout{Rows: 3, Cols: 4}

	at, err := l.At(2, 3)
	require.NoError(t, err)
	require.Equal(t, Coordinates{Row: 2, Col: 3}, at)
	require.Equal(t, 11, l.Index(at))

	for _, rc := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 4}} {
		_, err := l.At(rc[0], rc[1])
		require.ErrorIs(t, err, ErrOutOfRange)
	}
}

// 0  1  2  3
// 4  5  6  7
// 8  9  10 11
func TestLayoutNeighbor(t *testing.T) {
	l := Layout{Rows: 3, Cols: 4}

	tests := []struct {
		index int
		d     Direction
		want  int
		ok    bool
	}{
		{5, Up, 1, true},
		{5, Down, 9, true},
		{5, Left, 4, true},
		{5, Right, 6, true},
		{1, Up, 0, false},
		{9, Down, 0, false},
		{4, Left, 0, false},
		{7, Right, 0, false},
		{3, Right, 0, false},
		{8, Left, 0, false},
		{-1, Down, 0, false},
		{12, Up, 0, false},
	}
	for _, tc := range tests {
		got, ok := l.Neighbor(tc.index, tc.d)
		require.Equal(t, tc.ok, ok, "neighbor(%d, %d)", tc.index, tc.d)
		if tc.ok {
			require.Equal(t, tc.want, got, "neighbor(%d, %d)", tc.index, tc.d)
		}
	}
}

func TestLayoutNeighborSymmetry(t *testing.T) {
	l := Layout{Rows: 4, Cols: 5}
	for i := 0; i < l.Length(); i++ {
		for _, d := range Directions {
			n, ok := l.Neighbor(i, d)
			if !ok {
				continue
			}
			back, ok := l.Neighbor(n, Opposite(d))
			require.True(t, ok)
			require.Equal(t, i, back)
		}
	}
}

package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCellTypeCodec(t *testing.T) {
	for _, v := range CellTypes {
		code, err := EncodeCellType(v)
		require.NoError(t, err)
		got, err := DecodeCellType(code)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	_, err := EncodeCellType(CellType(42))
	require.ErrorIs(t, err, ErrDecode)
	_, err = EncodeCellType(CellType(-1))
	require.ErrorIs(t, err, ErrDecode)

	for _, bad := range []string{"", "City", "CITY", "wall", " city"} {
		_, err := DecodeCellType(bad)
		require.ErrorIs(t, err, ErrDecode, "code %q", bad)
	}
}

func TestDirectionCodec(t *testing.T) {
	for _, d := range Directions {
		code, err := EncodeDirection(d)
		require.NoError(t, err)
		got, err := DecodeDirection(code)
		require.NoError(t, err)
		require.Equal(t, d, got)
	}

	_, err := EncodeDirection(Direction(7))
	require.ErrorIs(t, err, ErrDecode)
	_, err = DecodeDirection("Up")
	require.ErrorIs(t, err, ErrDecode)
}

func TestDirectionOffsets(t *testing.T) {
	tests := []struct {
		d          Direction
		dRow, dCol int
	}{
		{Up, -1, 0},
		{Down, 1, 0},
		{Left, 0, -1},
		{Right, 0, 1},
	}
	for _, tc := range tests {
		r, c := Offset(tc.d)
		require.Equal(t, tc.dRow, r)
		require.Equal(t, tc.dCol, c)

		or, oc := Offset(Opposite(tc.d))
		require.Equal(t, -tc.dRow, or)
		require.Equal(t, -tc.dCol, oc)
		require.Equal(t, tc.d, Opposite(Opposite(tc.d)))
	}
	require.Equal(t, Direction(9), Opposite(Direction(9)))
}

func TestIsImpassable(t *testing.T) {
	require.True(t, IsImpassable(Mountain))
	for _, v := range []CellType{Open, City, General} {
		require.False(t, IsImpassable(v))
	}
}

package grid

import "fmt"

// Direction is one of the four orthogonal moves between cells.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions is the order used by neighbor enumeration.
var Directions = [...]Direction{Up, Down, Left, Right}

var directionCodes = [...]string{
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

// unit offsets as (row, col)
var directionOffsets = [...][2]int{
	Up:    {-1, 0},
	Down:  {1, 0},
	Left:  {0, -1},
	Right: {0, 1},
}

func validDirection(d Direction) bool {
	return d >= Up && int(d) < len(directionCodes)
}

// EncodeDirection returns the wire code of d.
func EncodeDirection(d Direction) (string, error) {
	if !validDirection(d) {
		return "", fmt.Errorf("%w: direction %d", ErrDecode, int(d))
	}
	return directionCodes[d], nil
}

// DecodeDirection parses a wire code. Codes are case-sensitive.
func DecodeDirection(code string) (Direction, error) {
	for i, c := range directionCodes {
		if c == code {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: direction %q", ErrDecode, code)
}

// Offset returns the unit step of d as a (row, col) delta.
func Offset(d Direction) (dRow, dCol int) {
	if !validDirection(d) {
		return 0, 0
	}
	o := directionOffsets[d]
	return o[0], o[1]
}

// Opposite returns the reverse of d. Unknown values are returned as is.
func Opposite(d Direction) Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

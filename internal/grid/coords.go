package grid

import "fmt"

// Coordinates is a (row, col) position. Build it with Layout.At so it is
// known to be in range.
type Coordinates struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Layout is the pure coordinate system of a rows x cols grid stored
// row-major.
type Layout struct {
	Rows int
	Cols int
}

// MaxCells bounds how many cells a grid will allocate.
const MaxCells = 1 << 20

func (l Layout) Length() int {
	return l.Rows * l.Cols
}

// Check reports whether a grid can be allocated with layout l. Rows and
// Cols are bounded separately so a zero-width layout cannot ask for an
// unbounded row slice, and the product is compared by division so it
// never overflows.
func (l Layout) Check() error {
	if l.Rows < 0 || l.Cols < 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrValidation, l.Rows, l.Cols)
	}
	if l.Rows > MaxCells || l.Cols > MaxCells || (l.Cols != 0 && l.Rows > MaxCells/l.Cols) {
		return fmt.Errorf("%w: dimensions %dx%d exceed %d cells", ErrValidation, l.Rows, l.Cols, MaxCells)
	}
	return nil
}

func (l Layout) Valid(index int) bool {
	return index >= 0 && index < l.Length()
}

// Coordinates converts a linear index into (row, col).
func (l Layout) Coordinates(index int) (Coordinates, error) {
	if !l.Valid(index) {
		return Coordinates{}, fmt.Errorf("%w: index %d not in [0, %d)", ErrOutOfRange, index, l.Length())
	}
	return Coordinates{Row: index / l.Cols, Col: index % l.Cols}, nil
}

// At validates and builds a coordinate pair.
func (l Layout) At(row, col int) (Coordinates, error) {
	if row < 0 || row >= l.Rows || col < 0 || col >= l.Cols {
		return Coordinates{}, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrOutOfRange, row, col, l.Rows, l.Cols)
	}
	return Coordinates{Row: row, Col: col}, nil
}

// Index converts coordinates back into a linear index. It does not check
// bounds.
func (l Layout) Index(c Coordinates) int {
	return c.Row*l.Cols + c.Col
}

// Neighbor returns the index one step from index in direction d, or false
// when index is invalid or the step leaves the grid.
func (l Layout) Neighbor(index int, d Direction) (int, bool) {
	if !l.Valid(index) {
		return 0, false
	}
	col := index % l.Cols
	row := index / l.Cols
	switch d {
	case Up:
		if row == 0 {
			return 0, false
		}
		return index - l.Cols, true
	case Down:
		if row == l.Rows-1 {
			return 0, false
		}
		return index + l.Cols, true
	case Left:
		if col == 0 {
			return 0, false
		}
		return index - 1, true
	case Right:
		if col == l.Cols-1 {
			return 0, false
		}
		return index + 1, true
	}
	return 0, false
}

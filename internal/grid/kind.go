package grid

import (
	"fmt"
)

// CellType is the terrain or role of a cell.
type CellType int

const (
	Mountain CellType = iota // impassable
	Open
	City
	General
)

var cellTypeCodes = [...]string{
	Mountain: "mountain",
	Open:     "open",
	City:     "city",
	General:  "general",
}

// CellTypes lists every variant in declaration order.
var CellTypes = [...]CellType{Mountain, Open, City, General}

func validCellType(t CellType) bool {
	return t >= Mountain && int(t) < len(cellTypeCodes)
}

// EncodeCellType returns the wire code for t.
func EncodeCellType(t CellType) (string, error) {
	if !validCellType(t) {
		return "", fmt.Errorf("%w: cell type %d", ErrDecode, int(t))
	}
	return cellTypeCodes[t], nil
}

// DecodeCellType parses a case-sensitive wire code.
func DecodeCellType(code string) (CellType, error) {
	for i, c := range cellTypeCodes {
		if c == code {
			return CellType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: cell type %q", ErrDecode, code)
}

// IsImpassable reports whether moves into t are blocked.
func IsImpassable(t CellType) bool {
	return t == Mountain
}

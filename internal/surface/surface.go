package surface

import (
	"fmt"
	"strconv"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
)

// Node is a handle to one cell node on a surface.
type Node int

// Surface is whatever displays the grid. Cell attributes are plain strings;
// the displayed text holds the unit count.
type Surface interface {
	CreateCell() Node
	AppendRow(nodes []Node)
	RemoveRows()
	Attr(n Node, key string) (string, bool)
	SetAttr(n Node, key, value string)
	RemoveAttr(n Node, key string)
	Text(n Node) string
	SetText(n Node, text string)
	Locate(n Node) (row, col int, ok bool)
}

const (
	AttrKind     = "kind"
	AttrOwner    = "owner"
	AttrVisible  = "visible"
	AttrSelected = "selected"
)

// Decode reads a node's attributes back into a View, failing with
// grid.ErrValidation on anything the grid could not have written. Index is
// left at -1; Row and Col come from Locate.
func Decode(s Surface, n Node) (grid.View, error) {
	v := grid.View{Index: -1, Row: -1, Col: -1}
	if row, col, ok := s.Locate(n); ok {
		v.Row, v.Col = row, col
	}

	kind := grid.Open
	if code, ok := s.Attr(n, AttrKind); ok {
		k, err := grid.DecodeCellType(code)
		if err != nil {
			return grid.View{}, fmt.Errorf("%w: %w", grid.ErrValidation, err)
		}
		kind = k
	}
	v.Kind, _ = grid.EncodeCellType(kind)

	var err error
	if text := s.Text(n); text != "" {
		if v.Units, err = count("units", text); err != nil {
			return grid.View{}, err
		}
	}
	if raw, ok := s.Attr(n, AttrOwner); ok {
		if v.Owner, err = count(AttrOwner, raw); err != nil {
			return grid.View{}, err
		}
	}
	if v.Visible, err = flag(s, n, AttrVisible); err != nil {
		return grid.View{}, err
	}
	if v.Selected, err = flag(s, n, AttrSelected); err != nil {
		return grid.View{}, err
	}
	return v, nil
}

func count(name, raw string) (*int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %s %q", grid.ErrValidation, name, raw)
	}
	return &n, nil
}

func flag(s Surface, n Node, key string) (bool, error) {
	raw, ok := s.Attr(n, key)
	if !ok {
		return false, nil
	}
	switch raw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s %q", grid.ErrValidation, key, raw)
}

package grid

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange = errors.New("index out of range")
	ErrValidation = errors.New("invalid cell attribute")
	ErrDecode     = errors.New("unknown code")
	ErrDetached   = errors.New("cell is not attached to a grid")
)

// Observer is notified of every change to a grid's cells.
type Observer interface {
	// Reset is called after the grid is (re)allocated or cleared.
	Reset(rows, cols int)
	CellChanged(v View)
}

// Grid is the rectangular collection of cells plus the single current
// selection. Rows are stored row-major and all have the same width.
type Grid struct {
	rows      [][]*Cell
	selected  int
	active    bool
	observers []Observer
}

func New() *Grid {
	return &Grid{}
}

// Observe registers o for change notifications.
func (g *Grid) Observe(o Observer) {
	g.observers = append(g.observers, o)
}

func (g *Grid) Height() int {
	return len(g.rows)
}

// Width is the length of the first row, 0 for an empty grid.
func (g *Grid) Width() int {
	if len(g.rows) == 0 {
		return 0
	}
	return len(g.rows[0])
}

func (g *Grid) Length() int {
	return g.Height() * g.Width()
}

func (g *Grid) Layout() Layout {
	return Layout{Rows: g.Height(), Cols: g.Width()}
}

func (g *Grid) IsValidIndex(i int) bool {
	return g.Layout().Valid(i)
}

func (g *Grid) Coordinates(i int) (Coordinates, error) {
	return g.Layout().Coordinates(i)
}

// Cell returns the cell at i or ErrOutOfRange.
func (g *Grid) Cell(i int) (*Cell, error) {
	if !g.IsValidIndex(i) {
		return nil, fmt.Errorf("%w: index %d not in [0, %d)", ErrOutOfRange, i, g.Length())
	}
	w := g.Width()
	return g.rows[i/w][i%w], nil
}

// SafeCell is Cell without the error: it returns nil for an invalid index.
func (g *Grid) SafeCell(i int) *Cell {
	c, err := g.Cell(i)
	if err != nil {
		return nil
	}
	return c
}

// Selected returns the recorded selection index and whether a cell is
// currently selected. After selecting an invalid index the previous value is
// kept but reported inactive.
func (g *Grid) Selected() (int, bool) {
	return g.selected, g.active
}

// Select makes i the selected cell. The previous selection is always cleared;
// an invalid i then leaves nothing selected.
func (g *Grid) Select(i int) {
	prev := g.SafeCell(g.selected)
	wasActive := g.active
	g.active = false
	if wasActive && prev != nil {
		g.notify(prev)
	}

	next := g.SafeCell(i)
	if next == nil {
		return
	}
	g.selected, g.active = i, true
	g.notify(next)
}

// NeighborCell returns the neighbor of i in direction d, or nil when i is
// invalid or the neighbor would cross the grid boundary.
func (g *Grid) NeighborCell(i int, d Direction) *Cell {
	n, ok := g.Layout().Neighbor(i, d)
	if !ok {
		return nil
	}
	return g.SafeCell(n)
}

// NeighborCells returns the existing neighbors of i ordered Up, Down, Left,
// Right.
func (g *Grid) NeighborCells(i int) []*Cell {
	var out []*Cell
	for _, d := range Directions {
		if c := g.NeighborCell(i, d); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Init clears the grid and allocates rows*cols default cells. Layouts that
// fail Layout.Check leave the grid untouched.
func (g *Grid) Init(rows, cols int) error {
	if err := (Layout{Rows: rows, Cols: cols}).Check(); err != nil {
		return err
	}
	g.clear()
	g.rows = make([][]*Cell, rows)
	for r := range g.rows {
		row := make([]*Cell, cols)
		for c := range row {
			row[c] = newCell(g, r*cols+c)
		}
		g.rows[r] = row
	}
	g.reset()
	return nil
}

// Clear removes all cells, leaving a 0x0 grid.
func (g *Grid) Clear() {
	g.clear()
	g.reset()
}

// Views snapshots every cell in index order.
func (g *Grid) Views() []View {
	out := make([]View, 0, g.Length())
	for _, row := range g.rows {
		for _, c := range row {
			out = append(out, c.View())
		}
	}
	return out
}

// Restore re-initializes the grid to rows x cols and loads views on top of
// the defaults. Missing cells stay default. On error the grid is left empty.
func (g *Grid) Restore(rows, cols int, views []View) error {
	if err := g.Init(rows, cols); err != nil {
		return err
	}
	selected := -1
	for _, v := range views {
		if err := g.load(v); err != nil {
			g.Clear()
			return err
		}
		if v.Selected {
			selected = v.Index
		}
	}
	if selected >= 0 {
		g.Select(selected)
	}
	return nil
}

func (g *Grid) load(v View) error {
	c, err := g.Cell(v.Index)
	if err != nil {
		return err
	}
	kind, err := DecodeCellType(v.Kind)
	if err != nil {
		return fmt.Errorf("%w: cell %d: %w", ErrValidation, v.Index, err)
	}
	if v.Units != nil && *v.Units < 0 {
		return fmt.Errorf("%w: cell %d units %d", ErrValidation, v.Index, *v.Units)
	}
	if v.Owner != nil && *v.Owner < 0 {
		return fmt.Errorf("%w: cell %d owner %d", ErrValidation, v.Index, *v.Owner)
	}

	c.kind = kind
	c.units, c.hasUnits = 0, false
	if v.Units != nil {
		c.units, c.hasUnits = *v.Units, true
	}
	c.owner, c.hasOwner = 0, false
	if v.Owner != nil {
		c.owner, c.hasOwner = *v.Owner, true
	}
	c.visible = v.Visible
	c.changed()
	return nil
}

func (g *Grid) clear() {
	for _, row := range g.rows {
		for _, c := range row {
			c.detach()
		}
	}
	g.rows = nil
	g.selected, g.active = 0, false
}

func (g *Grid) reset() {
	rows, cols := g.Height(), g.Width()
	for _, o := range g.observers {
		o.Reset(rows, cols)
	}
	// push the defaults so observers start in sync
	for _, row := range g.rows {
		for _, c := range row {
			g.notify(c)
		}
	}
}

func (g *Grid) notify(c *Cell) {
	if len(g.observers) == 0 {
		return
	}
	v := c.View()
	for _, o := range g.observers {
		o.CellChanged(v)
	}
}

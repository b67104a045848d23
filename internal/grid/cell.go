package grid

import "fmt"

// Cell is the observable state of one grid position. Cells are created and
// owned by a Grid; selection is not stored here but derived from the Grid.
type Cell struct {
	grid  *Grid
	index int

	kind     CellType
	units    int
	hasUnits bool
	owner    int
	hasOwner bool
	visible  bool
}

// View is an immutable copy of a cell's attributes.
type View struct {
	Index    int    `json:"index"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Kind     string `json:"kind"`
	Units    *int   `json:"units,omitempty"`
	Owner    *int   `json:"owner,omitempty"`
	Visible  bool   `json:"visible"`
	Selected bool   `json:"selected"`
}

// IsDefault reports whether v carries only default attribute values.
func (v View) IsDefault() bool {
	return v.Kind == cellTypeCodes[Open] && v.Units == nil && v.Owner == nil && !v.Visible && !v.Selected
}

func newCell(g *Grid, index int) *Cell {
	return &Cell{grid: g, index: index, kind: Open}
}

func (c *Cell) Kind() CellType {
	return c.kind
}

// SetKind stores t, failing with ErrValidation for an unknown variant.
func (c *Cell) SetKind(t CellType) error {
	if !validCellType(t) {
		return fmt.Errorf("%w: kind %d", ErrValidation, int(t))
	}
	c.kind = t
	c.changed()
	return nil
}

// ClearKind resets the kind to its default, Open.
func (c *Cell) ClearKind() {
	c.kind = Open
	c.changed()
}

// Units returns the army count and whether it is known.
func (c *Cell) Units() (int, bool) {
	return c.units, c.hasUnits
}

func (c *Cell) SetUnits(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: units %d is negative", ErrValidation, n)
	}
	c.units, c.hasUnits = n, true
	c.changed()
	return nil
}

func (c *Cell) ClearUnits() {
	c.units, c.hasUnits = 0, false
	c.changed()
}

// Owner returns the owning player id and whether the cell is owned.
func (c *Cell) Owner() (int, bool) {
	return c.owner, c.hasOwner
}

func (c *Cell) SetOwner(player int) error {
	if player < 0 {
		return fmt.Errorf("%w: owner %d is negative", ErrValidation, player)
	}
	c.owner, c.hasOwner = player, true
	c.changed()
	return nil
}

func (c *Cell) ClearOwner() {
	c.owner, c.hasOwner = 0, false
	c.changed()
}

func (c *Cell) Visible() bool {
	return c.visible
}

func (c *Cell) SetVisible(v bool) {
	c.visible = v
	c.changed()
}

// Selected is true when the owning grid's active selection is this cell.
func (c *Cell) Selected() bool {
	if c.grid == nil {
		return false
	}
	i, ok := c.grid.Selected()
	return ok && i == c.index
}

// Index is the cell's position within its grid. It fails with ErrDetached
// once the grid has been cleared or re-initialized.
func (c *Cell) Index() (int, error) {
	if c.grid == nil {
		return 0, ErrDetached
	}
	return c.index, nil
}

// Occlude resets the cell to an impassable, unknown tile.
func (c *Cell) Occlude() {
	c.kind = Mountain
	c.units, c.hasUnits = 0, false
	c.owner, c.hasOwner = 0, false
	c.visible = false
	c.changed()
}

// View snapshots the cell. A detached cell reports index -1.
func (c *Cell) View() View {
	v := View{
		Index:    -1,
		Row:      -1,
		Col:      -1,
		Kind:     cellTypeCodes[c.kind],
		Visible:  c.visible,
		Selected: c.Selected(),
	}
	if c.hasUnits {
		n := c.units
		v.Units = &n
	}
	if c.hasOwner {
		n := c.owner
		v.Owner = &n
	}
	if c.grid != nil {
		v.Index = c.index
		if at, err := c.grid.Layout().Coordinates(c.index); err == nil {
			v.Row, v.Col = at.Row, at.Col
		}
	}
	return v
}

func (c *Cell) changed() {
	if c.grid != nil {
		c.grid.notify(c)
	}
}

func (c *Cell) detach() {
	c.grid = nil
}

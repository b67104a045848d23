package controller

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
	"github.com/ManadaHerath/realtime-grid-client/internal/protocol"
)

// Sender delivers outbound commands to the server.
type Sender interface {
	SendCommand(cmd protocol.Command) error
}

// State is the controller's view of the selection: either nothing is
// selected, or Index is.
type State struct {
	Selected bool
	Index    int
}

// Controller turns clicks and direction keys into selection changes and move
// commands. It only touches cells through Grid.Select.
type Controller struct {
	grid *grid.Grid
	out  Sender
}

func New(g *grid.Grid, out Sender) *Controller {
	return &Controller{grid: g, out: out}
}

// State is derived from the grid, which owns the selection.
func (c *Controller) State() State {
	i, ok := c.grid.Selected()
	if !ok {
		return State{}
	}
	return State{Selected: true, Index: i}
}

// CellClicked selects index. Ownership is not checked here; the server
// rejects moves from cells the player does not own.
func (c *Controller) CellClicked(index int) {
	c.grid.Select(index)
}

// DirectionKey moves the selection one step in d and emits the matching
// move command. It reports whether a command was sent. Without a selection,
// at the grid edge, or facing an impassable cell it does nothing.
func (c *Controller) DirectionKey(d grid.Direction) (bool, error) {
	st := c.State()
	if !st.Selected {
		return false, nil
	}
	target := c.grid.NeighborCell(st.Index, d)
	if target == nil || grid.IsImpassable(target.Kind()) {
		return false, nil
	}
	to, err := target.Index()
	if err != nil {
		return false, err
	}
	code, err := grid.EncodeDirection(d)
	if err != nil {
		return false, err
	}

	cmd := protocol.Move(st.Index, code)
	if err := c.out.SendCommand(cmd); err != nil {
		return false, fmt.Errorf("send move from %d %s: %w", st.Index, code, err)
	}
	log.Debug().Int("from", st.Index).Str("direction", code).Int("to", to).Msg("move sent")
	c.grid.Select(to)
	return true, nil
}

// KeyPressed maps a key code to a direction and handles it; other codes are
// ignored.
func (c *Controller) KeyPressed(code string) (bool, error) {
	d, ok := KeyDirection(code)
	if !ok {
		return false, nil
	}
	return c.DirectionKey(d)
}

func (c *Controller) Resign() error {
	return c.out.SendCommand(protocol.Resign())
}

// CancelMoves asks the server to drop this player's queued moves.
func (c *Controller) CancelMoves() error {
	return c.out.SendCommand(protocol.CancelMoves())
}

var keyDirections = map[string]grid.Direction{
	"w": grid.Up,
	"a": grid.Left,
	"s": grid.Down,
	"d": grid.Right,
}

// KeyDirection maps w/a/s/d to a direction.
func KeyDirection(code string) (grid.Direction, bool) {
	d, ok := keyDirections[code]
	return d, ok
}

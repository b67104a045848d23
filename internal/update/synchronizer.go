package update

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
	"github.com/ManadaHerath/realtime-grid-client/internal/protocol"
)

// ErrDimensionMismatch is returned when an envelope reports dimensions that
// differ from an already initialized grid.
var ErrDimensionMismatch = errors.New("update dimensions do not match grid")

// Synchronizer applies inbound envelopes to a grid.
type Synchronizer struct{}

func New() *Synchronizer {
	return &Synchronizer{}
}

// op is one tile write, fully validated before the grid is touched.
type op struct {
	index    int
	occlude  bool
	kind     grid.CellType
	units    int
	hasUnits bool
	owner    int
	hasOwner bool
}

// Apply validates env and every tile in it, sizes an empty grid from the
// envelope, then writes the tiles in order. Nothing is written when any
// part of the envelope is invalid.
func (s *Synchronizer) Apply(g *grid.Grid, env protocol.Envelope) error {
	if err := env.Validate(); err != nil {
		return err
	}

	target := grid.Layout{Rows: *env.Height, Cols: *env.Width}
	if err := target.Check(); err != nil {
		return err
	}
	needInit := g.Length() == 0
	if !needInit && target != g.Layout() {
		return fmt.Errorf("%w: got %dx%d, grid is %dx%d",
			ErrDimensionMismatch, target.Rows, target.Cols, g.Height(), g.Width())
	}

	ops := make([]op, 0, len(env.Tiles))
	for _, t := range env.Tiles {
		o, err := prepare(target, t)
		if err != nil {
			return err
		}
		ops = append(ops, o)
	}

	if needInit {
		if err := g.Init(target.Rows, target.Cols); err != nil {
			return err
		}
	}

	for _, o := range ops {
		c, err := g.Cell(o.index)
		if err != nil {
			return err
		}
		if err := write(c, o); err != nil {
			return fmt.Errorf("tile %d: %w", o.index, err)
		}
	}
	return nil
}

func prepare(l grid.Layout, t protocol.TileUpdate) (op, error) {
	if !l.Valid(t.Index) {
		return op{}, fmt.Errorf("%w: tile index %d not in [0, %d)", grid.ErrOutOfRange, t.Index, l.Length())
	}
	o := op{index: t.Index}
	if t.Patch == nil {
		o.occlude = true
		return o, nil
	}

	o.kind = decodeKind(t.Index, t.Patch.Kind)

	var err error
	if o.units, o.hasUnits, err = count(t.Patch.Units); err != nil {
		return op{}, fmt.Errorf("tile %d units: %w", t.Index, err)
	}
	if o.owner, o.hasOwner, err = count(t.Patch.Owner); err != nil {
		return op{}, fmt.Errorf("tile %d owner: %w", t.Index, err)
	}
	return o, nil
}

// decodeKind falls back to the default kind instead of failing the update.
func decodeKind(index int, raw json.RawMessage) grid.CellType {
	if isAbsent(raw) {
		return grid.Open
	}
	var code string
	if err := json.Unmarshal(raw, &code); err != nil {
		log.Debug().Int("tile", index).RawJSON("kind", raw).Msg("non-string kind, using default")
		return grid.Open
	}
	kind, err := grid.DecodeCellType(code)
	if err != nil {
		log.Debug().Int("tile", index).Str("kind", code).Msg("unknown kind, using default")
		return grid.Open
	}
	return kind
}

// count parses an optional non-negative integer. Only a bare JSON integer
// literal is accepted: no strings, booleans, fractions or exponents.
func count(raw json.RawMessage) (int, bool, error) {
	if isAbsent(raw) {
		return 0, false, nil
	}
	s := string(bytes.TrimSpace(raw))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s is not an integer", grid.ErrValidation, s)
	}
	if n < 0 {
		return 0, false, fmt.Errorf("%w: %d is negative", grid.ErrValidation, n)
	}
	return n, true, nil
}

func isAbsent(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

func write(c *grid.Cell, o op) error {
	if o.occlude {
		c.Occlude()
		return nil
	}
	// the server only patches tiles the player can see
	c.SetVisible(true)
	if err := c.SetKind(o.kind); err != nil {
		return err
	}
	if o.hasUnits {
		if err := c.SetUnits(o.units); err != nil {
			return err
		}
	} else {
		c.ClearUnits()
	}
	if o.hasOwner {
		if err := c.SetOwner(o.owner); err != nil {
			return err
		}
	} else {
		c.ClearOwner()
	}
	return nil
}

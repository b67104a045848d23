package surface

import (
	"errors"
	"testing"

	"github.com/nsf/termbox-go"
	"github.com/stretchr/testify/require"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
)

func mirrored(t *testing.T, rows, cols int) (*grid.Grid, *Memory, *Mirror) {
	t.Helper()
	mem := NewMemory()
	m := NewMirror(mem)
	g := grid.New()
	g.Observe(m)
	require.NoError(t, g.Init(rows, cols))
	return g, mem, m
}

func TestMirrorReset(t *testing.T) {
	_, mem, m := mirrored(t, 2, 3)

	rows := mem.Rows()
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Len(t, row, 3)
	}

	n, ok := m.Node(4)
	require.True(t, ok)
	row, col, ok := mem.Locate(n)
	require.True(t, ok)
	require.Equal(t, 1, row)
	require.Equal(t, 1, col)
	i, ok := m.IndexOf(n)
	require.True(t, ok)
	require.Equal(t, 4, i)

	_, ok = m.Node(6)
	require.False(t, ok)
	_, ok = m.Node(-1)
	require.False(t, ok)
}

func TestMirrorTracksGrid(t *testing.T) {
	g, mem, m := mirrored(t, 3, 3)

	c := g.SafeCell(4)
	require.NoError(t, c.SetKind(grid.City))
	require.NoError(t, c.SetUnits(12))
	require.NoError(t, c.SetOwner(2))
	c.SetVisible(true)
	g.Select(4)

	n, _ := m.Node(4)
	kind, _ := mem.Attr(n, AttrKind)
	require.Equal(t, "city", kind)
	require.Equal(t, "12", mem.Text(n))
	owner, _ := mem.Attr(n, AttrOwner)
	require.Equal(t, "2", owner)
	sel, _ := mem.Attr(n, AttrSelected)
	require.Equal(t, "true", sel)

	for i := 0; i < g.Length(); i++ {
		got, err := m.View(i)
		require.NoError(t, err)
		require.Equal(t, g.SafeCell(i).View(), got)
	}

	g.Select(0)
	c.Occlude()
	got, err := m.View(4)
	require.NoError(t, err)
	require.Equal(t, g.SafeCell(4).View(), got)
	_, ok := mem.Attr(n, AttrSelected)
	require.False(t, ok)
	_, ok = mem.Attr(n, AttrOwner)
	require.False(t, ok)
	require.Empty(t, mem.Text(n))

	_, err = m.View(9)
	require.ErrorIs(t, err, grid.ErrOutOfRange)
}

func TestMirrorReinit(t *testing.T) {
	g, mem, m := mirrored(t, 3, 3)
	require.NoError(t, g.Init(1, 2))
	require.Len(t, mem.Rows(), 1)
	_, ok := m.Node(2)
	require.False(t, ok)

	g.Clear()
	require.Empty(t, mem.Rows())
	_, ok = m.Node(0)
	require.False(t, ok)
}

func TestDecodeStrict(t *testing.T) {
	tests := map[string]func(mem *Memory, n Node){
		"unknown kind":     func(mem *Memory, n Node) { mem.SetAttr(n, AttrKind, "lava") },
		"upper-case kind":  func(mem *Memory, n Node) { mem.SetAttr(n, AttrKind, "City") },
		"negative units":   func(mem *Memory, n Node) { mem.SetText(n, "-1") },
		"fractional units": func(mem *Memory, n Node) { mem.SetText(n, "1.5") },
		"owner text":       func(mem *Memory, n Node) { mem.SetAttr(n, AttrOwner, "red") },
		"visible yes":      func(mem *Memory, n Node) { mem.SetAttr(n, AttrVisible, "yes") },
		"visible one":      func(mem *Memory, n Node) { mem.SetAttr(n, AttrVisible, "1") },
		"selected TRUE":    func(mem *Memory, n Node) { mem.SetAttr(n, AttrSelected, "TRUE") },
	}
	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			mem := NewMemory()
			n := mem.CreateCell()
			corrupt(mem, n)
			_, err := Decode(mem, n)
			require.ErrorIs(t, err, grid.ErrValidation)
		})
	}
}

func TestDecodeDefaults(t *testing.T) {
	mem := NewMemory()
	n := mem.CreateCell()

	v, err := Decode(mem, n)
	require.NoError(t, err)
	require.Equal(t, grid.View{Index: -1, Row: -1, Col: -1, Kind: "open"}, v)

	mem.SetAttr(n, AttrVisible, "false")
	mem.AppendRow([]Node{n})
	v, err = Decode(mem, n)
	require.NoError(t, err)
	require.False(t, v.Visible)
	require.Equal(t, 0, v.Row)
	require.Equal(t, 0, v.Col)
}

func TestMemoryInvalidNode(t *testing.T) {
	mem := NewMemory()
	n := mem.CreateCell()
	mem.RemoveRows()

	mem.SetAttr(n, AttrKind, "city")
	mem.SetText(n, "3")
	_, ok := mem.Attr(n, AttrKind)
	require.False(t, ok)
	require.Empty(t, mem.Text(n))
	_, _, ok = mem.Locate(n)
	require.False(t, ok)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		ev   termbox.Event
		want action
	}{
		{"w", termbox.Event{Type: termbox.EventKey, Ch: 'w'}, action{kind: actKey, code: "w"}},
		{"other rune", termbox.Event{Type: termbox.EventKey, Ch: 'x'}, action{kind: actKey, code: "x"}},
		{"q", termbox.Event{Type: termbox.EventKey, Ch: 'q'}, action{kind: actQuit}},
		{"ctrl+c", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyCtrlC}, action{kind: actQuit}},
		{"esc", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyEsc}, action{kind: actCancel}},
		{"ctrl+r", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyCtrlR}, action{kind: actResign}},
		{"arrow", termbox.Event{Type: termbox.EventKey, Key: termbox.KeyArrowUp}, action{kind: actNone}},
		{"click", termbox.Event{Type: termbox.EventMouse, Key: termbox.MouseLeft, MouseX: 9, MouseY: 2}, action{kind: actClick, x: 9, y: 2}},
		{"right click", termbox.Event{Type: termbox.EventMouse, Key: termbox.MouseRight}, action{kind: actNone}},
		{"resize", termbox.Event{Type: termbox.EventResize}, action{kind: actRedraw}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, translate(tt.ev))
		})
	}

	boom := errors.New("boom")
	require.Equal(t, action{kind: actError, err: boom}, translate(termbox.Event{Type: termbox.EventError, Err: boom}))
}

type sinkRecorder struct {
	clicks  []int
	keys    []string
	cancels int
	resigns int
}

func (s *sinkRecorder) Click(i int) { s.clicks = append(s.clicks, i) }

func (s *sinkRecorder) Key(code string) (bool, error) {
	s.keys = append(s.keys, code)
	return true, nil
}

func (s *sinkRecorder) CancelMoves() error { s.cancels++; return nil }

func (s *sinkRecorder) Resign() error { s.resigns++; return nil }

func TestTerminalHandle(t *testing.T) {
	_, mem, m := mirrored(t, 2, 3)
	term := NewTerminal(mem, m)
	sink := &sinkRecorder{}

	i, ok := term.indexAt(cellWidth*2+1, 1)
	require.True(t, ok)
	require.Equal(t, 5, i)
	_, ok = term.indexAt(cellWidth*3, 0)
	require.False(t, ok)
	_, ok = term.indexAt(0, 2)
	require.False(t, ok)

	for _, a := range []action{
		{kind: actClick, x: 1, y: 1},
		{kind: actClick, x: 50, y: 50},
		{kind: actKey, code: "d"},
		{kind: actCancel},
		{kind: actResign},
		{kind: actRedraw},
	} {
		quit, err := term.handle(a, sink)
		require.NoError(t, err)
		require.False(t, quit)
	}
	require.Equal(t, []int{3}, sink.clicks)
	require.Equal(t, []string{"d"}, sink.keys)
	require.Equal(t, 1, sink.cancels)
	require.Equal(t, 1, sink.resigns)

	quit, err := term.handle(action{kind: actQuit}, sink)
	require.NoError(t, err)
	require.True(t, quit)
	boom := errors.New("boom")
	_, err = term.handle(action{kind: actError, err: boom}, sink)
	require.ErrorIs(t, err, boom)
}

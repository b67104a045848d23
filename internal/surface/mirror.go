package surface

import (
	"strconv"
	"sync"

	"github.com/ManadaHerath/realtime-grid-client/internal/grid"
)

// Mirror keeps a Surface in step with a grid. Register it with
// grid.Observe; it owns one node per cell.
type Mirror struct {
	s Surface

	mu    sync.RWMutex
	nodes []Node
	index map[Node]int
}

func NewMirror(s Surface) *Mirror {
	return &Mirror{s: s, index: make(map[Node]int)}
}

func (m *Mirror) Reset(rows, cols int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.s.RemoveRows()
	m.nodes = make([]Node, 0, rows*cols)
	m.index = make(map[Node]int, rows*cols)
	for r := 0; r < rows; r++ {
		row := make([]Node, cols)
		for c := range row {
			n := m.s.CreateCell()
			m.index[n] = len(m.nodes)
			m.nodes = append(m.nodes, n)
			row[c] = n
		}
		m.s.AppendRow(row)
	}
}

func (m *Mirror) CellChanged(v grid.View) {
	n, ok := m.Node(v.Index)
	if !ok {
		return
	}

	m.s.SetAttr(n, AttrKind, v.Kind)
	if v.Units != nil {
		m.s.SetText(n, strconv.Itoa(*v.Units))
	} else {
		m.s.SetText(n, "")
	}
	if v.Owner != nil {
		m.s.SetAttr(n, AttrOwner, strconv.Itoa(*v.Owner))
	} else {
		m.s.RemoveAttr(n, AttrOwner)
	}
	m.setFlag(n, AttrVisible, v.Visible)
	m.setFlag(n, AttrSelected, v.Selected)
}

// false is stored as absence, matching a fresh node.
func (m *Mirror) setFlag(n Node, key string, on bool) {
	if on {
		m.s.SetAttr(n, key, "true")
		return
	}
	m.s.RemoveAttr(n, key)
}

// Node returns the node mirroring cell i.
func (m *Mirror) Node(i int) (Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.nodes) {
		return 0, false
	}
	return m.nodes[i], true
}

// IndexOf returns the cell index mirrored by n.
func (m *Mirror) IndexOf(n Node) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[n]
	return i, ok
}

// View decodes cell i from the surface.
func (m *Mirror) View(i int) (grid.View, error) {
	n, ok := m.Node(i)
	if !ok {
		return grid.View{}, grid.ErrOutOfRange
	}
	v, err := Decode(m.s, n)
	if err != nil {
		return grid.View{}, err
	}
	v.Index = i
	return v, nil
}

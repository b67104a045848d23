package surface

import "sync"

type memNode struct {
	attrs    map[string]string
	text     string
	row, col int
	placed   bool
}

// Memory is a Surface held in memory. It backs headless runs and is what the
// terminal surface draws from.
type Memory struct {
	mu    sync.RWMutex
	nodes []memNode
	rows  [][]Node
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) CreateCell() Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = append(m.nodes, memNode{attrs: make(map[string]string)})
	return Node(len(m.nodes) - 1)
}

func (m *Memory) AppendRow(nodes []Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := len(m.rows)
	row := make([]Node, 0, len(nodes))
	for c, n := range nodes {
		if !m.valid(n) {
			continue
		}
		m.nodes[n].row, m.nodes[n].col, m.nodes[n].placed = r, c, true
		row = append(row, n)
	}
	m.rows = append(m.rows, row)
}

// RemoveRows drops every row and every node; old handles become invalid.
func (m *Memory) RemoveRows() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	m.nodes = nil
}

func (m *Memory) Attr(n Node, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.valid(n) {
		return "", false
	}
	v, ok := m.nodes[n].attrs[key]
	return v, ok
}

func (m *Memory) SetAttr(n Node, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid(n) {
		m.nodes[n].attrs[key] = value
	}
}

func (m *Memory) RemoveAttr(n Node, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid(n) {
		delete(m.nodes[n].attrs, key)
	}
}

func (m *Memory) Text(n Node) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.valid(n) {
		return ""
	}
	return m.nodes[n].text
}

func (m *Memory) SetText(n Node, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid(n) {
		m.nodes[n].text = text
	}
}

func (m *Memory) Locate(n Node) (int, int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.valid(n) || !m.nodes[n].placed {
		return 0, 0, false
	}
	return m.nodes[n].row, m.nodes[n].col, true
}

// Rows copies the current row layout.
func (m *Memory) Rows() [][]Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]Node, len(m.rows))
	for i, row := range m.rows {
		out[i] = append([]Node(nil), row...)
	}
	return out
}

func (m *Memory) valid(n Node) bool {
	return n >= 0 && int(n) < len(m.nodes)
}

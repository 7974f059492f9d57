package sim

import "sort"

// Grid is the node registry: a lookup arena addressed by identifier and
// grid position. Nodes and controllers reference each other through it
// instead of holding owning pointers, so there are no ownership cycles.
type Grid struct {
	cells map[Position]NodeID
	nodes map[NodeID]*Node
}

// NewGrid creates an empty registry.
func NewGrid() *Grid {
	return &Grid{
		cells: make(map[Position]NodeID),
		nodes: make(map[NodeID]*Node),
	}
}

// Add registers a node in the arena. At most one node occupies a cell;
// a second node at the same position replaces the cell mapping but stays
// addressable by ID.
func (g *Grid) Add(n *Node) {
	g.cells[n.Pos] = n.ID
	g.nodes[n.ID] = n
}

// At returns the node occupying pos, nil when the cell is empty.
func (g *Grid) At(pos Position) *Node {
	id, ok := g.cells[pos]
	if !ok {
		return nil
	}
	return g.nodes[id]
}

// ByID returns the node with the given identifier, nil when unknown.
func (g *Grid) ByID(id NodeID) *Node {
	return g.nodes[id]
}

// Nodes returns every registered node. Iteration order is unspecified;
// callers needing determinism must sort.
func (g *Grid) Nodes() map[NodeID]*Node {
	return g.nodes
}

// MooreNeighbors returns the nodes in the one-cell neighborhood of pos,
// in a fixed (row-major) scan order for determinism.
func (g *Grid) MooreNeighbors(pos Position) []*Node {
	var out []*Node
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if n := g.At(Position{X: pos.X + dx, Y: pos.Y + dy}); n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

// NeighborStatus is one periodic status broadcast. The broadcast channel
// is neither reliable nor ordered: a backlogged neighbor's entry can be
// stale relative to real time, and consumers must filter by age.
type NeighborStatus struct {
	From       NodeID
	Weight     float64
	MeanDelayS float64
	CW         int
	TDynamic   float64
	LastTxTime int64
	TxCount    int
	Pos        Position
	SentAt     int64
}

// NeighborTable stores the most recent broadcast per sender, overwriting
// any previous entry. This is the sole inter-node communication channel.
type NeighborTable struct {
	latest map[NodeID]NeighborStatus
}

// NewNeighborTable creates an empty table.
func NewNeighborTable() *NeighborTable {
	return &NeighborTable{latest: make(map[NodeID]NeighborStatus)}
}

// Store records a broadcast, replacing the sender's previous entry.
func (t *NeighborTable) Store(s NeighborStatus) {
	t.latest[s.From] = s
}

// Fresh returns every stored broadcast no older than maxAge at time now,
// ordered by sender ID so consumers accumulate deterministically.
func (t *NeighborTable) Fresh(now, maxAge int64) []NeighborStatus {
	var out []NeighborStatus
	for _, s := range t.latest {
		if now-s.SentAt <= maxAge {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

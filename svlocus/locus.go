package svlocus

import (
	"github.com/grailbio/svlocus/genome"
)

// Locus is an ordered sequence of Nodes, indexed 0..N-1, forming a connected
// (or single-node) component of the SV evidence graph. It carries the
// locusIndex assigned by its containing SVLocusSet.
//
// Edges never cross locus boundaries: every NodeIndex appearing as an edge
// target in this locus names another node of this same locus.
type Locus struct {
	index int
	nodes []*Node
}

// newLocus returns an empty locus with the given set-assigned index.
func newLocus(index int) *Locus {
	return &Locus{index: index}
}

// Index returns the locus_index assigned by the containing SVLocusSet.
func (l *Locus) Index() int { return l.index }

// Empty reports whether this locus currently holds no nodes -- i.e. it is a
// retained but vacated slot, the result of all its nodes having been
// absorbed into another locus.
func (l *Locus) Empty() bool { return len(l.nodes) == 0 }

// NumNodes returns the number of nodes currently in the locus.
func (l *Locus) NumNodes() int { return len(l.nodes) }

// Node returns the node at idx.
func (l *Locus) Node(idx NodeIndex) *Node { return l.nodes[idx] }

// AddNode appends a new node with the given interval and observation count,
// returning its index.
func (l *Locus) AddNode(iv genome.Interval, count uint16) NodeIndex {
	idx := NodeIndex(len(l.nodes))
	l.nodes = append(l.nodes, newNode(iv, count))
	return idx
}

// AddRemoteNode is AddNode with count=0, for the "far side" node of a
// single-observation locus.
func (l *Locus) AddRemoteNode(iv genome.Interval) NodeIndex {
	return l.AddNode(iv, 0)
}

// SetNodeEvidence sets the evidence range of the node at idx.
func (l *Locus) SetNodeEvidence(idx NodeIndex, rng genome.Interval) {
	l.nodes[idx].EvidenceRange = rng
}

// LinkNodes inserts one directed edge in each direction between from and
// to.
//
// REQUIRES: no edge in either direction already exists between from and
// to. Only from->to carries the initial count; to->from starts at
// toCount (conventionally 0), per SingleObservationLocus's single-count
// edge.
func (l *Locus) LinkNodes(from, to NodeIndex, fromCount, toCount uint16) {
	fn := l.nodes[from]
	tn := l.nodes[to]
	if _, ok := fn.Edges[to]; ok {
		panic("svlocus: LinkNodes: edge already exists")
	}
	if _, ok := tn.Edges[from]; ok {
		panic("svlocus: LinkNodes: edge already exists")
	}
	fn.Edges[to] = Edge{Count: fromCount}
	tn.Edges[from] = Edge{Count: toCount}
}

// addDirectedCount accumulates count into the from->to edge, creating both
// from->to and to->from (the latter at count 0, if not already present) so
// the edge-symmetry invariant holds even when only one direction has ever
// carried evidence.
func (l *Locus) addDirectedCount(from, to NodeIndex, count uint16) {
	fn := l.nodes[from]
	if e, ok := fn.Edges[to]; ok {
		fn.Edges[to] = e.addSaturating(count)
	} else {
		fn.Edges[to] = Edge{Count: count}
	}
	if from == to {
		return
	}
	tn := l.nodes[to]
	if _, ok := tn.Edges[from]; !ok {
		tn.Edges[from] = Edge{Count: 0}
	}
}

// TotalObservationCount sums Count over every node in the locus.
func (l *Locus) TotalObservationCount() uint64 {
	var total uint64
	for _, n := range l.nodes {
		total += uint64(n.Count)
	}
	return total
}

// TotalEdgeCount sums the count of every directed edge in the locus (so a
// symmetric pair A->B, B->A contributes both of its counts).
func (l *Locus) TotalEdgeCount() uint64 {
	var total uint64
	for _, n := range l.nodes {
		for _, e := range n.Edges {
			total += uint64(e.Count)
		}
	}
	return total
}

// NumDirectedEdges returns the number of directed edge entries in the
// locus -- a symmetric pair A->B, B->A counts as 2, regardless of either
// edge's Count.
func (l *Locus) NumDirectedEdges() int {
	total := 0
	for _, n := range l.nodes {
		total += len(n.Edges)
	}
	return total
}

// GetNodeInCount sums the counts of every in-edge pointing at node idx
// (i.e. every other node's edge targeting idx).
func (l *Locus) GetNodeInCount(idx NodeIndex) uint64 {
	var total uint64
	for i, n := range l.nodes {
		if NodeIndex(i) == idx {
			continue
		}
		if e, ok := n.Edges[idx]; ok {
			total += uint64(e.Count)
		}
	}
	return total
}

// FindConnected returns the set of node indices reachable from start via
// any edge, ignoring direction. Used to validate locus connectedness.
func (l *Locus) FindConnected(start NodeIndex) map[NodeIndex]bool {
	visited := make(map[NodeIndex]bool)
	stack := []NodeIndex{start}
	visited[start] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := l.nodes[cur]
		for target := range n.Edges {
			if !visited[target] {
				visited[target] = true
				stack = append(stack, target)
			}
		}
		// Edges are stored per-direction on each endpoint, so an in-edge
		// y->cur is already discoverable by having started the walk from y
		// (undirected connectivity); but to make FindConnected correct
		// regardless of start node, also examine predecessors' out-edges
		// aimed at cur within the same pass.
		for i, m := range l.nodes {
			ni := NodeIndex(i)
			if visited[ni] {
				continue
			}
			if _, ok := m.Edges[cur]; ok {
				visited[ni] = true
				stack = append(stack, ni)
			}
		}
	}
	return visited
}

// IsConnected reports whether every node of the locus is reachable from
// node 0 (the locus has length 1 or its interval graph is connected).
func (l *Locus) IsConnected() bool {
	if len(l.nodes) <= 1 {
		return true
	}
	return len(l.FindConnected(0)) == len(l.nodes)
}

// mergeNode folds the node at "from" into the node at "to", per the
// mergeNode algorithm (spec §4.4):
//  1. every out-edge from->x has its count added into to->x;
//  2. every in-edge y->from is retargeted to y->to, summing counts;
//  3. intervals and evidence ranges are unioned;
//  4. to.Count += from.Count (saturating);
//  5. from is erased.
//
// REQUIRES: from != to, and both name nodes in this locus.
func (l *Locus) mergeNode(from, to NodeIndex) {
	if from == to {
		panic("svlocus: mergeNode: from == to")
	}
	fn := l.nodes[from]
	tn := l.nodes[to]

	// Step 1: from's out-edges fold into to's out-edges.
	for x, e := range fn.Edges {
		target := x
		if target == from {
			// A self-loop on "from" becomes a self-loop on "to".
			target = to
		}
		if existing, ok := tn.Edges[target]; ok {
			tn.Edges[target] = existing.addSaturating(e.Count)
		} else {
			tn.Edges[target] = e
		}
	}

	// Step 2: every other node y with an edge y->from is retargeted to
	// y->to (including y==to itself, which collapses to a self-loop).
	for i, yn := range l.nodes {
		y := NodeIndex(i)
		if y == from {
			continue
		}
		e, ok := yn.Edges[from]
		if !ok {
			continue
		}
		delete(yn.Edges, from)
		target := to
		if y == to {
			// to->from becomes a self-loop on to.
			if existing, ok := tn.Edges[to]; ok {
				tn.Edges[to] = existing.addSaturating(e.Count)
			} else {
				tn.Edges[to] = e
			}
			continue
		}
		if existing, ok := yn.Edges[target]; ok {
			yn.Edges[target] = existing.addSaturating(e.Count)
		} else {
			yn.Edges[target] = e
		}
	}

	// Step 3: union intervals and evidence ranges.
	tn.Interval = tn.Interval.Union(fn.Interval)
	tn.EvidenceRange = tn.EvidenceRange.Union(fn.EvidenceRange)

	// Step 4: accumulate counts.
	tn.Count = addCountSaturating(tn.Count, fn.Count)

	// Step 5: erase "from" and shift subsequent indices down by one.
	l.eraseNode(from)
}

// eraseNode removes the node at idx, shifting every later node's index down
// by one and remapping every edge target accordingly. Any dangling edge
// still pointing at idx (there should be none once a caller has relinked
// them, e.g. via mergeNode) is silently dropped.
func (l *Locus) eraseNode(idx NodeIndex) {
	l.nodes = append(l.nodes[:idx], l.nodes[idx+1:]...)
	for _, n := range l.nodes {
		if len(n.Edges) == 0 {
			continue
		}
		remapped := make(map[NodeIndex]Edge, len(n.Edges))
		for target, e := range n.Edges {
			switch {
			case target == idx:
				continue
			case target > idx:
				remapped[target-1] = e
			default:
				remapped[target] = e
			}
		}
		n.Edges = remapped
	}
}

// mergeSelfOverlap repeatedly finds a pair of nodes in this locus whose
// intervals intersect and merges them, until no such pair remains
// (idempotent fixpoint per spec §8 property 1).
func (l *Locus) mergeSelfOverlap() {
	for {
		merged := false
		for i := 0; i < len(l.nodes) && !merged; i++ {
			for j := i + 1; j < len(l.nodes); j++ {
				if l.nodes[i].Interval.Intersects(l.nodes[j].Interval) {
					l.mergeNode(NodeIndex(j), NodeIndex(i))
					merged = true
					break
				}
			}
		}
		if !merged {
			return
		}
	}
}

// clean removes noise: a node is noise iff every in-edge and out-edge it
// has carries count < minMergeEdgeCount. Noise in-edges are removed; nodes
// that become edgeless are deleted. Returns the total evidence count
// removed.
func (l *Locus) clean(minMergeEdgeCount uint16) uint64 {
	var removed uint64
	for i := 0; i < len(l.nodes); i++ {
		n := l.nodes[i]
		isNoise := true
		for _, e := range n.Edges {
			if e.Count >= minMergeEdgeCount {
				isNoise = false
				break
			}
		}
		if isNoise {
			for _, yn := range l.nodes {
				if e, ok := yn.Edges[NodeIndex(i)]; ok && e.Count >= minMergeEdgeCount {
					isNoise = false
					break
				}
			}
		}
		if !isNoise {
			continue
		}
		for _, yn := range l.nodes {
			if e, ok := yn.Edges[NodeIndex(i)]; ok {
				removed += uint64(e.Count)
				delete(yn.Edges, NodeIndex(i))
			}
		}
		for x, e := range n.Edges {
			removed += uint64(e.Count)
			delete(n.Edges, x)
		}
		removed += uint64(n.Count)
		l.eraseNode(NodeIndex(i))
		i--
	}
	return removed
}

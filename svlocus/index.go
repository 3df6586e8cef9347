package svlocus

import (
	"sort"

	"github.com/grailbio/svlocus/genome"
)

// nodeRef names a single node by its (locus, node-within-locus) address.
type nodeRef struct {
	Locus int
	Node  NodeIndex
}

// indexEntry is one row of the inodes index: the node's current interval,
// plus its address.
type indexEntry struct {
	Interval genome.Interval
	Ref      nodeRef
}

// intervalIndex is the SVLocusSet.inodes structure: an ordered map keyed by
// (ChromID, Begin) supporting efficient interval-intersection lookups via
// forward/backward probing from the lower bound of a query, grounded on the
// sorted-endpoint search pattern of a classic interval-union scanner.
//
// It is rebuilt wholesale for a locus whenever that locus's node set
// changes shape (nodes added, merged, or erased) rather than patched
// incrementally; see DESIGN.md for why this trade favors correctness over
// micro-optimization here.
type intervalIndex struct {
	entries []indexEntry // sorted by (ChromID, Begin)
}

func (idx *intervalIndex) less(a, b indexEntry) bool {
	if a.Interval.ChromID != b.Interval.ChromID {
		return a.Interval.ChromID < b.Interval.ChromID
	}
	return a.Interval.Begin < b.Interval.Begin
}

// lowerBound returns the index of the first entry >= (chrom, begin) in
// (ChromID, Begin) order.
func (idx *intervalIndex) lowerBound(chrom uint32, begin int64) int {
	return sort.Search(len(idx.entries), func(i int) bool {
		e := idx.entries[i].Interval
		if e.ChromID != chrom {
			return e.ChromID > chrom
		}
		return e.Begin >= begin
	})
}

func (idx *intervalIndex) insert(e indexEntry) {
	p := idx.lowerBound(e.Interval.ChromID, e.Interval.Begin)
	// Keep entries for the same (chrom,begin) in a stable order by
	// inserting after any existing ties.
	for p < len(idx.entries) && idx.entries[p].Interval.ChromID == e.Interval.ChromID && idx.entries[p].Interval.Begin == e.Interval.Begin {
		p++
	}
	idx.entries = append(idx.entries, indexEntry{})
	copy(idx.entries[p+1:], idx.entries[p:])
	idx.entries[p] = e
}

// removeLocus deletes every entry belonging to locus.
func (idx *intervalIndex) removeLocus(locus int) {
	out := idx.entries[:0]
	for _, e := range idx.entries {
		if e.Ref.Locus != locus {
			out = append(out, e)
		}
	}
	idx.entries = out
}

// intersecting returns the (locus, node) addresses of every indexed node
// whose interval intersects q, in deterministic (ChromID, Begin) order.
func (idx *intervalIndex) intersecting(q genome.Interval) []nodeRef {
	if q.Empty() || len(idx.entries) == 0 {
		return nil
	}
	p := idx.lowerBound(q.ChromID, q.Begin)

	var before []nodeRef
	for i := p - 1; i >= 0; i-- {
		e := idx.entries[i]
		if e.Interval.ChromID != q.ChromID || !e.Interval.Intersects(q) {
			break
		}
		before = append(before, e.Ref)
	}
	// before was accumulated in descending-Begin order; reverse it so the
	// combined result stays sorted by (ChromID, Begin).
	for i, j := 0, len(before)-1; i < j; i, j = i+1, j-1 {
		before[i], before[j] = before[j], before[i]
	}

	out := before
	for i := p; i < len(idx.entries); i++ {
		e := idx.entries[i]
		if e.Interval.ChromID != q.ChromID || e.Interval.Begin >= q.End {
			break
		}
		out = append(out, e.Ref)
	}
	return out
}

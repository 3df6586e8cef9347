// Package svedge enumerates the unordered edges of a finalized
// svlocus.SVLocusSet, partitioned into disjoint, reproducible bins for
// sharded downstream scoring.
package svedge

import (
	"context"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/svlocus/genome"
	"github.com/grailbio/svlocus/svlocus"
)

// EdgeInfo names one unordered edge of the graph by its endpoints, plus a
// cheap-to-copy snapshot of both nodes' intervals and evidence ranges so a
// sharded consumer never needs to re-dereference into the (possibly
// concurrently iterated) set.
type EdgeInfo struct {
	LocusIdx int
	NodeA    svlocus.NodeIndex
	NodeB    svlocus.NodeIndex

	IntervalA, IntervalB           genome.Interval
	EvidenceRangeA, EvidenceRangeB genome.Interval

	// CountAB is the directed edge count from NodeA to NodeB, CountBA the
	// reverse direction. A self-loop (NodeA == NodeB) carries its count in
	// CountAB only; CountBA is 0.
	CountAB, CountBA uint16
}

// ErrCancelled is returned by CancelableEdgeRetriever's Err once the
// supplied context is done.
var ErrCancelled = errors.E(errors.Canceled, "svedge: cancellation requested")

// EdgeRetriever enumerates the bin_index-th slice of a bin_count-way
// partition of every unordered edge in a set, in deterministic
// (locusIdx, min(a,b), max(a,b)) order.
type EdgeRetriever struct {
	edges []EdgeInfo
	pos   int
}

// NewEdgeRetriever builds the full deterministic edge ordering for set, then
// restricts the retriever to the edges assigned to bin_index (edge k belongs
// to bin k mod binCount).
//
// REQUIRES: binCount >= 1, 0 <= binIndex < binCount.
func NewEdgeRetriever(set *svlocus.SVLocusSet, binCount, binIndex int) (*EdgeRetriever, error) {
	if binCount < 1 {
		return nil, errors.E(errors.Precondition, "svedge: binCount must be >= 1, got", binCount)
	}
	if binIndex < 0 || binIndex >= binCount {
		return nil, errors.E(errors.Precondition, "svedge: binIndex out of range", binIndex, "for binCount", binCount)
	}
	all := allEdges(set)
	r := &EdgeRetriever{}
	for k, e := range all {
		if k%binCount == binIndex {
			r.edges = append(r.edges, e)
		}
	}
	r.pos = -1
	return r, nil
}

// allEdges returns every unordered edge of set, in deterministic
// (locusIdx, min(a,b), max(a,b)) order. A directed pair A->B, B->A
// collapses to one EdgeInfo; a self-loop A->A is represented once, with
// NodeA == NodeB.
func allEdges(set *svlocus.SVLocusSet) []EdgeInfo {
	var out []EdgeInfo
	for li := 0; li < set.NumLoci(); li++ {
		l := set.Locus(li)
		seen := make(map[[2]svlocus.NodeIndex]bool)
		for ni := 0; ni < l.NumNodes(); ni++ {
			a := svlocus.NodeIndex(ni)
			n := l.Node(a)
			for b := range n.Edges {
				lo, hi := a, b
				if hi < lo {
					lo, hi = hi, lo
				}
				key := [2]svlocus.NodeIndex{lo, hi}
				if seen[key] {
					continue
				}
				seen[key] = true
				na := l.Node(lo)
				nb := l.Node(hi)
				countBA := uint16(0)
				if lo != hi {
					countBA = nb.Edges[lo].Count
				}
				out = append(out, EdgeInfo{
					LocusIdx:       li,
					NodeA:          lo,
					NodeB:          hi,
					IntervalA:      na.Interval,
					IntervalB:      nb.Interval,
					EvidenceRangeA: na.EvidenceRange,
					EvidenceRangeB: nb.EvidenceRange,
					CountAB:        na.Edges[hi].Count,
					CountBA:        countBA,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocusIdx != out[j].LocusIdx {
			return out[i].LocusIdx < out[j].LocusIdx
		}
		if out[i].NodeA != out[j].NodeA {
			return out[i].NodeA < out[j].NodeA
		}
		return out[i].NodeB < out[j].NodeB
	})
	return out
}

// Next advances to the next edge in this bin, returning false once
// exhausted.
func (r *EdgeRetriever) Next() bool {
	if r.pos+1 >= len(r.edges) {
		return false
	}
	r.pos++
	return true
}

// Edge returns the current edge. REQUIRES: the preceding Next() returned
// true.
func (r *EdgeRetriever) Edge() EdgeInfo {
	return r.edges[r.pos]
}

// CancelableEdgeRetriever wraps EdgeRetriever with a context.Context checked
// between edges, so a long edge-consumption loop can be interrupted between
// iterations without corrupting partial state.
type CancelableEdgeRetriever struct {
	ctx context.Context
	r   *EdgeRetriever
}

// NewCancelableEdgeRetriever wraps r with ctx.
func NewCancelableEdgeRetriever(ctx context.Context, r *EdgeRetriever) *CancelableEdgeRetriever {
	return &CancelableEdgeRetriever{ctx: ctx, r: r}
}

// Next reports whether there is a next edge, checking ctx first. If ctx is
// done, Next returns false; callers should check Err() to distinguish
// cancellation from exhaustion.
func (c *CancelableEdgeRetriever) Next() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}
	return c.r.Next()
}

// Err returns ErrCancelled if the wrapping context was done, else nil.
func (c *CancelableEdgeRetriever) Err() error {
	select {
	case <-c.ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}

// Edge returns the current edge.
func (c *CancelableEdgeRetriever) Edge() EdgeInfo {
	return c.r.Edge()
}

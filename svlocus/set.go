// Package svlocus implements the SV evidence graph: the mutable,
// interval-indexed multigraph that accumulates paired-end evidence into SV
// breakend candidates.
//
// The central type is SVLocusSet, an ordered collection of SVLocus graphs
// plus an interval index (inodes) mapping genomic intervals to the node
// that currently covers them. Evidence arrives as small SingleObservation
// loci (see NewSingleObservationLocus) and is folded in one at a time via
// Merge, which performs online interval-overlap consolidation across the
// whole set.
package svlocus

import (
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/svlocus/genome"
)

// SVLocusSet is the global evidence graph: an ordered sequence of loci plus
// the inodes interval index used to find which existing node (if any)
// overlaps a newly observed interval.
//
// Invariants (maintained after every Merge call):
//   - every node of every non-empty locus appears exactly once in inodes;
//   - empty loci ("holes") are permitted and ignored by consumers -- their
//     slot is retained so earlier locus-index identities survive merges;
//   - for any chromosome, the nodes stored in a single locus are pairwise
//     disjoint once mergeSelfOverlap has run.
type SVLocusSet struct {
	refs  genome.ReferenceInfo
	loci  []*Locus
	index intervalIndex
}

// NewSVLocusSet returns an empty set over the given reference sequence
// dictionary.
func NewSVLocusSet(refs genome.ReferenceInfo) *SVLocusSet {
	return &SVLocusSet{refs: refs}
}

// References returns the reference-sequence dictionary this set was built
// against.
func (s *SVLocusSet) References() genome.ReferenceInfo { return s.refs }

// NumLoci returns len(loci), including empty holes.
func (s *SVLocusSet) NumLoci() int { return len(s.loci) }

// Locus returns the locus at idx, which may be empty.
func (s *SVLocusSet) Locus(idx int) *Locus { return s.loci[idx] }

// TotalObservationCount sums Node.Count across every node of every locus.
func (s *SVLocusSet) TotalObservationCount() uint64 {
	var total uint64
	for _, l := range s.loci {
		total += l.TotalObservationCount()
	}
	return total
}

// TotalEdgeCount sums directed edge counts across every locus.
func (s *SVLocusSet) TotalEdgeCount() uint64 {
	var total uint64
	for _, l := range s.loci {
		total += l.TotalEdgeCount()
	}
	return total
}

// TotalDirectedEdgeCount sums the number of directed edge entries across
// every locus (a symmetric pair A->B, B->A contributes 2, regardless of
// either edge's Count).
func (s *SVLocusSet) TotalDirectedEdgeCount() int {
	total := 0
	for _, l := range s.loci {
		total += l.NumDirectedEdges()
	}
	return total
}

func (s *SVLocusSet) ensureLocus(idx int) {
	for len(s.loci) <= idx {
		s.loci = append(s.loci, newLocus(len(s.loci)))
	}
}

// rebuildLocusIndex discards and recomputes every inodes entry belonging to
// loci[idx] from its current node set. Mutating a locus's node set (via
// AddNode, mergeNode, clean, or combineLoci) always leaves the index
// authoritative only up to the next call to this method; every Merge call
// ends by rebuilding the index of every locus it touched, so the index is
// never observed in a stale state between Merge calls.
func (s *SVLocusSet) rebuildLocusIndex(idx int) {
	s.index.removeLocus(idx)
	l := s.loci[idx]
	for i, n := range l.nodes {
		s.index.insert(indexEntry{Interval: n.Interval, Ref: nodeRef{Locus: idx, Node: NodeIndex(i)}})
	}
}

// combineLoci appends locus "from"'s nodes onto locus "to" (remapping
// from's internal edge targets by the resulting offset), empties from's
// slot, and refreshes the index for both. It returns the offset added to
// any NodeIndex that referred to a node of "from" before the call.
func (s *SVLocusSet) combineLoci(from, to int) int {
	if from == to {
		return 0
	}
	fromLocus := s.loci[from]
	toLocus := s.loci[to]
	offset := len(toLocus.nodes)
	for _, n := range fromLocus.nodes {
		if len(n.Edges) == 0 {
			continue
		}
		remapped := make(map[NodeIndex]Edge, len(n.Edges))
		for target, e := range n.Edges {
			remapped[target+NodeIndex(offset)] = e
		}
		n.Edges = remapped
	}
	toLocus.nodes = append(toLocus.nodes, fromLocus.nodes...)
	fromLocus.nodes = nil
	s.index.removeLocus(from)
	s.rebuildLocusIndex(to)
	return offset
}

// Merge folds a single-observation (or otherwise small) input locus into
// the set: every input node is represented in the result, any existing
// node intersecting an input node is consolidated into the same locus, and
// all edges -- both the input locus's own internal edges and every
// absorbed node's edges -- are preserved with summed counts.
func (s *SVLocusSet) Merge(input *Locus) error {
	if input.NumNodes() == 0 {
		return nil
	}
	targetIdx := len(s.loci)
	// inputToTarget maps a node index within "input" to its current node
	// index within loci[targetIdx], updated in place as merges shift
	// indices.
	inputToTarget := make(map[NodeIndex]NodeIndex, input.NumNodes())

	for ni := 0; ni < input.NumNodes(); ni++ {
		n := input.Node(NodeIndex(ni))
		overlapping := s.index.intersecting(n.Interval)

		if len(overlapping) == 0 {
			s.ensureLocus(targetIdx)
			newIdx := s.loci[targetIdx].AddNode(n.Interval, n.Count)
			s.loci[targetIdx].SetNodeEvidence(newIdx, n.EvidenceRange)
			inputToTarget[NodeIndex(ni)] = newIdx
			s.rebuildLocusIndex(targetIdx)
			continue
		}

		minLocus := targetIdx
		for _, ref := range overlapping {
			if ref.Locus < minLocus {
				minLocus = ref.Locus
			}
		}
		if minLocus < targetIdx {
			oldTargetIdx := targetIdx
			if targetIdx < len(s.loci) && !s.loci[targetIdx].Empty() {
				offset := s.combineLoci(targetIdx, minLocus)
				for k, v := range inputToTarget {
					inputToTarget[k] = v + NodeIndex(offset)
				}
				for i, ref := range overlapping {
					if ref.Locus == oldTargetIdx {
						overlapping[i] = nodeRef{Locus: minLocus, Node: ref.Node + NodeIndex(offset)}
					}
				}
			}
			targetIdx = minLocus
		}
		s.ensureLocus(targetIdx)

		// Consolidate every other locus referenced by the overlap set into
		// targetIdx, remapping the overlap refs as we go.
		updated := make([]nodeRef, len(overlapping))
		copy(updated, overlapping)
		offsets := make(map[int]int)
		for _, ref := range overlapping {
			if ref.Locus == targetIdx {
				continue
			}
			if _, done := offsets[ref.Locus]; done {
				continue
			}
			offsets[ref.Locus] = s.combineLoci(ref.Locus, targetIdx)
		}
		for i, ref := range updated {
			if off, ok := offsets[ref.Locus]; ok {
				updated[i] = nodeRef{Locus: targetIdx, Node: ref.Node + NodeIndex(off)}
			}
		}

		newIdx := s.loci[targetIdx].AddNode(n.Interval, n.Count)
		s.loci[targetIdx].SetNodeEvidence(newIdx, n.EvidenceRange)
		inputToTarget[NodeIndex(ni)] = newIdx

		// Fold every overlapping existing node into the freshly-added copy
		// of N, highest node index first: newIdx is always the
		// just-appended (maximal) index, so each erase shifts it down by
		// exactly one, and processing in descending order means the
		// not-yet-processed refs' indices are never disturbed by an
		// earlier erase.
		sort.Slice(updated, func(i, j int) bool { return updated[i].Node > updated[j].Node })
		for _, ref := range updated {
			s.loci[targetIdx].mergeNode(ref.Node, newIdx)
			newIdx--
			for k, v := range inputToTarget {
				switch {
				case v == ref.Node:
					// That input node now lives in the merged node.
					inputToTarget[k] = newIdx
				case v > ref.Node:
					inputToTarget[k] = v - 1
				}
			}
		}
		inputToTarget[NodeIndex(ni)] = newIdx

		s.loci[targetIdx].mergeSelfOverlap()
		s.rebuildLocusIndex(targetIdx)
	}

	// Replay the input locus's own internal edges (e.g. a
	// SingleObservationLocus's local<->remote pair) between wherever its
	// endpoints ended up; endpoints that ended up in one node give a
	// self-loop on it.
	for ni := 0; ni < input.NumNodes(); ni++ {
		n := input.Node(NodeIndex(ni))
		src, ok := inputToTarget[NodeIndex(ni)]
		if !ok {
			continue
		}
		for x, e := range n.Edges {
			dst, ok := inputToTarget[x]
			if !ok {
				continue
			}
			s.loci[targetIdx].addDirectedCount(src, dst, e.Count)
		}
	}
	s.loci[targetIdx].mergeSelfOverlap()
	s.rebuildLocusIndex(targetIdx)
	if DebugCheckState {
		return s.CheckState()
	}
	return nil
}

// MergeSets folds every non-empty locus of src into dst, one locus at a
// time, using the same Merge primitive used for single-observation input.
// This is the supported way to parallelize a build: partition input reads,
// build independent sets, then fold them together pairwise with
// MergeSets.
func MergeSets(dst, src *SVLocusSet) error {
	for i := 0; i < src.NumLoci(); i++ {
		l := src.Locus(i)
		if l.Empty() {
			continue
		}
		if err := dst.Merge(l); err != nil {
			return err
		}
	}
	return nil
}

// Clean runs Locus.clean(minMergeEdgeCount) over every locus in the set and
// returns the total evidence count removed as noise.
func (s *SVLocusSet) Clean(minMergeEdgeCount uint16) uint64 {
	var removed uint64
	for i, l := range s.loci {
		if l.Empty() {
			continue
		}
		removed += l.clean(minMergeEdgeCount)
		s.rebuildLocusIndex(i)
	}
	return removed
}

// DebugCheckState gates CheckState's invariant re-validation. It defaults
// to false because CheckState walks the entire set; production callers
// enable it only for tests or diagnostics, matching how Shard/Coord
// invariants in the wider bio toolkit are asserted in test helpers rather
// than on production hot paths.
var DebugCheckState = false

// CheckState re-validates every invariant in the data model: every node of
// every non-empty locus appears exactly once in inodes, every edge target
// refers to a node of the same locus, and every non-empty locus is
// connected. It returns an InvariantViolation error (errors.Precondition)
// describing the first violation found, or nil.
//
// CheckState always runs when called directly; DebugCheckState only gates
// whether Merge invokes it automatically at the end of every call.
func (s *SVLocusSet) CheckState() error {
	seen := make(map[nodeRef]bool)
	for _, e := range s.index.entries {
		if seen[e.Ref] {
			return errors.E(errors.Precondition, "svlocus: InvariantViolation: duplicate inodes entry for", e.Ref)
		}
		seen[e.Ref] = true
		if e.Ref.Locus < 0 || e.Ref.Locus >= len(s.loci) {
			return errors.E(errors.Precondition, "svlocus: InvariantViolation: inodes entry names nonexistent locus", e.Ref.Locus)
		}
		l := s.loci[e.Ref.Locus]
		if int(e.Ref.Node) >= l.NumNodes() {
			return errors.E(errors.Precondition, "svlocus: InvariantViolation: inodes entry names nonexistent node", e.Ref)
		}
	}
	for li, l := range s.loci {
		for ni := 0; ni < l.NumNodes(); ni++ {
			ref := nodeRef{Locus: li, Node: NodeIndex(ni)}
			if !seen[ref] {
				return errors.E(errors.Precondition, "svlocus: InvariantViolation: node missing from inodes", ref)
			}
			n := l.Node(NodeIndex(ni))
			if n.Interval.Empty() {
				return errors.E(errors.Precondition, "svlocus: InvariantViolation: empty interval survived mergeSelfOverlap at", ref)
			}
			for target := range n.Edges {
				if int(target) >= l.NumNodes() {
					return errors.E(errors.Precondition, "svlocus: InvariantViolation: edge crosses locus boundary at", ref)
				}
			}
		}
		if !l.Empty() && !l.IsConnected() {
			return errors.E(errors.Precondition, "svlocus: InvariantViolation: locus", li, "is not connected")
		}
	}
	return nil
}

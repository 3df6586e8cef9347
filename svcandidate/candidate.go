// Package svcandidate turns a scored graph edge into the small set of
// structural-variant hypotheses a downstream writer can emit. It deliberately
// stops short of the somatic assembly and genotyping a full caller performs;
// see SVCandidate.Score for what is and is not computed here.
package svcandidate

import (
	"math"

	"github.com/grailbio/svlocus/genome"
	"github.com/grailbio/svlocus/svedge"
)

// SVCandidateData is the unscored geometric description of an edge: the two
// breakend intervals, their open orientation, and the raw evidence strength
// backing them. It is the input every SVCandidate hypothesis is derived
// from.
type SVCandidateData struct {
	ChromA, ChromB uint32
	IntervalA      genome.Interval
	IntervalB      genome.Interval
	StateA         genome.BreakendState
	StateB         genome.BreakendState
	SupportCount   uint16
}

// SVType names the kind of rearrangement a candidate's breakend geometry is
// consistent with. Determined from chromosome identity and breakend
// orientation alone -- no read-level assembly backs this classification.
type SVType int8

const (
	// Unknown covers any orientation combination not matched by a more
	// specific type below (e.g. a same-chromosome edge with one or both
	// breakends in UnknownState).
	Unknown SVType = iota
	Deletion
	Inversion
	TandemDuplication
	Translocation
)

func (t SVType) String() string {
	switch t {
	case Deletion:
		return "DELETION"
	case Inversion:
		return "INVERSION"
	case TandemDuplication:
		return "DUPLICATION"
	case Translocation:
		return "TRANSLOCATION"
	default:
		return "UNKNOWN"
	}
}

// SVCandidate is one scored hypothesis derived from an SVCandidateData.
// Classify derives exactly one candidate per edge; a geometry ambiguous
// between types is not split into several hypotheses.
type SVCandidate struct {
	Type SVType
	// Score is a placeholder strength measure, not a somatic or
	// genotyping likelihood: it is monotonic in SupportCount alone. A real
	// caller would combine base quality, mapping quality, and local
	// assembly evidence here.
	Score float64
}

// BuildCandidateData summarizes e's geometry into an SVCandidateData.
// SupportCount combines both of e's directed edge counts; the sum saturates
// at math.MaxUint16 the same way the graph layer's own counters do.
func BuildCandidateData(e svedge.EdgeInfo) SVCandidateData {
	sum := uint32(e.CountAB) + uint32(e.CountBA)
	if sum > math.MaxUint16 {
		sum = math.MaxUint16
	}
	return SVCandidateData{
		ChromA:       e.IntervalA.ChromID,
		ChromB:       e.IntervalB.ChromID,
		IntervalA:    e.IntervalA,
		IntervalB:    e.IntervalB,
		StateA:       stateOf(e.IntervalA, e.EvidenceRangeA),
		StateB:       stateOf(e.IntervalB, e.EvidenceRangeB),
		SupportCount: uint16(sum),
	}
}

// stateOf recovers a node's breakend orientation from the relative position
// of its evidence range: evidence to the left of the breakend interval
// means the interval opens rightward, and vice versa. A node whose evidence
// range is empty or overlaps its interval (as the default evidence range,
// the interval itself, does) reports UnknownState.
func stateOf(interval, evidence genome.Interval) genome.BreakendState {
	if evidence.Empty() {
		return genome.UnknownState
	}
	if evidence.End <= interval.Begin {
		return genome.RightOpen
	}
	if evidence.Begin >= interval.End {
		return genome.LeftOpen
	}
	return genome.UnknownState
}

// Classify generates the SVCandidate hypotheses consistent with data's
// geometry. It never returns an empty slice: an edge with no recognized
// orientation pairing still produces a single Unknown-typed candidate, so a
// writer always has something to emit for every edge it is handed.
func Classify(data SVCandidateData) []SVCandidate {
	score := scoreOf(data.SupportCount)
	if data.ChromA != data.ChromB {
		return []SVCandidate{{Type: Translocation, Score: score}}
	}
	switch {
	case data.StateA == genome.RightOpen && data.StateB == genome.LeftOpen:
		return []SVCandidate{{Type: Deletion, Score: score}}
	case data.StateA == genome.LeftOpen && data.StateB == genome.RightOpen:
		return []SVCandidate{{Type: TandemDuplication, Score: score}}
	case data.StateA == data.StateB && data.StateA != genome.UnknownState:
		return []SVCandidate{{Type: Inversion, Score: score}}
	default:
		return []SVCandidate{{Type: Unknown, Score: score}}
	}
}

// scoreOf is the placeholder support-count-only score described on
// SVCandidate.Score: it grows with evidence but asymptotes, so a handful of
// read pairs cannot masquerade as overwhelming support.
func scoreOf(support uint16) float64 {
	return float64(support) / (float64(support) + 1)
}

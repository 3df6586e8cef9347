// Package readstats summarizes per-read-group paired-fragment statistics
// (fragment-length distribution and pair orientation) and provides the
// quantile/CDF queries the SV scanner uses to size breakend intervals.
package readstats

import (
	"fmt"
	"sort"

	"github.com/grailbio/base/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Orientation classifies the relative strand and ordering of the two mates
// in a pair, as derived from the first read's strand and position relative
// to its mate.
type Orientation int8

const (
	// FFUnknown is used when the pair's relative orientation could not be
	// classified (e.g. mates on different chromosomes).
	FFUnknown Orientation = iota
	// Ff: both mates forward strand, first read upstream of second.
	Ff
	// Fr: forward read upstream of reverse read (the orientation of a
	// "proper", innie, fragment).
	Fr
	// Rf: reverse read upstream of forward read (outie).
	Rf
	// Rr: both mates reverse strand.
	Rr
)

func (o Orientation) String() string {
	switch o {
	case Ff:
		return "Ff"
	case Fr:
		return "Fr"
	case Rf:
		return "Rf"
	case Rr:
		return "Rr"
	default:
		return "FF_UNKNOWN"
	}
}

// ParseOrientation parses the String() form back into an Orientation.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "Ff":
		return Ff, nil
	case "Fr":
		return Fr, nil
	case "Rf":
		return Rf, nil
	case "Rr":
		return Rr, nil
	case "FF_UNKNOWN":
		return FFUnknown, nil
	default:
		return FFUnknown, errors.E(errors.Invalid, fmt.Sprintf("readstats: unknown orientation %q", s))
	}
}

// PairStats summarizes the fragment-length distribution and dominant
// orientation of one read group's properly-paired reads.
//
// The distribution is approximated as Normal(Median, SD), where SD is in
// fact the full interquartile range labeled as a standard deviation -- an
// intentional, cheap approximation whose accuracy only matters at the
// quantiles the scanner actually queries.
type PairStats struct {
	Median      float64
	SD          float64
	Orientation Orientation

	dist distuv.Normal
}

// MinUsablePairs is the minimum number of usable pairs of the stats
// estimator's convergence protocol. NewPairStatsFromSamples does not check
// it (it rejects only an empty batch), and neither does ConvergenceChecker.
const MinUsablePairs = 1000

// NewPairStatsFromSamples computes PairStats from a batch of observed
// fragment lengths (absolute template lengths of properly-oriented pairs).
// fragLengths is consumed by sorting it in place.
//
// Returns an error (StatsUnderflow, per the error taxonomy) if fragLengths
// is empty.
func NewPairStatsFromSamples(fragLengths []int32, orientation Orientation) (*PairStats, error) {
	if len(fragLengths) == 0 {
		return nil, errors.E(errors.Precondition, "readstats: no fragment-length samples")
	}
	sort.Slice(fragLengths, func(i, j int) bool { return fragLengths[i] < fragLengths[j] })
	n := len(fragLengths)
	median := float64(fragLengths[n/2])
	sd := float64(fragLengths[(n*3)/4]) - float64(fragLengths[n/4])
	return newPairStats(median, sd, orientation), nil
}

func newPairStats(median, sd float64, orientation Orientation) *PairStats {
	if sd <= 0 {
		// A degenerate (all-identical) sample would make distuv.Normal's
		// quantile/CDF undefined; floor it so callers still get a usable,
		// if extremely tight, distribution.
		sd = 1
	}
	return &PairStats{
		Median:      median,
		SD:          sd,
		Orientation: orientation,
		dist:        distuv.Normal{Mu: median, Sigma: sd},
	}
}

// Converged reports whether two successive batch estimates are close
// enough (per the convergence protocol in the stats estimator, see
// ConvergenceChecker) that estimation could stop.
func Converged(prev, cur *PairStats) bool {
	return absf(prev.Median-cur.Median) < 0.005 && absf(prev.SD-cur.SD) < 0.005
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Quantile returns the value x such that CDF(x) == p, under the Normal(
// Median, SD) approximation.
func (s *PairStats) Quantile(p float64) float64 {
	return s.dist.Quantile(p)
}

// CDF returns the probability that a sample from this distribution is <= x.
func (s *PairStats) CDF(x float64) float64 {
	return s.dist.CDF(x)
}

// ConvergenceChecker implements the batch-convergence protocol described
// for the stats estimator: it accepts checkpoint batches (conventionally
// every 100,000 records) and reports whether two consecutive checkpoints
// agree within 0.005 on both Median and SD, hard-stopping after
// MaxRecords. It does not count usable pairs and never refuses an estimate
// for having seen fewer than MinUsablePairs records. It lives here, rather than in the core scanner,
// because fragment-length estimation itself is an external collaborator
// (spec §1); only its result (a PairStats) is consumed by the core.
type ConvergenceChecker struct {
	// CheckpointInterval is the number of records between convergence
	// checks.
	CheckpointInterval int
	// MaxRecords is the hard cap on records considered before forcing a
	// final estimate.
	MaxRecords int

	seen int
	prev *PairStats
}

// NewConvergenceChecker returns a checker using the protocol's documented
// defaults (checkpoint every 100,000 records, hard stop at 5,000,000).
func NewConvergenceChecker() *ConvergenceChecker {
	return &ConvergenceChecker{CheckpointInterval: 100000, MaxRecords: 5000000}
}

// Observe registers that n additional records have been consumed since the
// last call, and reports whether estimation should stop: either because
// cur has converged against the previous checkpoint, or because MaxRecords
// has been reached. cur is the estimate computed from all records seen so
// far (including n).
func (c *ConvergenceChecker) Observe(n int, cur *PairStats) (stop bool, nonConvergent bool) {
	c.seen += n
	if c.prev != nil && Converged(c.prev, cur) {
		return true, false
	}
	c.prev = cur
	if c.seen >= c.MaxRecords {
		return true, true
	}
	return false, false
}

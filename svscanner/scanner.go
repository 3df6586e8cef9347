package svscanner

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/svlocus/genome"
	"github.com/grailbio/svlocus/readstats"
	"github.com/grailbio/svlocus/svlocus"
)

// cachedRange is a pair of fragment-length cutoffs computed once per read
// group from its PairStats, clipped to >= 0.
type cachedRange struct {
	lo, hi float64
}

// SVLocusScanner turns alignment records into SingleObservationLocus
// candidates. It is constructed once per run from a stats set covering
// every read group that will be scanned, and precomputes the two quantile
// ranges every admitted read needs.
type SVLocusScanner struct {
	opts  ReadScannerOptions
	stats *readstats.ReadGroupStatsSet

	breakendRegion []cachedRange
	properPair     []cachedRange

	Stats ScannerStats
}

// NewSVLocusScanner builds a scanner from opts and a populated stats set.
// alignmentFiles is neither stored nor consulted: read-group indices are
// those of stats, in the order its groups were added, and the scanner does
// no I/O against the files.
func NewSVLocusScanner(opts ReadScannerOptions, stats *readstats.ReadGroupStatsSet, alignmentFiles []string) (*SVLocusScanner, error) {
	if stats == nil || stats.Len() == 0 {
		return nil, errors.E(errors.Precondition, "svscanner: empty read-group stats set")
	}
	s := &SVLocusScanner{
		opts:           opts,
		stats:          stats,
		breakendRegion: make([]cachedRange, stats.Len()),
		properPair:     make([]cachedRange, stats.Len()),
	}
	for i := 0; i < stats.Len(); i++ {
		ps := stats.Get(uint32(i))
		s.breakendRegion[i] = clippedRange(ps, opts.BreakendEdgeTrimProb)
		s.properPair[i] = clippedRange(ps, opts.ProperPairTrimProb)
	}
	return s, nil
}

func clippedRange(ps *readstats.PairStats, trim float64) cachedRange {
	lo := ps.Quantile(trim)
	hi := ps.Quantile(1 - trim)
	if lo < 0 {
		lo = 0
	}
	if hi < 0 {
		hi = 0
	}
	return cachedRange{lo: lo, hi: hi}
}

// IsReadFiltered reports whether r must be excluded from all further
// consideration: vendor-fail, duplicate, secondary alignment, or mapping
// quality below the configured minimum.
func (s *SVLocusScanner) IsReadFiltered(r *sam.Record) bool {
	if r.Flags&(sam.QCFail|sam.Duplicate|sam.Secondary) != 0 {
		return true
	}
	return r.MapQ < s.opts.MinMapQ
}

// IsProperPair reports whether r and its mate form a "proper" (innie, FR)
// pair within the read group's cached fragment-length range.
func (s *SVLocusScanner) IsProperPair(r *sam.Record, rgIndex uint32) bool {
	if r.Flags&(sam.Unmapped|sam.MateUnmapped) != 0 {
		return false
	}
	if r.Ref == nil || r.MateRef == nil || r.Ref.ID() != r.MateRef.ID() {
		return false
	}
	rng := s.properPair[rgIndex]
	tlen := absInt(r.TempLen)
	if float64(tlen) < rng.lo || float64(tlen) > rng.hi {
		return false
	}
	return isForwardReverseOrder(r)
}

// isForwardReverseOrder reports whether r and its mate are on opposite
// strands with the forward-strand mate (r or its mate) lying at or before
// the reverse-strand mate's position (the "FR" orientation).
func isForwardReverseOrder(r *sam.Record) bool {
	fwd := r.Flags&sam.Reverse == 0
	mateFwd := r.Flags&sam.MateReverse == 0
	if fwd == mateFwd {
		return false
	}
	if fwd {
		return r.Pos <= r.MatePos
	}
	return r.MatePos <= r.Pos
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// isChimeric reports whether r's mate maps to a different chromosome, or
// the aligner otherwise flagged the read as part of a chimeric (split)
// alignment.
func isChimeric(r *sam.Record) bool {
	if r.Flags&sam.Unmapped != 0 || r.Flags&sam.MateUnmapped != 0 {
		return false
	}
	if r.Ref == nil || r.MateRef == nil {
		return false
	}
	if r.Ref.ID() != r.MateRef.ID() {
		return true
	}
	if r.Flags&sam.Supplementary != 0 {
		return true
	}
	return r.AuxFields.Get(sam.NewTag("SA")) != nil
}

// ChimericLocus produces an observation iff r is chimeric. A read failing
// IsReadFiltered never produces an observation, regardless of its geometry.
func (s *SVLocusScanner) ChimericLocus(r, mate *sam.Record, rgIndex uint32) (*svlocus.Locus, error) {
	if s.IsReadFiltered(r) {
		s.Stats.observeFiltered()
		return nil, nil
	}
	if !isChimeric(r) {
		return nil, nil
	}
	s.Stats.observeChimeric()
	return s.breakendPairLocus(r, mate, rgIndex)
}

// SVLocus produces an observation when r is chimeric or its template size
// indicates an anomalously large fragment. A read failing IsReadFiltered
// never produces an observation.
func (s *SVLocusScanner) SVLocus(r, mate *sam.Record, rgIndex uint32) (*svlocus.Locus, error) {
	if s.IsReadFiltered(r) {
		s.Stats.observeFiltered()
		return nil, nil
	}
	if isChimeric(r) {
		s.Stats.observeChimeric()
		return s.breakendPairLocus(r, mate, rgIndex)
	}
	if int32(absInt(r.TempLen)) >= s.opts.LargeFragmentCutoff {
		s.Stats.observeLargeFragment()
		return s.breakendPairLocus(r, mate, rgIndex)
	}
	return nil, nil
}

// breakend is one side of a candidate junction: the hypothesized
// interval, its open-ended orientation, and the range of reads that
// support it.
type breakend struct {
	Interval genome.Interval
	State    genome.BreakendState
	Evidence genome.Interval
}

// BreakendPair computes the local and remote breakend geometry for a read
// pair, per the non-insert-length construction in spec §4.3. If mate is
// nil, the local read's own geometry is reused unchanged for the remote side.
func (s *SVLocusScanner) BreakendPair(local, mate *sam.Record, rgIndex uint32) (localBE, remoteBE breakend, err error) {
	region := s.breakendRegion[rgIndex]

	localNonInsert, localStart, localEnd := nonInsertGeometry(local)
	var remoteNonInsert int
	var remote *sam.Record
	if mate != nil {
		remote = mate
		remoteNonInsert, _, _ = nonInsertGeometry(mate)
	} else {
		remote = local
		remoteNonInsert = localNonInsert
	}

	totalNonInsert := localNonInsert + remoteNonInsert
	breakendSize := int(region.hi) - totalNonInsert
	if breakendSize < int(s.opts.MinBreakendSize) {
		breakendSize = int(s.opts.MinBreakendSize)
	}

	localBE, err = placeBreakend(local, localStart, localEnd, breakendSize)
	if err != nil {
		return breakend{}, breakend{}, err
	}
	remoteStart, remoteEnd := localStart, localEnd
	if mate != nil {
		_, remoteStart, remoteEnd = nonInsertGeometry(remote)
	}
	remoteBE, err = placeBreakend(remote, remoteStart, remoteEnd, breakendSize)
	if err != nil {
		return breakend{}, breakend{}, err
	}
	return localBE, remoteBE, nil
}

// nonInsertGeometry returns r's non-insert length (the reference-consuming
// portion of the read beyond the far-side soft clip) and its reference
// span [start, end).
func nonInsertGeometry(r *sam.Record) (nonInsert int, start, end int64) {
	refLen, _ := r.Cigar.Lengths()
	start = int64(r.Pos)
	end = start + int64(refLen)

	leading, trailing := softClipLengths(r.Cigar)
	readSize := refLen + leading + trailing
	if r.Flags&sam.Reverse == 0 {
		nonInsert = readSize - trailing
	} else {
		nonInsert = readSize - leading
	}
	return nonInsert, start, end
}

func softClipLengths(c sam.Cigar) (leading, trailing int) {
	if len(c) == 0 {
		return 0, 0
	}
	if c[0].Type() == sam.CigarSoftClipped {
		leading = c[0].Len()
	}
	if last := c[len(c)-1]; last.Type() == sam.CigarSoftClipped {
		trailing = last.Len()
	}
	return leading, trailing
}

// placeBreakend anchors the breakend interval on r's reference span,
// opening away from the mapped portion per r's strand.
func placeBreakend(r *sam.Record, start, end int64, breakendSize int) (breakend, error) {
	chromID := uint32(r.Ref.ID())
	var iv genome.Interval
	var state genome.BreakendState
	if r.Flags&sam.Reverse == 0 {
		state = genome.RightOpen
		iv = genome.Interval{ChromID: chromID, Begin: end, End: end + int64(breakendSize)}
	} else {
		state = genome.LeftOpen
		iv = genome.Interval{ChromID: chromID, Begin: start - int64(breakendSize), End: start}
	}
	if iv.Empty() {
		return breakend{}, errors.E(errors.Invalid, "svscanner: InputCorruption: empty breakend interval computed for read at", start)
	}
	return breakend{
		Interval: iv,
		State:    state,
		Evidence: genome.Interval{ChromID: chromID, Begin: start, End: end},
	}, nil
}

// breakendPairLocus builds the SingleObservationLocus from a read pair's
// breakend geometry.
func (s *SVLocusScanner) breakendPairLocus(r, mate *sam.Record, rgIndex uint32) (*svlocus.Locus, error) {
	localBE, remoteBE, err := s.BreakendPair(r, mate, rgIndex)
	if err != nil {
		return nil, err
	}
	return svlocus.NewSingleObservationLocus(localBE.Interval, remoteBE.Interval, localBE.Evidence, remoteBE.Evidence), nil
}

package svscanner

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/svlocus/genome"
	"github.com/grailbio/svlocus/readstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader(t *testing.T) (chr1, chr2 *sam.Reference) {
	chr1, err := sam.NewReference("chr1", "", "", 1000000, nil, nil)
	require.NoError(t, err)
	chr2, err = sam.NewReference("chr2", "", "", 1000000, nil, nil)
	require.NoError(t, err)
	_, err = sam.NewHeader(nil, []*sam.Reference{chr1, chr2})
	require.NoError(t, err)
	return chr1, chr2
}

func testScanner(t *testing.T, breakendMax float64) *SVLocusScanner {
	stats := readstats.NewReadGroupStatsSet()
	// The stats only have to build a valid scanner: the cached ranges they
	// produce are overwritten below with the fixed breakend_region.max of S4
	// (breakendMax) and the [100,600] proper-pair window of S5.
	ps, err := readstats.NewPairStatsFromSamples([]int32{100, 200, 300, 400, 500, 600}, readstats.Fr)
	require.NoError(t, err)
	stats.Add("rg0", ps)
	opts := DefaultReadScannerOptions()
	s, err := NewSVLocusScanner(opts, stats, nil)
	require.NoError(t, err)
	s.breakendRegion[0] = cachedRange{lo: 0, hi: breakendMax}
	s.properPair[0] = cachedRange{lo: 100, hi: 600}
	return s
}

func mkRecord(t *testing.T, name string, ref *sam.Reference, pos int, flags sam.Flags, matePos int, mateRef *sam.Reference, cigar sam.Cigar, tempLen int) *sam.Record {
	r, err := sam.NewRecord(name, ref, mateRef, pos, matePos, tempLen, 60, cigar, nil, nil, nil)
	require.NoError(t, err)
	r.Flags = flags
	return r
}

func TestBreakendGeometryForwardStrand(t *testing.T) {
	chr1, chr2 := testHeader(t)
	s := testScanner(t, 500)

	local := mkRecord(t, "r1", chr1, 999, sam.Paired, 4999, chr2, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 100)}, 0)
	mate := mkRecord(t, "r1", chr2, 4999, sam.Paired|sam.MateReverse, 999, chr1, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 100)}, 0)

	localBE, _, err := s.BreakendPair(local, mate, 0)
	require.NoError(t, err)

	assert.Equal(t, genome.RightOpen, localBE.State)
	assert.Equal(t, int64(1099), localBE.Interval.Begin)
	assert.Equal(t, int64(1399), localBE.Interval.End)
}

func TestIsProperPair(t *testing.T) {
	chr1, _ := testHeader(t)
	s := testScanner(t, 500)

	fwd := mkRecord(t, "p", chr1, 100, sam.Paired|sam.ProperPair, 100+300-1, chr1, nil, 300)
	fwd.Flags &^= sam.Reverse
	fwd.Flags |= sam.MateReverse
	assert.True(t, s.IsProperPair(fwd, 0))

	ff := mkRecord(t, "p2", chr1, 100, sam.Paired, 100+300-1, chr1, nil, 300)
	ff.Flags &^= sam.Reverse | sam.MateReverse
	assert.False(t, s.IsProperPair(ff, 0))
}

func TestIsReadFilteredMonotoneAdmission(t *testing.T) {
	chr1, _ := testHeader(t)
	s := testScanner(t, 500)

	filtered := mkRecord(t, "f", chr1, 0, sam.Paired|sam.Duplicate, 10, chr1, nil, 10)
	assert.True(t, s.IsReadFiltered(filtered))

	loc, err := s.SVLocus(filtered, filtered, 0)
	require.NoError(t, err)
	assert.Nil(t, loc)

	chim, err := s.ChimericLocus(filtered, filtered, 0)
	require.NoError(t, err)
	assert.Nil(t, chim)
}

func TestSVLocusLargeFragment(t *testing.T) {
	chr1, _ := testHeader(t)
	s := testScanner(t, 500)

	r := mkRecord(t, "lg", chr1, 999, sam.Paired, 5999, chr1, sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 100)}, 5000)
	loc, err := s.SVLocus(r, r, 0)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.EqualValues(t, 1, s.Stats.NumLargeFragment)
}

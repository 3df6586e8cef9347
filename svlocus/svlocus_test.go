package svlocus

import (
	"testing"

	"github.com/grailbio/svlocus/genome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRefs is a minimal genome.ReferenceInfo for tests that never need real
// reference names or lengths.
type fakeRefs struct{ n int }

func (f fakeRefs) NumRefs() int             { return f.n }
func (f fakeRefs) RefName(c uint32) string  { return "chr" }
func (f fakeRefs) RefLen(c uint32) int64    { return 1 << 30 }

func iv(chrom uint32, begin, end int64) genome.Interval {
	return genome.Interval{ChromID: chrom, Begin: begin, End: end}
}

func TestMergeTwoDisjointSingleObservationLoci(t *testing.T) {
	set := NewSVLocusSet(fakeRefs{3})

	l1 := NewSingleObservationLocus(iv(1, 100, 200), iv(2, 500, 600), genome.Interval{}, genome.Interval{})
	l2 := NewSingleObservationLocus(iv(3, 10, 20), iv(3, 900, 910), genome.Interval{}, genome.Interval{})

	require.NoError(t, set.Merge(l1))
	require.NoError(t, set.Merge(l2))
	require.NoError(t, set.CheckState())

	nonEmpty := 0
	for i := 0; i < set.NumLoci(); i++ {
		if !set.Locus(i).Empty() {
			nonEmpty++
		}
	}
	assert.Equal(t, 2, nonEmpty)
	assert.EqualValues(t, 4, set.TotalDirectedEdgeCount())
	assert.EqualValues(t, 2, set.TotalObservationCount())
}

func TestMergeTwoOverlappingLocalSides(t *testing.T) {
	set := NewSVLocusSet(fakeRefs{2})

	l1 := NewSingleObservationLocus(iv(1, 100, 200), iv(1, 800, 900), genome.Interval{}, genome.Interval{})
	l2 := NewSingleObservationLocus(iv(1, 150, 250), iv(1, 1800, 1900), genome.Interval{}, genome.Interval{})

	require.NoError(t, set.Merge(l1))
	require.NoError(t, set.Merge(l2))
	require.NoError(t, set.CheckState())

	nonEmpty := 0
	var locus *Locus
	for i := 0; i < set.NumLoci(); i++ {
		if !set.Locus(i).Empty() {
			nonEmpty++
			locus = set.Locus(i)
		}
	}
	require.Equal(t, 1, nonEmpty)
	require.Equal(t, 3, locus.NumNodes())

	var localNode *Node
	for i := 0; i < locus.NumNodes(); i++ {
		n := locus.Node(NodeIndex(i))
		if n.Interval.ChromID == 1 && n.Interval.Begin == 100 {
			localNode = n
		}
	}
	require.NotNil(t, localNode)
	assert.Equal(t, int64(100), localNode.Interval.Begin)
	assert.Equal(t, int64(250), localNode.Interval.End)
	assert.EqualValues(t, 2, localNode.Count)
	assert.Len(t, localNode.Edges, 2)
}

func TestMergeThreeChainedLoci(t *testing.T) {
	set := NewSVLocusSet(fakeRefs{2})

	a := NewSingleObservationLocus(iv(1, 0, 10), iv(1, 100, 110), genome.Interval{}, genome.Interval{})
	b := NewSingleObservationLocus(iv(1, 100, 110), iv(1, 200, 210), genome.Interval{}, genome.Interval{})
	c := NewSingleObservationLocus(iv(1, 200, 210), iv(1, 300, 310), genome.Interval{}, genome.Interval{})

	require.NoError(t, set.Merge(a))
	require.NoError(t, set.Merge(b))
	require.NoError(t, set.Merge(c))
	require.NoError(t, set.CheckState())

	nonEmpty := 0
	var locus *Locus
	for i := 0; i < set.NumLoci(); i++ {
		if !set.Locus(i).Empty() {
			nonEmpty++
			locus = set.Locus(i)
		}
	}
	require.Equal(t, 1, nonEmpty)
	assert.True(t, locus.IsConnected())
	// Six raw endpoints, two coincident pairs (a.remote==b.local,
	// b.remote==c.local) collapse to four distinct nodes chained
	// A - B - C - D.
	assert.Equal(t, 4, locus.NumNodes())
	assert.EqualValues(t, 6, locus.NumDirectedEdges())
}

func TestMergeSelfOverlapIdempotent(t *testing.T) {
	l := newLocus(0)
	l.AddNode(iv(1, 0, 10), 1)
	l.AddNode(iv(1, 5, 15), 1)
	l.AddNode(iv(1, 100, 110), 1)

	l.mergeSelfOverlap()
	first := l.NumNodes()
	firstTotal := l.TotalObservationCount()

	l.mergeSelfOverlap()
	assert.Equal(t, first, l.NumNodes())
	assert.Equal(t, firstTotal, l.TotalObservationCount())
}

func TestConservationOfEvidence(t *testing.T) {
	set := NewSVLocusSet(fakeRefs{1})
	inputs := []*Locus{
		NewSingleObservationLocus(iv(1, 0, 10), iv(1, 1000, 1010), genome.Interval{}, genome.Interval{}),
		NewSingleObservationLocus(iv(1, 5, 15), iv(1, 1000, 1010), genome.Interval{}, genome.Interval{}),
		NewSingleObservationLocus(iv(1, 2000, 2010), iv(1, 3000, 3010), genome.Interval{}, genome.Interval{}),
	}
	for _, in := range inputs {
		require.NoError(t, set.Merge(in))
	}
	require.NoError(t, set.CheckState())
	assert.EqualValues(t, len(inputs), set.TotalObservationCount())
}

func TestDisjointnessInvariant(t *testing.T) {
	l := newLocus(0)
	l.AddNode(iv(1, 0, 10), 1)
	l.AddNode(iv(1, 5, 15), 1)
	l.AddNode(iv(1, 20, 30), 1)
	l.mergeSelfOverlap()

	for i := 0; i < l.NumNodes(); i++ {
		for j := i + 1; j < l.NumNodes(); j++ {
			assert.False(t, l.Node(NodeIndex(i)).Interval.Intersects(l.Node(NodeIndex(j)).Interval))
		}
	}
}

func TestEdgeSymmetry(t *testing.T) {
	set := NewSVLocusSet(fakeRefs{1})
	require.NoError(t, set.Merge(NewSingleObservationLocus(iv(1, 0, 10), iv(1, 100, 110), genome.Interval{}, genome.Interval{})))
	require.NoError(t, set.Merge(NewSingleObservationLocus(iv(1, 5, 15), iv(1, 200, 210), genome.Interval{}, genome.Interval{})))
	require.NoError(t, set.CheckState())

	for i := 0; i < set.NumLoci(); i++ {
		locus := set.Locus(i)
		for ni := 0; ni < locus.NumNodes(); ni++ {
			n := locus.Node(NodeIndex(ni))
			for target := range n.Edges {
				_, ok := locus.Node(target).Edges[NodeIndex(ni)]
				assert.True(t, ok, "missing reverse edge %d->%d", target, ni)
			}
		}
	}
}

func TestCleanRemovesNoiseNode(t *testing.T) {
	l := newLocus(0)
	a := l.AddNode(iv(1, 0, 10), 1)
	b := l.AddNode(iv(1, 100, 110), 1)
	c := l.AddNode(iv(1, 1000, 1010), 0)
	l.LinkNodes(a, b, 5, 5)
	l.LinkNodes(b, c, 1, 0)

	removed := l.clean(2)
	require.Equal(t, 2, l.NumNodes())
	assert.EqualValues(t, 1, removed)
	// The surviving nodes are a and b, still linked by their strong edge.
	assert.EqualValues(t, 5, l.Node(0).Edges[1].Count)
}

func TestMergeNodeSelfLoopRemap(t *testing.T) {
	l := newLocus(0)
	a := l.AddNode(iv(1, 0, 10), 1)
	b := l.AddNode(iv(1, 5, 15), 1)
	l.LinkNodes(a, b, 3, 1)

	l.mergeNode(b, a)
	require.Equal(t, 1, l.NumNodes())
	merged := l.Node(a)
	assert.EqualValues(t, 2, merged.Count)
	// The a<->b edge pair collapses into a single self-loop on a, with both
	// directions' counts summed.
	require.Len(t, merged.Edges, 1)
	assert.EqualValues(t, 4, merged.Edges[a].Count)
}

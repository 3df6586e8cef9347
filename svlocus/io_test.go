package svlocus

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/grailbio/svlocus/genome"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteToReadSVLocusSetFromRoundTrip(t *testing.T) {
	set := NewSVLocusSet(fakeRefs{2})
	require.NoError(t, set.Merge(NewSingleObservationLocus(iv(1, 0, 10), iv(1, 100, 110), genome.Interval{}, genome.Interval{})))
	require.NoError(t, set.Merge(NewSingleObservationLocus(iv(1, 5, 15), iv(1, 200, 210), genome.Interval{}, genome.Interval{})))

	var buf bytes.Buffer
	require.NoError(t, set.WriteTo(&buf))

	got, err := ReadSVLocusSetFrom(&buf)
	require.NoError(t, err)
	require.NoError(t, got.CheckState())

	assert.Equal(t, set.NumLoci(), got.NumLoci())
	assert.Equal(t, set.TotalObservationCount(), got.TotalObservationCount())
	assert.Equal(t, set.TotalDirectedEdgeCount(), got.TotalDirectedEdgeCount())
	for i := 0; i < set.NumLoci(); i++ {
		assert.Equal(t, set.Locus(i).NumNodes(), got.Locus(i).NumNodes())
	}
}

func TestReadSVLocusSetFromRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	set := NewSVLocusSet(fakeRefs{1})
	require.NoError(t, set.WriteTo(&buf))

	// Corrupt the version by re-encoding with a bumped value.
	wire := gobSVLocusSet{Version: currentWriteVersion + 1}
	var buf2 bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf2).Encode(&wire))

	_, err := ReadSVLocusSetFrom(&buf2)
	assert.Error(t, err)
}

package svcandidate

import (
	"testing"

	"github.com/grailbio/svlocus/genome"
	"github.com/stretchr/testify/assert"
)

func TestClassifyDeletion(t *testing.T) {
	data := SVCandidateData{
		ChromA: 1, ChromB: 1,
		StateA: genome.RightOpen, StateB: genome.LeftOpen,
		SupportCount: 10,
	}
	got := Classify(data)
	if assert.Len(t, got, 1) {
		assert.Equal(t, Deletion, got[0].Type)
	}
}

func TestClassifyTandemDuplication(t *testing.T) {
	data := SVCandidateData{
		ChromA: 1, ChromB: 1,
		StateA: genome.LeftOpen, StateB: genome.RightOpen,
		SupportCount: 4,
	}
	got := Classify(data)
	if assert.Len(t, got, 1) {
		assert.Equal(t, TandemDuplication, got[0].Type)
	}
}

func TestClassifyInversion(t *testing.T) {
	data := SVCandidateData{
		ChromA: 1, ChromB: 1,
		StateA: genome.RightOpen, StateB: genome.RightOpen,
		SupportCount: 2,
	}
	got := Classify(data)
	if assert.Len(t, got, 1) {
		assert.Equal(t, Inversion, got[0].Type)
	}
}

func TestClassifyTranslocation(t *testing.T) {
	data := SVCandidateData{
		ChromA: 1, ChromB: 2,
		StateA: genome.RightOpen, StateB: genome.LeftOpen,
		SupportCount: 1,
	}
	got := Classify(data)
	if assert.Len(t, got, 1) {
		assert.Equal(t, Translocation, got[0].Type)
	}
}

func TestClassifyUnknownOrientationStillYieldsOneCandidate(t *testing.T) {
	data := SVCandidateData{ChromA: 1, ChromB: 1}
	got := Classify(data)
	if assert.Len(t, got, 1) {
		assert.Equal(t, Unknown, got[0].Type)
	}
}

func TestScoreMonotoneInSupport(t *testing.T) {
	low := scoreOf(1)
	high := scoreOf(100)
	assert.Less(t, low, high)
	assert.Less(t, high, 1.0)
}

func TestStateOfRecoversOrientationFromEvidence(t *testing.T) {
	interval := genome.Interval{ChromID: 1, Begin: 100, End: 140}
	rightEvidence := genome.Interval{ChromID: 1, Begin: 50, End: 100}
	assert.Equal(t, genome.RightOpen, stateOf(interval, rightEvidence))

	leftEvidence := genome.Interval{ChromID: 1, Begin: 140, End: 190}
	assert.Equal(t, genome.LeftOpen, stateOf(interval, leftEvidence))

	assert.Equal(t, genome.UnknownState, stateOf(interval, genome.Interval{}))
}

package svlocus

import "github.com/grailbio/svlocus/genome"

// NewSingleObservationLocus builds the scanner's unit of input: a two-node
// locus with node 0 ("local") holding count 1 and node 1 ("remote") holding
// count 0, joined by a local->remote edge of count 1 and a remote->local
// edge of count 0. localEvidence and remoteEvidence set each node's
// evidence range; pass a zero genome.Interval to default it to the node's
// own interval.
func NewSingleObservationLocus(local, remote genome.Interval, localEvidence, remoteEvidence genome.Interval) *Locus {
	l := newLocus(0)
	localIdx := l.AddNode(local, 1)
	remoteIdx := l.AddRemoteNode(remote)
	if !localEvidence.Empty() {
		l.SetNodeEvidence(localIdx, localEvidence)
	}
	if !remoteEvidence.Empty() {
		l.SetNodeEvidence(remoteIdx, remoteEvidence)
	}
	l.LinkNodes(localIdx, remoteIdx, 1, 0)
	return l
}

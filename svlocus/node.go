package svlocus

import "github.com/grailbio/svlocus/genome"

// Node is one vertex of an SVLocus: a hypothesized breakend interval plus
// the directed edges linking it to other nodes in the same locus.
//
// Count is the total number of observations rooted at this node.
// EvidenceRange is the genomic window of reads that contributed to the
// node, as opposed to Interval, which is the (generally wider) hypothesized
// breakend region. Invariant: every key in Edges names a node in the same
// SVLocus as this one.
type Node struct {
	Count         uint16
	Interval      genome.Interval
	EvidenceRange genome.Interval
	Edges         map[NodeIndex]Edge
}

func newNode(iv genome.Interval, count uint16) *Node {
	return &Node{
		Count:         count,
		Interval:      iv,
		EvidenceRange: iv,
		Edges:         make(map[NodeIndex]Edge),
	}
}

package svlocus

import (
	"encoding/gob"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/svlocus/genome"
)

// currentWriteVersion is bumped whenever the wire layout below changes
// incompatibly.
const currentWriteVersion = 1

// gobRef is the wire form of a single reference sequence entry.
type gobRef struct {
	Name string
	Len  int64
}

// gobNode is the wire form of a Node.
type gobNode struct {
	Count         uint16
	Interval      genome.Interval
	EvidenceRange genome.Interval
	Edges         map[NodeIndex]Edge
}

// gobLocus is the wire form of a Locus.
type gobLocus struct {
	Nodes []gobNode
}

// gobSVLocusSet is the versioned top-level wire struct persisted by
// WriteTo/read back by ReadSVLocusSetFrom.
type gobSVLocusSet struct {
	Version int
	Refs    []gobRef
	Loci    []gobLocus
}

// staticRefs is a genome.ReferenceInfo backed by a fixed name/length table,
// the form a deserialized set's References() returns.
type staticRefs struct {
	names []string
	lens  []int64
}

func (r *staticRefs) NumRefs() int            { return len(r.names) }
func (r *staticRefs) RefName(c uint32) string { return r.names[c] }
func (r *staticRefs) RefLen(c uint32) int64   { return r.lens[c] }

// WriteTo gob-encodes the set -- its reference dictionary and every locus's
// nodes and edges -- to w. The inodes index is not persisted; it is cheaply
// rebuilt by ReadSVLocusSetFrom from the decoded nodes.
func (s *SVLocusSet) WriteTo(w io.Writer) error {
	wire := gobSVLocusSet{Version: currentWriteVersion}
	for i := 0; i < s.refs.NumRefs(); i++ {
		wire.Refs = append(wire.Refs, gobRef{Name: s.refs.RefName(uint32(i)), Len: s.refs.RefLen(uint32(i))})
	}
	for _, l := range s.loci {
		gl := gobLocus{}
		for _, n := range l.nodes {
			gl.Nodes = append(gl.Nodes, gobNode{
				Count:         n.Count,
				Interval:      n.Interval,
				EvidenceRange: n.EvidenceRange,
				Edges:         n.Edges,
			})
		}
		wire.Loci = append(wire.Loci, gl)
	}
	if err := gob.NewEncoder(w).Encode(&wire); err != nil {
		return errors.E(errors.Invalid, "svlocus: WriteTo", err)
	}
	return nil
}

// ReadSVLocusSetFrom decodes a set written by WriteTo, rebuilding its inodes
// index from the decoded node set.
func ReadSVLocusSetFrom(r io.Reader) (*SVLocusSet, error) {
	var wire gobSVLocusSet
	if err := gob.NewDecoder(r).Decode(&wire); err != nil {
		return nil, errors.E(errors.Invalid, "svlocus: ReadSVLocusSetFrom: decode", err)
	}
	if wire.Version != currentWriteVersion {
		return nil, errors.E(errors.Invalid, "svlocus: ReadSVLocusSetFrom: unsupported version", wire.Version)
	}
	refs := &staticRefs{}
	for _, r := range wire.Refs {
		refs.names = append(refs.names, r.Name)
		refs.lens = append(refs.lens, r.Len)
	}
	set := NewSVLocusSet(refs)
	for _, gl := range wire.Loci {
		l := newLocus(len(set.loci))
		for _, gn := range gl.Nodes {
			n := newNode(gn.Interval, gn.Count)
			n.EvidenceRange = gn.EvidenceRange
			if gn.Edges != nil {
				n.Edges = gn.Edges
			}
			l.nodes = append(l.nodes, n)
		}
		set.loci = append(set.loci, l)
	}
	for i := range set.loci {
		set.rebuildLocusIndex(i)
	}
	return set, nil
}

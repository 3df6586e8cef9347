package svscanner

import "github.com/grailbio/hts/sam"

// BAMReferenceInfo adapts a *sam.Header's reference dictionary to
// genome.ReferenceInfo, keeping package svlocus and svscanner free of any
// concrete alignment-library dependency.
type BAMReferenceInfo struct {
	refs []*sam.Reference
}

// NewBAMReferenceInfo wraps h's reference dictionary.
func NewBAMReferenceInfo(h *sam.Header) *BAMReferenceInfo {
	return &BAMReferenceInfo{refs: h.Refs()}
}

func (b *BAMReferenceInfo) NumRefs() int { return len(b.refs) }

func (b *BAMReferenceInfo) RefName(chromID uint32) string {
	return b.refs[chromID].Name()
}

func (b *BAMReferenceInfo) RefLen(chromID uint32) int64 {
	return int64(b.refs[chromID].Len())
}

package svcandidate

import "github.com/grailbio/svlocus/svedge"

// VariantRecordWriter is the sink a caller hands scored candidates to, one
// edge at a time. Implementations decide how (or whether) to serialize the
// three pieces; the core makes no assumption about output format.
type VariantRecordWriter interface {
	WriteCandidate(edge svedge.EdgeInfo, data SVCandidateData, candidates []SVCandidate) error
}

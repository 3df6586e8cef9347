// Package svwriter is the minimal concrete VariantRecordWriter bio-sv-locus
// runs against: a tab-delimited text sink, one line per candidate. It exists
// to make the command runnable end to end, not as a somatic-scoring or
// VCF-compatible serialization -- callers needing either should write their
// own VariantRecordWriter.
package svwriter

import (
	"bufio"
	"fmt"
	"io"

	"github.com/grailbio/svlocus/svcandidate"
	"github.com/grailbio/svlocus/svedge"
)

const header = "chrom_a\tpos_a\tstate_a\tchrom_b\tpos_b\tstate_b\tsupport\ttype\tscore"

// Writer formats candidates as tab-delimited text, one row per candidate
// (an edge yielding N candidates produces N rows, all sharing the edge's
// breakend columns).
type Writer struct {
	w           *bufio.Writer
	wroteHeader bool
}

// New wraps w. Callers that want the header line on every shard's output
// (spec's "bin 0 emits headers" rule applies at the cmd layer, not here)
// call WriteHeader explicitly.
func New(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the column header line on its first call; later
// calls are no-ops.
func (w *Writer) WriteHeader() error {
	if w.wroteHeader {
		return nil
	}
	w.wroteHeader = true
	_, err := fmt.Fprintln(w.w, header)
	return err
}

// WriteCandidate implements svcandidate.VariantRecordWriter.
func (w *Writer) WriteCandidate(edge svedge.EdgeInfo, data svcandidate.SVCandidateData, candidates []svcandidate.SVCandidate) error {
	for _, c := range candidates {
		_, err := fmt.Fprintf(w.w, "%d\t%d-%d\t%s\t%d\t%d-%d\t%s\t%d\t%s\t%.4f\n",
			data.ChromA, data.IntervalA.Begin, data.IntervalA.End, data.StateA,
			data.ChromB, data.IntervalB.Begin, data.IntervalB.End, data.StateB,
			data.SupportCount, c.Type, c.Score)
		if err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered output to the underlying io.Writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

var _ svcandidate.VariantRecordWriter = (*Writer)(nil)

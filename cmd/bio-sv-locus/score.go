package main

import (
	"flag"
	"fmt"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/svlocus/internal/svwriter"
	"github.com/grailbio/svlocus/svcandidate"
	"github.com/grailbio/svlocus/svedge"
	"github.com/grailbio/svlocus/svlocus"
)

func runScore(args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	inPath := fs.String("in", "", "Input SVLocusSet path, as written by build (required)")
	outPath := fs.String("out", "", "Output variant-record path (required)")
	binCount := fs.Int("bin-count", 1, "Number of shards to partition edges into")
	binIndex := fs.Int("bin-index", 0, "This shard's index in [0, bin-count)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" || *outPath == "" {
		return fmt.Errorf("-in and -out are required")
	}

	ctx := vcontext.Background()
	in, err := file.Open(ctx, *inPath)
	if err != nil {
		return err
	}
	defer in.Close(ctx) // nolint: errcheck
	set, err := svlocus.ReadSVLocusSetFrom(in.Reader(ctx))
	if err != nil {
		return fmt.Errorf("reading %s: %w", *inPath, err)
	}

	retriever, err := svedge.NewEdgeRetriever(set, *binCount, *binIndex)
	if err != nil {
		return err
	}

	out, err := file.Create(ctx, *outPath)
	if err != nil {
		return err
	}
	defer out.Close(ctx) // nolint: errcheck
	w := svwriter.New(out.Writer(ctx))
	if *binIndex == 0 {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}

	n := 0
	for retriever.Next() {
		edge := retriever.Edge()
		data := svcandidate.BuildCandidateData(edge)
		candidates := svcandidate.Classify(data)
		if err := w.WriteCandidate(edge, data, candidates); err != nil {
			return err
		}
		n++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	log.Printf("bio-sv-locus score: bin %d/%d wrote %d candidate edges", *binIndex, *binCount, n)
	return out.Close(ctx)
}

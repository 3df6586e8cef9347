package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/svlocus/readstats"
	"github.com/grailbio/svlocus/svlocus"
	"github.com/grailbio/svlocus/svscanner"
)

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	statsPath := fs.String("stats", "", "Read-group fragment-length stats file (required)")
	outPath := fs.String("out", "svlocus.gob", "Output SVLocusSet path")
	cleanMinEdgeCount := fs.Uint("clean-min-edge-count", 2, "Evidence count below which a node is pruned as noise after build")
	if err := fs.Parse(args); err != nil {
		return err
	}
	bamPaths := fs.Args()
	if *statsPath == "" || len(bamPaths) == 0 {
		return fmt.Errorf("-stats and at least one BAM path are required")
	}

	ctx := vcontext.Background()
	stats, err := readstats.Read(*statsPath)
	if err != nil {
		return fmt.Errorf("reading stats file: %w", err)
	}
	scanner, err := svscanner.NewSVLocusScanner(svscanner.DefaultReadScannerOptions(), stats, bamPaths)
	if err != nil {
		return err
	}

	perFile, err := scanBAMsConcurrently(ctx, bamPaths, scanner, stats)
	if err != nil {
		return err
	}

	final := perFile[0]
	for _, s := range perFile[1:] {
		if err := svlocus.MergeSets(final, s); err != nil {
			return fmt.Errorf("merging per-file sets: %w", err)
		}
	}
	removed := final.Clean(uint16(*cleanMinEdgeCount))
	log.Printf("bio-sv-locus build: %d loci, %d observations, %d evidence removed as noise",
		final.NumLoci(), final.TotalObservationCount(), removed)

	out, err := file.Create(ctx, *outPath)
	if err != nil {
		return err
	}
	defer out.Close(ctx) // nolint: errcheck
	if err := final.WriteTo(out.Writer(ctx)); err != nil {
		return err
	}
	return out.Close(ctx)
}

// buildResult carries one worker's outcome back to the single collector
// goroutine, mirroring the scan-then-funnel shape a distant-mate worker
// pool uses.
type buildResult struct {
	path string
	set  *svlocus.SVLocusSet
	err  error
}

// scanBAMsConcurrently scans each of bamPaths on its own goroutine into an
// independent SVLocusSet, then returns them all in input order for the
// caller to fold together on a single goroutine with MergeSets.
func scanBAMsConcurrently(ctx context.Context, bamPaths []string, scanner *svscanner.SVLocusScanner, stats *readstats.ReadGroupStatsSet) ([]*svlocus.SVLocusSet, error) {
	results := make(chan buildResult, len(bamPaths))
	for i, p := range bamPaths {
		go func(i int, p string) {
			set, err := scanBAMFile(ctx, p, scanner, stats, uint32(i))
			results <- buildResult{path: p, set: set, err: err}
		}(i, p)
	}
	byPath := make(map[string]*svlocus.SVLocusSet, len(bamPaths))
	for range bamPaths {
		r := <-results
		if r.err != nil {
			return nil, fmt.Errorf("scanning %s: %w", r.path, r.err)
		}
		byPath[r.path] = r.set
	}
	out := make([]*svlocus.SVLocusSet, len(bamPaths))
	for i, p := range bamPaths {
		out[i] = byPath[p]
	}
	return out, nil
}

// scanBAMFile builds one file's independent SVLocusSet. Reads are paired by
// name in memory; a read whose mate never arrives (its mate was unmapped,
// filtered upstream, or the file ends first) is dropped silently, since a
// SingleObservationLocus always needs both sides of a pair.
func scanBAMFile(ctx context.Context, path string, scanner *svscanner.SVLocusScanner, stats *readstats.ReadGroupStatsSet, fallbackRG uint32) (*svlocus.SVLocusSet, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close(ctx) // nolint: errcheck

	r, err := bam.NewReader(f.Reader(ctx), 1)
	if err != nil {
		return nil, err
	}
	set := svlocus.NewSVLocusSet(svscanner.NewBAMReferenceInfo(r.Header()))

	pending := make(map[string]*sam.Record)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec.Flags&(sam.Secondary|sam.Supplementary|sam.Unmapped) != 0 {
			continue
		}
		mate, ok := pending[rec.Name]
		if !ok {
			pending[rec.Name] = rec
			continue
		}
		delete(pending, rec.Name)

		rgIdx := rgIndexFor(rec, stats, fallbackRG)
		loc, err := scanner.SVLocus(rec, mate, rgIdx)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			if err := set.Merge(loc); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// rgIndexFor resolves rec's read-group stats index from its RG aux tag,
// falling back to fallback when the tag is absent or names a group the
// stats set does not know about.
func rgIndexFor(rec *sam.Record, stats *readstats.ReadGroupStatsSet, fallback uint32) uint32 {
	aux := rec.AuxFields.Get(sam.NewTag("RG"))
	if aux == nil {
		return fallback
	}
	name, ok := aux.Value().(string)
	if !ok {
		return fallback
	}
	idx, ok := stats.GroupIndex(name)
	if !ok {
		return fallback
	}
	return idx
}

/*
bio-sv-locus builds and scores a structural-variant evidence graph from
paired-end alignments.

It has two subcommands:

	bio-sv-locus build -stats PATH -out PATH bam...
	bio-sv-locus score -in PATH -out PATH -bin-count N -bin-index I

build scans one or more BAMs, accumulates a SVLocusSet, and writes it to
-out. score reads a SVLocusSet written by build, enumerates the edges
assigned to bin -bin-index of a -bin-count-way partition, and writes scored
candidate records for that shard alone -- bin 0 additionally emits the
output header.
*/
package main

import (
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s build -stats PATH -out PATH bam...\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s score -in PATH -out PATH -bin-count N -bin-index I\n", os.Args[0])
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "score":
		err = runScore(os.Args[2:])
	case "-h", "-help", "--help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error.Printf("bio-sv-locus %s: %v", os.Args[1], err)
		os.Exit(1)
	}
}

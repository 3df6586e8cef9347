package svscanner

// ScannerStats tallies per-scanner read dispositions, mirroring the
// per-shard counters a production scan logs at the end of a run.
// ChimericLocus and SVLocus update NumFiltered, NumChimeric and
// NumLargeFragment; no SVLocusScanner method updates NumScanned or
// NumProperPair, so those two stay 0.
type ScannerStats struct {
	NumScanned       uint64
	NumFiltered      uint64
	NumChimeric      uint64
	NumProperPair    uint64
	NumLargeFragment uint64
}

func (s *ScannerStats) observeScanned()       { s.NumScanned++ }
func (s *ScannerStats) observeFiltered()      { s.NumFiltered++ }
func (s *ScannerStats) observeChimeric()      { s.NumChimeric++ }
func (s *ScannerStats) observeProperPair()    { s.NumProperPair++ }
func (s *ScannerStats) observeLargeFragment() { s.NumLargeFragment++ }

package readstats

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/grailbio/base/errors"
)

// ReadGroupStatsSet is an indexed collection of PairStats, keyed by
// alignment-file or read-group identifier. The index assigned to each key
// is stable for the lifetime of the set and is used by the scanner to
// avoid string hashing in hot paths.
type ReadGroupStatsSet struct {
	keys  []string
	byKey map[string]uint32
	stats []*PairStats
}

// NewReadGroupStatsSet returns an empty set.
func NewReadGroupStatsSet() *ReadGroupStatsSet {
	return &ReadGroupStatsSet{byKey: make(map[string]uint32)}
}

// Add registers stats for key, returning its stable index. Calling Add
// again with a key already present overwrites its stats but keeps the same
// index.
func (s *ReadGroupStatsSet) Add(key string, stats *PairStats) uint32 {
	if idx, ok := s.byKey[key]; ok {
		s.stats[idx] = stats
		return idx
	}
	idx := uint32(len(s.keys))
	s.keys = append(s.keys, key)
	s.stats = append(s.stats, stats)
	s.byKey[key] = idx
	return idx
}

// GroupIndex returns the stable integer handle for key, if present.
func (s *ReadGroupStatsSet) GroupIndex(key string) (uint32, bool) {
	idx, ok := s.byKey[key]
	return idx, ok
}

// Get returns the PairStats registered at index. Panics if index is out of
// range, since it is meant to be driven by a value previously returned
// from GroupIndex.
func (s *ReadGroupStatsSet) Get(index uint32) *PairStats {
	return s.stats[index]
}

// Len returns the number of read groups in the set.
func (s *ReadGroupStatsSet) Len() int {
	return len(s.keys)
}

// statsFileHeader is the fixed header row of the stats file format (spec
// §6): one row per read group, columns sd, median, orientation.
var statsFileHeader = []string{"# key", "sd", "median", "orientation"}

// Write serializes the set to path as tab-delimited text: one header row
// followed by one row per read group, in the order groups were Added.
func (s *ReadGroupStatsSet) Write(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.E(err, "readstats: couldn't create stats file:", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return s.WriteTo(f)
}

// WriteTo writes the tab-delimited representation to w.
func (s *ReadGroupStatsSet) WriteTo(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(statsFileHeader); err != nil {
		return errors.E(err, "readstats: error writing stats header")
	}
	for i, key := range s.keys {
		st := s.stats[i]
		row := []string{
			key,
			strconv.FormatFloat(st.SD, 'g', -1, 64),
			strconv.FormatFloat(st.Median, 'g', -1, 64),
			st.Orientation.String(),
		}
		if err := cw.Write(row); err != nil {
			return errors.E(err, "readstats: error writing stats row for", key)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.E(err, "readstats: error flushing stats file")
	}
	return nil
}

// Read parses path, produced by Write, into a new ReadGroupStatsSet.
func Read(path string) (*ReadGroupStatsSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(err, "readstats: couldn't open stats file:", path)
	}
	defer f.Close()
	return ReadFrom(bufio.NewReader(f))
}

// ReadFrom parses the tab-delimited stats format from r.
func ReadFrom(r io.Reader) (*ReadGroupStatsSet, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.E(err, "readstats: malformed stats file")
	}
	if len(rows) == 0 {
		return nil, errors.E(errors.Invalid, "readstats: empty stats file")
	}
	if len(rows[0]) != 4 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("readstats: bad header row %v", rows[0]))
	}
	set := NewReadGroupStatsSet()
	for _, row := range rows[1:] {
		if len(row) != 4 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("readstats: bad row %v", row))
		}
		sd, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, errors.E(errors.Invalid, "readstats: bad sd value:", row[1])
		}
		median, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, errors.E(errors.Invalid, "readstats: bad median value:", row[2])
		}
		orientation, err := ParseOrientation(row[3])
		if err != nil {
			return nil, err
		}
		set.Add(row[0], newPairStats(median, sd, orientation))
	}
	return set, nil
}

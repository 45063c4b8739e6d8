package interval

import (
	"encoding/binary"
	"sort"

	"github.com/arborist-go/pforest/errs"
	"github.com/arborist-go/pforest/schema"
)

// Index is a flat vector of IntervalEntry records sorted by Start
// ascending, ties broken by insertion order.
type Index struct {
	entries []schema.IntervalEntry
}

// Build sorts a copy of entries by Start (stable, so ties keep their
// original relative order) and returns the resulting Index.
func Build(entries []schema.IntervalEntry) Index {
	sorted := make([]schema.IntervalEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	return Index{entries: sorted}
}

// Len returns the number of entries in the index.
func (idx Index) Len() int { return len(idx.entries) }

// Entries returns the index's entries in sorted order. The returned
// slice is owned by the caller's copy if they mutate; Index itself
// never mutates it again.
func (idx Index) Entries() []schema.IntervalEntry { return idx.entries }

// FindAt returns the node offset of every entry whose closed interval
// [Start, End] contains point, in ascending Start order. It bounds its
// linear scan to the prefix that sort.Search identifies as possibly
// containing point (every entry past that prefix has Start > point and
// so cannot contain it), then checks each candidate's End.
func (idx Index) FindAt(point uint32) []uint32 {
	upper := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].Start > point
	})

	var out []uint32
	for i := 0; i < upper; i++ {
		if idx.entries[i].Contains(point) {
			out = append(out, idx.entries[i].NodeOffset)
		}
	}

	return out
}

// Serialize encodes the index as a leading 32-bit count followed by
// that many 12-byte IntervalEntry records.
func (idx Index) Serialize() []byte {
	out := make([]byte, 4+len(idx.entries)*schema.IntervalEntrySize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(idx.entries)))

	for i, e := range idx.entries {
		copy(out[4+i*schema.IntervalEntrySize:], e.Bytes())
	}

	return out
}

// Deserialize parses an Index from data previously produced by
// Serialize. It fails with ErrTruncated if data is shorter than the
// count field declares.
func Deserialize(data []byte) (Index, error) {
	if len(data) < schema.ListCountFieldSize {
		return Index{}, errs.ErrTruncated
	}

	count := binary.LittleEndian.Uint32(data[0:4])
	need := schema.ListCountFieldSize + int(count)*schema.IntervalEntrySize
	if len(data) < need {
		return Index{}, errs.ErrTruncated
	}

	entries := make([]schema.IntervalEntry, count)
	for i := range entries {
		start := schema.ListCountFieldSize + i*schema.IntervalEntrySize
		rec, err := schema.ParseIntervalEntry(data[start : start+schema.IntervalEntrySize])
		if err != nil {
			return Index{}, err
		}
		entries[i] = rec
	}

	return Index{entries: entries}, nil
}

package bulkstore

import "github.com/bitshard/bulkstore/bulkrecord"

// recordTable is the in-memory mirror of the TOC: an ordered slice
// (insertion order, so tail-optimization can compare against the last
// element) plus a secondary index from UUID to slice position.
type recordTable struct {
	records []bulkrecord.FileRecord
	index   map[bulkrecord.UUID]int
}

func newRecordTable() *recordTable {
	return &recordTable{index: make(map[bulkrecord.UUID]int)}
}

func newRecordTableFrom(records []bulkrecord.FileRecord) *recordTable {
	t := &recordTable{
		records: records,
		index:   make(map[bulkrecord.UUID]int, len(records)),
	}
	for i, r := range records {
		t.index[r.UUID] = i
	}
	return t
}

func (t *recordTable) append(r bulkrecord.FileRecord) {
	t.index[r.UUID] = len(t.records)
	t.records = append(t.records, r)
}

func (t *recordTable) get(u bulkrecord.UUID) (bulkrecord.FileRecord, bool) {
	idx, ok := t.index[u]
	if !ok {
		return bulkrecord.FileRecord{}, false
	}
	return t.records[idx], true
}

// isTail reports whether u names the last record in insertion order.
func (t *recordTable) isTail(u bulkrecord.UUID) bool {
	idx, ok := t.index[u]
	return ok && idx == len(t.records)-1
}

// removeTail drops the last record, assumed to be u.
func (t *recordTable) removeTail(u bulkrecord.UUID) {
	idx := t.index[u]
	delete(t.index, u)
	t.records = t.records[:idx]
}

// setFlags replaces the record at u's flags in place.
func (t *recordTable) setFlags(u bulkrecord.UUID, flags bulkrecord.Flags) {
	idx := t.index[u]
	t.records[idx].Flags = flags
}

// replace overwrites the record at u entirely, used by purge when a
// record's start/end move.
func (t *recordTable) replace(u bulkrecord.UUID, r bulkrecord.FileRecord) {
	idx := t.index[u]
	t.records[idx] = r
}

// remove drops an arbitrary record (not necessarily the tail) and
// reindexes everything after it, used by purge.
func (t *recordTable) remove(u bulkrecord.UUID) {
	idx, ok := t.index[u]
	if !ok {
		return
	}
	delete(t.index, u)
	t.records = append(t.records[:idx], t.records[idx+1:]...)
	for i := idx; i < len(t.records); i++ {
		t.index[t.records[i].UUID] = i
	}
}

// snapshot returns a defensive copy of the ordered record list.
func (t *recordTable) snapshot() []bulkrecord.FileRecord {
	out := make([]bulkrecord.FileRecord, len(t.records))
	copy(out, t.records)
	return out
}

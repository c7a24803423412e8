package pqhash

// Table is a sparse hash table over a 2^b key space, addressed as
// (groupIndex, subindex) = (key >> 5, key & 31). Only populated bucket
// groups are ever allocated, giving O(populated) memory regardless of
// how large b is — unlike a dense array of 2^(b-5) bucket-group slots,
// this keeps a key space of up to 2^32 (b=32) practical.
type Table struct {
	b      int
	groups map[uint32]*bucketGroup
}

// NewTable creates an empty table addressing a 2^b key space. b must be a
// multiple of 8 greater than 5 (at least one full byte, enough bits to
// address a sub-index within a group).
func NewTable(b int) *Table {
	if b <= 5 {
		panic("pqhash: b must address at least one group (b > 5)")
	}
	return &Table{b: b, groups: make(map[uint32]*bucketGroup)}
}

// Bits returns the configured key width in bits.
func (t *Table) Bits() int { return t.b }

// Insert records that key maps to id.
func (t *Table) Insert(key uint32, id uint32) {
	groupIdx := key >> 5
	subindex := int(key & 31)

	g, ok := t.groups[groupIdx]
	if !ok {
		g = newBucketGroup()
		t.groups[groupIdx] = g
	}
	g.insert(subindex, id)
}

// Query returns the ids stored under key, and whether any were found.
func (t *Table) Query(key uint32) ([]uint32, bool) {
	groupIdx := key >> 5
	subindex := int(key & 31)

	g, ok := t.groups[groupIdx]
	if !ok {
		return nil, false
	}
	return g.query(subindex)
}

// Stats returns the number of populated bucket groups and the total
// number of stored postings, for observability gauges.
func (t *Table) Stats() (groups, postings int) {
	groups = len(t.groups)
	for _, g := range t.groups {
		postings += g.postingCount()
	}
	return
}

// Sparsity returns the ratio of populated buckets (group,subindex pairs)
// to the full addressable 2^b key space.
func (t *Table) Sparsity() float64 {
	populated := 0
	for _, g := range t.groups {
		populated += len(g.populatedSubindices())
	}
	total := float64(uint64(1) << uint(t.b))
	return float64(populated) / total
}

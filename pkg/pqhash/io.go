package pqhash

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"sort"
)

// Write serializes t in the bucket-group wire format: a (b, size) header
// followed by one record per populated group — (groupIdx, present,
// arraySize, packed sub-lists) — and a sentinel groupIdx equal to size.
// The packed sub-lists are, in ascending sub-index order, a (length,
// capacity, elements...) block per sub-index set in present, where
// capacity duplicates length (the original format's historical array
// capacity word); arraySize is the sum of (length+2) over those blocks.
func (t *Table) Write(w io.Writer) error {
	size := uint64(1) << uint(t.b-5)

	if err := binary.Write(w, binary.LittleEndian, int32(t.b)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, size); err != nil {
		return err
	}

	groupIdxs := make([]uint32, 0, len(t.groups))
	for idx := range t.groups {
		groupIdxs = append(groupIdxs, idx)
	}
	sort.Slice(groupIdxs, func(i, j int) bool { return groupIdxs[i] < groupIdxs[j] })

	for _, idx := range groupIdxs {
		g := t.groups[idx]
		subindices := g.populatedSubindices()

		arraySize := uint32(0)
		for _, si := range subindices {
			arraySize += uint32(2 + g.lists[si].size())
		}

		if err := binary.Write(w, binary.LittleEndian, idx); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, g.present); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, arraySize); err != nil {
			return err
		}
		for _, si := range subindices {
			list := g.lists[si]
			length := uint32(list.size())
			if err := binary.Write(w, binary.LittleEndian, length); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, length); err != nil { // historical capacity word, duplicates length
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, list.data); err != nil {
				return err
			}
		}
	}

	sentinel := uint32(size)
	return binary.Write(w, binary.LittleEndian, sentinel)
}

// ReadTable deserializes a Table written by Write.
func ReadTable(r io.Reader) (*Table, error) {
	var b32 int32
	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &b32); err != nil {
		return nil, fmt.Errorf("pqhash: read header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("pqhash: read header: %w", err)
	}

	t := NewTable(int(b32))
	wantSize := uint64(1) << uint(t.b-5)
	if size != wantSize {
		return nil, fmt.Errorf("pqhash: size %d in stream does not match b=%d (want %d)", size, t.b, wantSize)
	}

	for {
		var groupIdx uint32
		if err := binary.Read(r, binary.LittleEndian, &groupIdx); err != nil {
			return nil, fmt.Errorf("pqhash: read group index: %w", err)
		}
		if uint64(groupIdx) == size {
			break // sentinel
		}

		var present uint32
		if err := binary.Read(r, binary.LittleEndian, &present); err != nil {
			return nil, fmt.Errorf("pqhash: read present bitmap: %w", err)
		}
		var arraySize uint32
		if err := binary.Read(r, binary.LittleEndian, &arraySize); err != nil {
			return nil, fmt.Errorf("pqhash: read array size: %w", err)
		}

		g := newBucketGroup()
		g.present = present

		var consumed uint32
		p := present
		for p != 0 {
			si := bits.TrailingZeros32(p)
			p &^= 1 << uint(si)

			var length uint32
			if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
				return nil, fmt.Errorf("pqhash: read sub-list length: %w", err)
			}
			var capacity uint32 // historical array capacity word, duplicates length
			if err := binary.Read(r, binary.LittleEndian, &capacity); err != nil {
				return nil, fmt.Errorf("pqhash: read sub-list capacity: %w", err)
			}
			list := newPostingList()
			if length > 0 {
				list.data = make([]uint32, length)
				if err := binary.Read(r, binary.LittleEndian, list.data); err != nil {
					return nil, fmt.Errorf("pqhash: read sub-list data: %w", err)
				}
			}
			g.lists[si] = list
			consumed += 2 + length
		}
		if consumed != arraySize {
			return nil, fmt.Errorf("pqhash: group %d: consumed %d words, header declared %d", groupIdx, consumed, arraySize)
		}

		t.groups[groupIdx] = g
	}

	return t, nil
}

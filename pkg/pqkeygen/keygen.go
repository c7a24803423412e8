// Package pqkeygen implements the PQ-key generator of Algorithm 3 in
// Y. Matsui, T. Yamasaki, and K. Aizawa, "PQTable: Non-exhaustive Fast
// Search for Product-quantized Codes using Hash Tables", arXiv 2017: a
// frontier search over PQ codes that yields, for a fixed query, codes in
// ascending order of their asymmetric distance to the query.
package pqkeygen

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/therealutkarshpriyadarshi/pqtable/internal/quantization"
)

// Key pairs a packed PQ key with its asymmetric distance to the query
// that produced it.
type Key struct {
	Packed uint32
	Dist   float32
}

// distKsID is one entry of a per-subspace sorted distance table: ks is
// the original centroid index, sortedRank is its position after sorting
// by distance ascending.
type distKsID struct {
	dist       float32
	ks         byte
	sortedRank byte
}

// candidate is one element of the frontier: for each of the M
// sub-quantizers, which (by sorted rank) centroid it currently names, and
// the summed distance across all of them.
type candidate struct {
	ranks []distKsID
	dist  float32
}

func (c *candidate) updateDist() {
	var d float32
	for _, r := range c.ranks {
		d += r.dist
	}
	c.dist = d
}

func (c *candidate) packedKey() uint32 {
	code := make([]byte, len(c.ranks))
	for i, r := range c.ranks {
		code[i] = r.ks
	}
	return quantization.PackKey(code)
}

// candHeap is a min-heap on candidate.dist.
type candHeap []*candidate

func (h candHeap) Len() int            { return len(h) }
func (h candHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h candHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candHeap) Push(x interface{}) { *h = append(*h, x.(*candidate)) }
func (h *candHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Generator produces PQ keys for a fixed query vector, one increasingly
// distant key per call to Next. M must be 1, 2 or 4 — the widths PackKey
// can fold into a single uint32 key.
type Generator struct {
	m, ks, ds int
	sorted    [][]distKsID // [m][sortedRank]
	frontier  candHeap
	seen      map[uint32]struct{}
}

// NewGenerator builds a Generator for query against the given codebook
// (shaped [M][Ks][Ds]).
func NewGenerator(query []float32, codewords [][][]float32) *Generator {
	m := len(codewords)
	if m > 4 {
		panic(fmt.Sprintf("pqkeygen: M<=4 is supported, got M=%d", m))
	}
	ks := len(codewords[0])
	ds := len(codewords[0][0])
	if len(query) != m*ds {
		panic(fmt.Sprintf("pqkeygen: query has %d dims, want %d", len(query), m*ds))
	}

	g := &Generator{
		m:      m,
		ks:     ks,
		ds:     ds,
		sorted: make([][]distKsID, m),
		seen:   make(map[uint32]struct{}),
	}

	for sub := 0; sub < m; sub++ {
		row := make([]distKsID, ks)
		subQuery := query[sub*ds : (sub+1)*ds]
		for c := 0; c < ks; c++ {
			var dist float32
			for d := 0; d < ds; d++ {
				diff := subQuery[d] - codewords[sub][c][d]
				dist += diff * diff
			}
			row[c] = distKsID{dist: dist, ks: byte(c)}
		}
		sortByDist(row)
		for rank := range row {
			row[rank].sortedRank = byte(rank)
		}
		g.sorted[sub] = row
	}

	nearest := make([]distKsID, m)
	for sub := 0; sub < m; sub++ {
		nearest[sub] = g.sorted[sub][0]
	}
	first := &candidate{ranks: nearest}
	first.updateDist()
	g.push(first)

	return g
}

// Next pops the next-nearest candidate code, expands its M neighbors in
// the frontier, and returns the popped code's packed key and distance.
func (g *Generator) Next() Key {
	top := heap.Pop(&g.frontier).(*candidate)

	for _, next := range g.expand(top) {
		g.push(next)
	}

	return Key{Packed: top.packedKey(), Dist: top.dist}
}

// expand produces up to M neighbor candidates of cand: for each
// sub-quantizer, the candidate that advances that sub-quantizer's rank
// by one step (or repeats the current one if already at the last rank —
// the seen-set in push absorbs the resulting duplicate safely).
func (g *Generator) expand(cand *candidate) []*candidate {
	next := make([]*candidate, g.m)
	for sub := 0; sub < g.m; sub++ {
		ranks := make([]distKsID, len(cand.ranks))
		copy(ranks, cand.ranks)

		rank := ranks[sub].sortedRank
		if int(rank)+1 < g.ks {
			ranks[sub] = g.sorted[sub][rank+1]
		}
		// else: rank is already at the last centroid; leave unchanged.

		c := &candidate{ranks: ranks}
		c.updateDist()
		next[sub] = c
	}
	return next
}

func (g *Generator) push(c *candidate) {
	key := c.packedKey()
	if _, ok := g.seen[key]; ok {
		return
	}
	g.seen[key] = struct{}{}
	heap.Push(&g.frontier, c)
}

func sortByDist(row []distKsID) {
	sort.Slice(row, func(i, j int) bool { return row[i].dist < row[j].dist })
}

package quantization

import (
	"container/heap"
	"fmt"
	"math/rand"
	"sort"
)

// DistanceTable holds, for a single query, the squared-L2 distance from
// each query sub-vector to every codeword of the matching sub-quantizer:
// dtable[m][ks] is the distance between the query's m-th sub-vector and
// the ks-th codeword of the m-th sub-quantizer.
type DistanceTable [][]float32

// ScoredID pairs a vector id with an (asymmetric) distance, the unit of
// result returned by search and by Sort.
type ScoredID struct {
	ID   int
	Dist float32
}

// ProductQuantizer partitions a D-dimensional vector into M sub-vectors of
// Ds = D/M dimensions each, and quantizes every sub-vector against its own
// codebook of Ks centroids (squared-L2 nearest, per H. Jegou et al. 2011).
type ProductQuantizer struct {
	m, ks, ds int
	codewords [][][]float32 // [m][ks][ds]
}

// NewProductQuantizer wraps an already-learned (or loaded) codebook.
// codewords must be shaped [M][Ks][Ds] with all three dimensions uniform.
func NewProductQuantizer(codewords [][][]float32) *ProductQuantizer {
	if len(codewords) == 0 || len(codewords[0]) == 0 || len(codewords[0][0]) == 0 {
		panic("quantization: codewords must be non-empty and shaped [M][Ks][Ds]")
	}
	return &ProductQuantizer{
		m:         len(codewords),
		ks:        len(codewords[0]),
		ds:        len(codewords[0][0]),
		codewords: codewords,
	}
}

// TrainStats summarizes one Learn invocation for metrics/logging.
type TrainStats struct {
	Restarts     int
	TotalInertia float64
}

// Learn trains an M-subspace, Ks-centroid product quantizer from vecs by
// running k-means independently over each sub-space. Every training
// vector's dimensionality must be divisible by M.
func Learn(vecs [][]float32, m, ks int, cfg TrainConfig) (*ProductQuantizer, TrainStats, error) {
	if len(vecs) == 0 {
		return nil, TrainStats{}, fmt.Errorf("quantization: Learn needs at least one training vector")
	}
	d := len(vecs[0])
	if d%m != 0 {
		return nil, TrainStats{}, fmt.Errorf("quantization: dimension %d is not divisible by M=%d", d, m)
	}
	if len(vecs) <= ks {
		return nil, TrainStats{}, fmt.Errorf("quantization: need more training vectors (%d) than Ks (%d)", len(vecs), ks)
	}
	ds := d / m

	rng := rand.New(rand.NewSource(cfg.RandomSeed))
	codewords := make([][][]float32, m)
	var stats TrainStats
	stats.Restarts = cfg.NumRestarts

	for sub := 0; sub < m; sub++ {
		subVecs := make([][]float32, len(vecs))
		for n, v := range vecs {
			subVecs[n] = v[sub*ds : (sub+1)*ds]
		}
		centroids := kMeansPlusPlus(subVecs, ks, cfg.NumIterations, cfg.ConvergenceEpsilon, cfg.NumRestarts, rng)
		codewords[sub] = centroids

		assignments := make([]int, len(subVecs))
		stats.TotalInertia += assignClusters(subVecs, centroids, assignments)
	}

	return &ProductQuantizer{m: m, ks: ks, ds: ds, codewords: codewords}, stats, nil
}

// M returns the number of sub-quantizers.
func (pq *ProductQuantizer) M() int { return pq.m }

// Ks returns the number of centroids per sub-quantizer.
func (pq *ProductQuantizer) Ks() int { return pq.ks }

// Ds returns the dimensionality of each sub-vector.
func (pq *ProductQuantizer) Ds() int { return pq.ds }

// Codewords returns the trained codebook, shaped [M][Ks][Ds].
func (pq *ProductQuantizer) Codewords() [][][]float32 { return pq.codewords }

// Encode quantizes vec into an M-byte PQ code, one byte per sub-quantizer
// holding the nearest centroid's index.
func (pq *ProductQuantizer) Encode(vec []float32) []byte {
	if len(vec) != pq.ds*pq.m {
		panic(fmt.Sprintf("quantization: Encode expects a %d-dim vector, got %d", pq.ds*pq.m, len(vec)))
	}
	code := make([]byte, pq.m)
	for sub := 0; sub < pq.m; sub++ {
		subVec := vec[sub*pq.ds : (sub+1)*pq.ds]
		best := 0
		bestDist := squaredL2(subVec, pq.codewords[sub][0])
		for c := 1; c < pq.ks; c++ {
			d := squaredL2(subVec, pq.codewords[sub][c])
			if d < bestDist {
				bestDist = d
				best = c
			}
		}
		code[sub] = byte(best)
	}
	return code
}

// EncodeBatch encodes every row of vecs into a ByteMatrix.
func (pq *ProductQuantizer) EncodeBatch(vecs [][]float32) *ByteMatrix {
	codes := NewByteMatrix(len(vecs), pq.m)
	for n, v := range vecs {
		codes.SetRow(n, pq.Encode(v))
	}
	return codes
}

// Decode reconstructs an approximate vector from a PQ code by
// concatenating the centroids it names.
func (pq *ProductQuantizer) Decode(code []byte) []float32 {
	if len(code) != pq.m {
		panic(fmt.Sprintf("quantization: Decode expects a %d-byte code, got %d", pq.m, len(code)))
	}
	vec := make([]float32, pq.m*pq.ds)
	for sub := 0; sub < pq.m; sub++ {
		ks := int(code[sub])
		copy(vec[sub*pq.ds:(sub+1)*pq.ds], pq.codewords[sub][ks])
	}
	return vec
}

// DTable precomputes the squared-L2 distance from query to every codeword,
// enabling constant-time-per-subspace asymmetric distance lookups.
func (pq *ProductQuantizer) DTable(query []float32) DistanceTable {
	if len(query) != pq.ds*pq.m {
		panic(fmt.Sprintf("quantization: DTable expects a %d-dim query, got %d", pq.ds*pq.m, len(query)))
	}
	dtable := make(DistanceTable, pq.m)
	for sub := 0; sub < pq.m; sub++ {
		subQuery := query[sub*pq.ds : (sub+1)*pq.ds]
		row := make([]float32, pq.ks)
		for c := 0; c < pq.ks; c++ {
			row[c] = squaredL2(subQuery, pq.codewords[sub][c])
		}
		dtable[sub] = row
	}
	return dtable
}

// AD computes the asymmetric distance between a query (via its
// precomputed DistanceTable) and one PQ code.
func (pq *ProductQuantizer) AD(dtable DistanceTable, code []byte) float32 {
	var dist float32
	for sub := 0; sub < pq.m; sub++ {
		dist += dtable[sub][code[sub]]
	}
	return dist
}

// ADBatch computes the asymmetric distance between a query and every row
// of codes.
func (pq *ProductQuantizer) ADBatch(dtable DistanceTable, codes *ByteMatrix) []float32 {
	dists := make([]float32, codes.Size())
	for n := 0; n < codes.Size(); n++ {
		dists[n] = pq.ADAt(dtable, codes, n)
	}
	return dists
}

// ADAt computes the asymmetric distance for the n-th row of codes without
// allocating an intermediate []byte, the hot path used during search.
func (pq *ProductQuantizer) ADAt(dtable DistanceTable, codes *ByteMatrix, n int) float32 {
	row := codes.RawRow(n)
	var dist float32
	for sub := 0; sub < pq.m; sub++ {
		dist += dtable[sub][row[sub]]
	}
	return dist
}

// scoredHeap is a max-heap on Dist, used by Sort to keep only the topK
// smallest distances while scanning dists once.
type scoredHeap []ScoredID

func (h scoredHeap) Len() int            { return len(h) }
func (h scoredHeap) Less(i, j int) bool  { return h[i].Dist > h[j].Dist }
func (h scoredHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *scoredHeap) Push(x interface{}) { *h = append(*h, x.(ScoredID)) }
func (h *scoredHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Sort returns the topK smallest-distance (id, dist) pairs from dists, in
// ascending order. topK of -1 sorts and returns all of them.
func Sort(dists []float32, topK int) []ScoredID {
	if topK == -1 || topK >= len(dists) {
		out := make([]ScoredID, len(dists))
		for i, d := range dists {
			out[i] = ScoredID{ID: i, Dist: d}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Dist < out[j].Dist })
		return out
	}

	h := make(scoredHeap, 0, topK)
	heap.Init(&h)
	for i, d := range dists {
		if len(h) < topK {
			heap.Push(&h, ScoredID{ID: i, Dist: d})
			continue
		}
		if d < h[0].Dist {
			heap.Pop(&h)
			heap.Push(&h, ScoredID{ID: i, Dist: d})
		}
	}

	out := make([]ScoredID, len(h))
	copy(out, h)
	sort.Slice(out, func(i, j int) bool { return out[i].Dist < out[j].Dist })
	return out
}

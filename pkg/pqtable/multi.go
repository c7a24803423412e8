package pqtable

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/pqtable/internal/quantization"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/pqhash"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/pqkeygen"
)

// MultiTable splits the M sub-quantizers into T equal partitions, each
// with its own sparse hash table keyed on that partition's M/T bytes, for
// use when M > 4 would otherwise overflow a single packed key. Every id
// gets its exact asymmetric distance computed once, the first time any
// partition returns it; the search stops once some id has been seen in
// all T partitions' frontiers (the occurrence-counter stop rule of
// PQTable section 4.2).
type MultiTable struct {
	pq            *quantization.ProductQuantizer
	t             int
	codewordsEach [][][][]float32 // [t][m'][ks][ds]
	tablesEach    []*pqhash.Table
	codes         *quantization.ByteMatrix
}

// OptimalT picks T by the PQTable heuristic: the power of two nearest to
// B / log2(N), where B is the code's bit width (8 bits per sub-code) and
// N is the number of indexed vectors.
func OptimalT(bitsPerCode, n int) int {
	if n <= 1 {
		return 1
	}
	t := math.Pow(2, math.Round(math.Log2(float64(bitsPerCode)/math.Log2(float64(n)))))
	if t < 1 {
		return 1
	}
	return int(t)
}

func divideCodewords(codewords [][][]float32, t int) [][][][]float32 {
	m := len(codewords)
	if m%t != 0 {
		panic(fmt.Sprintf("pqtable: M=%d is not divisible by T=%d", m, t))
	}
	eachM := m / t
	out := make([][][][]float32, t)
	for part := 0; part < t; part++ {
		out[part] = codewords[eachM*part : eachM*(part+1)]
	}
	return out
}

// BuildMultiTable constructs a MultiTable splitting the codebook into T
// equal partitions.
func BuildMultiTable(codewords [][][]float32, codes *quantization.ByteMatrix, t int) *MultiTable {
	if t <= 1 {
		panic("pqtable: MultiTable requires T>1; use SingleTable for T=1")
	}
	pq := quantization.NewProductQuantizer(codewords)
	if pq.M()%t != 0 {
		panic(fmt.Sprintf("pqtable: M=%d is not divisible by T=%d", pq.M(), t))
	}

	codewordsEach := divideCodewords(codewords, t)
	eachM := pq.M() / t

	tables := make([]*pqhash.Table, t)
	for part := 0; part < t; part++ {
		tables[part] = pqhash.NewTable(8 * eachM)
	}

	for n := 0; n < codes.Size(); n++ {
		row := codes.Row(n)
		for part := 0; part < t; part++ {
			sub := row[eachM*part : eachM*(part+1)]
			key := quantization.PackKey(sub)
			tables[part].Insert(key, uint32(n))
		}
	}

	return &MultiTable{pq: pq, t: t, codewordsEach: codewordsEach, tablesEach: tables, codes: codes}
}

type multiCandidate struct {
	id    int
	dist  float32
	count int
}

func (m *MultiTable) newKeyGens(query []float32) []*pqkeygen.Generator {
	eachD := len(query) / m.t
	gens := make([]*pqkeygen.Generator, m.t)
	for part := 0; part < m.t; part++ {
		sub := query[eachD*part : eachD*(part+1)]
		gens[part] = pqkeygen.NewGenerator(sub, m.codewordsEach[part])
	}
	return gens
}

// Query returns the single nearest base vector, stopping as soon as one
// candidate has been confirmed present in every partition's frontier.
func (m *MultiTable) Query(query []float32) Result {
	dtable := m.pq.DTable(query)
	gens := m.newKeyGens(query)
	counts := make(map[uint32]*multiCandidate)

	for {
		for part := 0; part < m.t; part++ {
			k := gens[part].Next()
			ids, ok := m.tablesEach[part].Query(k.Packed)
			if !ok {
				continue
			}
			for _, id := range ids {
				c, exists := counts[id]
				if !exists {
					c = &multiCandidate{id: int(id), dist: m.pq.ADAt(dtable, m.codes, int(id))}
					counts[id] = c
				}
				c.count++
				if c.count == m.t {
					return m.bestOf(counts)
				}
			}
		}
	}
}

func (m *MultiTable) bestOf(counts map[uint32]*multiCandidate) Result {
	best := Result{Dist: float32(math.MaxFloat32)}
	for _, c := range counts {
		if c.dist < best.Dist {
			best = Result{ID: c.id, Dist: c.dist}
		}
	}
	return best
}

// QueryTopK returns up to topK matches, nearest first. Every id seen in
// at least one partition's frontier gets its exact asymmetric distance
// computed on first sight and enters the candidate pool; the pool is
// only trimmed to topK once some id has been confirmed (seen in all T
// partitions) with at least topK pool members at or below its distance
// — matching PQMultiTable::Query(query, top_k)'s std::partition over
// the full candidates list in the original implementation, not just the
// fully-confirmed subset.
func (m *MultiTable) QueryTopK(query []float32, topK int) []Result {
	if topK <= 0 {
		panic("pqtable: topK must be positive")
	}
	if topK == 1 {
		return []Result{m.Query(query)}
	}

	dtable := m.pq.DTable(query)
	gens := m.newKeyGens(query)
	candidates := make(map[uint32]*multiCandidate)

	for {
		for part := 0; part < m.t; part++ {
			k := gens[part].Next()
			ids, ok := m.tablesEach[part].Query(k.Packed)
			if !ok {
				continue
			}
			for _, id := range ids {
				c, exists := candidates[id]
				if !exists {
					c = &multiCandidate{id: int(id), dist: m.pq.ADAt(dtable, m.codes, int(id))}
					candidates[id] = c
				}
				c.count++
				if c.count != m.t {
					continue
				}

				distMin := c.dist
				lessEq := 0
				for _, other := range candidates {
					if other.dist <= distMin {
						lessEq++
					}
				}
				if lessEq >= topK {
					results := make([]Result, 0, len(candidates))
					for _, other := range candidates {
						results = append(results, Result{ID: other.id, Dist: other.dist})
					}
					sort.Slice(results, func(i, j int) bool { return results[i].Dist < results[j].Dist })
					return results[:topK]
				}
			}
		}
	}
}

// WriteTo persists codeword.txt, T.txt, one table<t>.bin per partition
// and pqcode.bin (the full code matrix).
func (m *MultiTable) WriteTo(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("pqtable: mkdir %s: %w", dirPath, err)
	}
	if err := writeCodewordFile(dirPath, m.pq.Codewords()); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dirPath, tFile), []byte(strconv.Itoa(m.t)), 0o644); err != nil {
		return fmt.Errorf("pqtable: write T.txt: %w", err)
	}
	for part := 0; part < m.t; part++ {
		path := filepath.Join(dirPath, fmt.Sprintf("table%d.bin", part))
		if err := writeHashTableFile(path, m.tablesEach[part]); err != nil {
			return err
		}
	}

	f, err := os.Create(filepath.Join(dirPath, "pqcode.bin"))
	if err != nil {
		return fmt.Errorf("pqtable: create pqcode.bin: %w", err)
	}
	defer f.Close()
	if _, err := m.codes.WriteTo(f); err != nil {
		return fmt.Errorf("pqtable: write pqcode.bin: %w", err)
	}
	return nil
}

// LoadMultiTable reads back a MultiTable written by WriteTo.
func LoadMultiTable(dirPath string) (*MultiTable, error) {
	codewords, err := readCodewordFile(dirPath)
	if err != nil {
		return nil, err
	}

	tRaw, err := os.ReadFile(filepath.Join(dirPath, tFile))
	if err != nil {
		return nil, fmt.Errorf("pqtable: read T.txt: %w", err)
	}
	t, err := strconv.Atoi(strings.TrimSpace(string(tRaw)))
	if err != nil {
		return nil, fmt.Errorf("pqtable: parse T.txt: %w", err)
	}

	pq := quantization.NewProductQuantizer(codewords)
	codewordsEach := divideCodewords(codewords, t)

	tables := make([]*pqhash.Table, t)
	for part := 0; part < t; part++ {
		table, err := readHashTableFile(filepath.Join(dirPath, fmt.Sprintf("table%d.bin", part)))
		if err != nil {
			return nil, err
		}
		tables[part] = table
	}

	codeFile, err := os.Open(filepath.Join(dirPath, "pqcode.bin"))
	if err != nil {
		return nil, fmt.Errorf("pqtable: open pqcode.bin: %w", err)
	}
	defer codeFile.Close()
	codes, err := quantization.ReadByteMatrix(codeFile, -1)
	if err != nil {
		return nil, fmt.Errorf("pqtable: read pqcode.bin: %w", err)
	}

	return &MultiTable{pq: pq, t: t, codewordsEach: codewordsEach, tablesEach: tables, codes: codes}, nil
}

// Stats exposes partition t's hash table population for metrics.
func (m *MultiTable) Stats(part int) (groups, postings int, sparsity float64) {
	g, p := m.tablesEach[part].Stats()
	return g, p, m.tablesEach[part].Sparsity()
}

// NumPartitions returns T.
func (m *MultiTable) NumPartitions() int { return m.t }

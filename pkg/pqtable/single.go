package pqtable

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/therealutkarshpriyadarshi/pqtable/internal/quantization"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/pqhash"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/pqkeygen"
)

// SingleTable answers queries with one sparse hash table keyed by the
// full M-byte PQ code, usable whenever M <= 4 (so the whole code packs
// into one uint32 key).
type SingleTable struct {
	pq    *quantization.ProductQuantizer
	table *pqhash.Table
}

// BuildSingleTable constructs a SingleTable over codes, whose m-th row is
// the PQ code of the m-th base vector.
func BuildSingleTable(codewords [][][]float32, codes *quantization.ByteMatrix) *SingleTable {
	pq := quantization.NewProductQuantizer(codewords)
	if codes.Dim() != pq.M() {
		panic(fmt.Sprintf("pqtable: code width %d does not match M=%d", codes.Dim(), pq.M()))
	}
	if pq.M() > 4 {
		panic(fmt.Sprintf("pqtable: SingleTable requires M<=4, got M=%d", pq.M()))
	}

	table := pqhash.NewTable(8 * pq.M())
	for n := 0; n < codes.Size(); n++ {
		key := quantization.PackKey(codes.Row(n))
		table.Insert(key, uint32(n))
	}

	return &SingleTable{pq: pq, table: table}
}

// Query returns the nearest base vector to query, reached by walking the
// PQ-key generator's frontier until a populated bucket is found.
func (s *SingleTable) Query(query []float32) Result {
	gen := pqkeygen.NewGenerator(query, s.pq.Codewords())
	for {
		k := gen.Next()
		ids, ok := s.table.Query(k.Packed)
		if ok {
			return Result{ID: int(ids[0]), Dist: k.Dist}
		}
	}
}

// QueryTopK returns up to topK matches, nearest first.
func (s *SingleTable) QueryTopK(query []float32, topK int) []Result {
	if topK <= 0 {
		panic("pqtable: topK must be positive")
	}
	if topK == 1 {
		return []Result{s.Query(query)}
	}

	gen := pqkeygen.NewGenerator(query, s.pq.Codewords())
	var found []Result
	for len(found) < topK {
		k := gen.Next()
		ids, ok := s.table.Query(k.Packed)
		if !ok {
			continue
		}
		for _, id := range ids {
			found = append(found, Result{ID: int(id), Dist: k.Dist})
		}
	}
	if len(found) > topK {
		found = found[:topK]
	}
	return found
}

// WriteTo persists T.txt=1, codeword.txt and table.bin under dirPath.
func (s *SingleTable) WriteTo(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("pqtable: mkdir %s: %w", dirPath, err)
	}
	if err := os.WriteFile(filepath.Join(dirPath, tFile), []byte("1"), 0o644); err != nil {
		return fmt.Errorf("pqtable: write T.txt: %w", err)
	}
	if err := writeCodewordFile(dirPath, s.pq.Codewords()); err != nil {
		return err
	}
	return writeHashTableFile(filepath.Join(dirPath, "table.bin"), s.table)
}

// LoadSingleTable reads back a SingleTable written by WriteTo.
func LoadSingleTable(dirPath string) (*SingleTable, error) {
	codewords, err := readCodewordFile(dirPath)
	if err != nil {
		return nil, err
	}
	table, err := readHashTableFile(filepath.Join(dirPath, "table.bin"))
	if err != nil {
		return nil, err
	}
	return &SingleTable{pq: quantization.NewProductQuantizer(codewords), table: table}, nil
}

// Stats exposes the underlying hash table's population for metrics.
func (s *SingleTable) Stats() (groups, postings int, sparsity float64) {
	g, p := s.table.Stats()
	return g, p, s.table.Sparsity()
}

// Package pqtable implements PQTable: non-exhaustive nearest-neighbor
// search over product-quantized codes, using a sparse hash table keyed by
// PQ codes instead of a brute-force scan (Y. Matsui, T. Yamasaki, and
// K. Aizawa, "PQTable: Non-exhaustive Fast Search for Product-quantized
// Codes using Hash Tables", arXiv 2017).
package pqtable

// Result is one search hit: the id of a base vector and its distance to
// the query (exact asymmetric distance once reranked, the generator's
// running distance otherwise).
type Result struct {
	ID   int
	Dist float32
}

// Table is the common interface implemented by SingleTable and
// MultiTable; Build and Load dispatch to whichever of the two fits the data.
type Table interface {
	// Query returns the best single match for query.
	Query(query []float32) Result
	// QueryTopK returns up to topK matches for query, nearest first.
	QueryTopK(query []float32, topK int) []Result
	// WriteTo persists the table under dirPath, in the on-disk layout
	// described by the codeword.txt / T.txt / table*.bin / pqcode.bin
	// file set.
	WriteTo(dirPath string) error
}

const codewordFile = "codeword.txt"
const tFile = "T.txt"

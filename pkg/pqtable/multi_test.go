package pqtable

import (
	"path/filepath"
	"testing"

	"github.com/therealutkarshpriyadarshi/pqtable/internal/quantization"
)

func toyCodewordsM4() [][][]float32 {
	cw := make([][][]float32, 4)
	for m := 0; m < 4; m++ {
		cw[m] = [][]float32{{0}, {5}, {10}}
	}
	return cw
}

func toyCodesM4() *quantization.ByteMatrix {
	codes := quantization.NewByteMatrix(3, 4)
	codes.SetRow(0, []byte{0, 0, 0, 0}) // (0,0,0,0)
	codes.SetRow(1, []byte{1, 1, 1, 1}) // (5,5,5,5)
	codes.SetRow(2, []byte{2, 2, 2, 2}) // (10,10,10,10)
	return codes
}

func TestMultiTableQueryFindsExactMatch(t *testing.T) {
	tbl := BuildMultiTable(toyCodewordsM4(), toyCodesM4(), 2)
	res := tbl.Query([]float32{5, 5, 5, 5})
	if res.ID != 1 {
		t.Fatalf("Query = %+v, want id 1", res)
	}
	if res.Dist != 0 {
		t.Fatalf("Query.Dist = %f, want 0", res.Dist)
	}
}

func TestMultiTableQueryTopK(t *testing.T) {
	tbl := BuildMultiTable(toyCodewordsM4(), toyCodesM4(), 2)
	res := tbl.QueryTopK([]float32{0, 0, 0, 0}, 2)
	if len(res) != 2 {
		t.Fatalf("got %d results, want 2", len(res))
	}
	if res[0].ID != 0 {
		t.Fatalf("nearest result id = %d, want 0", res[0].ID)
	}
}

// partialConfirmCodewords builds a T=2, M=2 codebook where the true
// nearest id's partition-1 sub-code sits far down that partition's
// frontier order (behind several filler centroids), while the worse
// id 1 has both sub-codes at the front of the two partitions' frontiers
// and so reaches full T-confirmation first, which ends the search
// before id 2 is ever returned by a partition. This exercises the case
// where QueryTopK must trust an id's exact distance as soon as it is
// seen, not only once it has been seen in every partition.
func partialConfirmCodewords() [][][]float32 {
	return [][][]float32{
		{{0}, {1}, {1.5}, {50}, {60}},                // subspace 0 (partition 0)
		{{0.1}, {0.2}, {0.3}, {0.4}, {0.5}},           // subspace 1 (partition 1)
	}
}

func partialConfirmCodes() *quantization.ByteMatrix {
	codes := quantization.NewByteMatrix(3, 2)
	codes.SetRow(0, []byte{0, 4}) // id 0: true nearest, partition-1 code is last in that frontier
	codes.SetRow(1, []byte{1, 0}) // id 1: confirmed early in both partitions
	codes.SetRow(2, []byte{2, 1}) // id 2: farther than ids 0 and 1, not reached before the stop
	return codes
}

func TestMultiTableQueryTopKIncludesPartiallyConfirmedNearest(t *testing.T) {
	tbl := BuildMultiTable(partialConfirmCodewords(), partialConfirmCodes(), 2)
	res := tbl.QueryTopK([]float32{0, 0}, 2)
	if len(res) != 2 {
		t.Fatalf("got %d results, want 2", len(res))
	}
	if res[0].ID != 0 {
		t.Fatalf("nearest result id = %d, want 0 (id 0 has the smallest exact distance despite never reaching full T-confirmation before id 1 does)", res[0].ID)
	}
	if res[1].ID != 1 {
		t.Fatalf("second result id = %d, want 1", res[1].ID)
	}
}

func TestMultiTableWriteLoadRoundTrip(t *testing.T) {
	tbl := BuildMultiTable(toyCodewordsM4(), toyCodesM4(), 2)
	dir := filepath.Join(t.TempDir(), "multi")
	if err := tbl.WriteTo(dir); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	loaded, err := LoadMultiTable(dir)
	if err != nil {
		t.Fatalf("LoadMultiTable: %v", err)
	}
	if loaded.NumPartitions() != 2 {
		t.Fatalf("NumPartitions = %d, want 2", loaded.NumPartitions())
	}
	res := loaded.Query([]float32{10, 10, 10, 10})
	if res.ID != 2 {
		t.Fatalf("loaded Query = %+v, want id 2", res)
	}
}

func TestOptimalT(t *testing.T) {
	// B/log2(N) = 8/1 = 8 here, so T = 8; the result is never below 1.
	if got := OptimalT(8, 2); got < 1 {
		t.Fatalf("OptimalT(8,2) = %d, want >=1", got)
	}
}

func TestBuildPicksMultiTableForTGreaterThan1(t *testing.T) {
	tbl := Build(toyCodewordsM4(), toyCodesM4(), 2)
	if _, ok := tbl.(*MultiTable); !ok {
		t.Fatalf("Build(..., 2) returned %T, want *MultiTable", tbl)
	}
}

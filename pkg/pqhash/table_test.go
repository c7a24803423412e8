package pqhash

import (
	"bytes"
	"testing"
)

func TestInsertQuery(t *testing.T) {
	tbl := NewTable(16)
	tbl.Insert(42, 1)
	tbl.Insert(42, 2)
	tbl.Insert(100, 3)

	got, ok := tbl.Query(42)
	if !ok || len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Query(42) = %v, %v", got, ok)
	}

	got, ok = tbl.Query(100)
	if !ok || len(got) != 1 || got[0] != 3 {
		t.Fatalf("Query(100) = %v, %v", got, ok)
	}

	_, ok = tbl.Query(7)
	if ok {
		t.Fatal("Query(7) should miss")
	}
}

func TestQueryMissInPopulatedGroup(t *testing.T) {
	tbl := NewTable(16)
	// key 0 and key 1 share a group (groupIdx 0); only insert key 0.
	tbl.Insert(0, 9)

	_, ok := tbl.Query(1)
	if ok {
		t.Fatal("Query(1) should miss even though its group is populated")
	}
}

func TestStatsAndSparsity(t *testing.T) {
	tbl := NewTable(16)
	tbl.Insert(1, 1)
	tbl.Insert(1, 2)
	tbl.Insert(64, 3)

	groups, postings := tbl.Stats()
	if groups != 2 {
		t.Fatalf("groups = %d, want 2", groups)
	}
	if postings != 3 {
		t.Fatalf("postings = %d, want 3", postings)
	}

	sparsity := tbl.Sparsity()
	if sparsity <= 0 || sparsity >= 1 {
		t.Fatalf("sparsity = %f, want in (0,1)", sparsity)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	tbl := NewTable(16)
	tbl.Insert(0, 10)
	tbl.Insert(0, 11)
	tbl.Insert(1, 12)
	tbl.Insert(1000, 13)
	tbl.Insert(1031, 14) // group 32 (1031>>5); key 1000 sits in group 31 (1000>>5)

	var buf bytes.Buffer
	if err := tbl.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := ReadTable(&buf)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if got.Bits() != tbl.Bits() {
		t.Fatalf("Bits = %d, want %d", got.Bits(), tbl.Bits())
	}

	for _, key := range []uint32{0, 1, 1000, 1031} {
		wantIDs, wantOK := tbl.Query(key)
		gotIDs, gotOK := got.Query(key)
		if wantOK != gotOK {
			t.Fatalf("key %d: ok mismatch", key)
		}
		if len(wantIDs) != len(gotIDs) {
			t.Fatalf("key %d: len mismatch got %v want %v", key, gotIDs, wantIDs)
		}
		for i := range wantIDs {
			if wantIDs[i] != gotIDs[i] {
				t.Fatalf("key %d: id mismatch at %d: got %d want %d", key, i, gotIDs[i], wantIDs[i])
			}
		}
	}

	if _, ok := got.Query(5); ok {
		t.Fatal("key 5 should still miss after round trip")
	}
}

func TestSetGrowthPolicyValidation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid factor")
		}
	}()
	SetGrowthPolicy(0.5, 1)
}

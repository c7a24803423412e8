package vecio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeFvecs(t *testing.T, path string, vecs [][]float32) {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range vecs {
		binary.Write(&buf, binary.LittleEndian, int32(len(v)))
		binary.Write(&buf, binary.LittleEndian, v)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fvecs: %v", err)
	}
}

func writeBvecs(t *testing.T, path string, vecs [][]byte) {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range vecs {
		binary.Write(&buf, binary.LittleEndian, int32(len(v)))
		buf.Write(v)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write bvecs: %v", err)
	}
}

func TestFvecsReaderStreamsAllVectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.fvecs")
	want := [][]float32{{1, 2, 3}, {4, 5, 6}}
	writeFvecs(t, path, want)

	r, err := NewFvecsReader(path)
	if err != nil {
		t.Fatalf("NewFvecsReader: %v", err)
	}
	defer r.Close()

	var got [][]float32
	for !r.IsEnd() {
		got = append(got, r.Next())
	}

	if len(got) != len(want) {
		t.Fatalf("got %d vectors, want %d", len(got), len(want))
	}
	for i := range want {
		for d := range want[i] {
			if got[i][d] != want[i][d] {
				t.Fatalf("vector %d mismatch: got %v, want %v", i, got[i], want[i])
			}
		}
	}
}

func TestBvecsReaderWidensToFloat32(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bvecs")
	writeBvecs(t, path, [][]byte{{10, 20, 30}})

	r, err := NewBvecsReader(path)
	if err != nil {
		t.Fatalf("NewBvecsReader: %v", err)
	}
	defer r.Close()

	v := r.Next()
	want := []float32{10, 20, 30}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("got %v, want %v", v, want)
		}
	}
	if !r.IsEnd() {
		t.Fatal("expected end of stream after one vector")
	}
}

func TestReadTopN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.fvecs")
	writeFvecs(t, path, [][]float32{{1}, {2}, {3}, {4}})

	vecs, err := ReadTopN(path, "fvecs", 2)
	if err != nil {
		t.Fatalf("ReadTopN: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
}

func TestNewReaderRejectsUnknownExt(t *testing.T) {
	if _, err := NewReader("whatever", "xyz"); err == nil {
		t.Fatal("expected error for unknown extension")
	}
}

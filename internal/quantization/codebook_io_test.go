package quantization

import (
	"bytes"
	"testing"
)

func TestCodebookRoundTrip(t *testing.T) {
	codewords := [][][]float32{
		{{0, 0.5}, {1, 1.5}, {2, 2.5}},
		{{10, 10.5}, {11, 11.5}, {12, 12.5}},
	}

	var buf bytes.Buffer
	if err := WriteCodebook(&buf, codewords); err != nil {
		t.Fatalf("WriteCodebook: %v", err)
	}

	got, err := ReadCodebook(&buf)
	if err != nil {
		t.Fatalf("ReadCodebook: %v", err)
	}

	if len(got) != len(codewords) {
		t.Fatalf("M mismatch: got %d, want %d", len(got), len(codewords))
	}
	for sub := range codewords {
		for c := range codewords[sub] {
			for d := range codewords[sub][c] {
				if got[sub][c][d] != codewords[sub][c][d] {
					t.Fatalf("value mismatch at [%d][%d][%d]: got %f, want %f", sub, c, d, got[sub][c][d], codewords[sub][c][d])
				}
			}
		}
	}
}

func TestReadCodebookMalformedHeader(t *testing.T) {
	_, err := ReadCodebook(bytes.NewBufferString("not,a,header,too,many\n"))
	if err == nil {
		t.Fatal("expected error for malformed header")
	}
}

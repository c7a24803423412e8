package vecio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadScoresRoundTrip(t *testing.T) {
	scores := [][]Score{
		{{ID: 5, Dist: 1.5}, {ID: 9, Dist: 2.25}},
		{{ID: 1, Dist: 0.1}, {ID: 2, Dist: 0.2}},
	}

	path := filepath.Join(t.TempDir(), "scores.txt")
	if err := WriteScores(path, scores); err != nil {
		t.Fatalf("WriteScores: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	got, err := ReadScores(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadScores: %v", err)
	}
	if len(got) != len(scores) {
		t.Fatalf("got %d rows, want %d", len(got), len(scores))
	}
	for q := range scores {
		for k := range scores[q] {
			if got[q][k] != scores[q][k] {
				t.Fatalf("row %d entry %d: got %+v, want %+v", q, k, got[q][k], scores[q][k])
			}
		}
	}
}

func TestWriteScoresRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.txt")
	if err := WriteScores(path, nil); err == nil {
		t.Fatal("expected error for empty scores")
	}
}

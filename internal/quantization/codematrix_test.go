package quantization

import (
	"bytes"
	"testing"
)

func TestByteMatrixSetGetRow(t *testing.T) {
	m := NewByteMatrix(3, 4)
	m.SetRow(1, []byte{1, 2, 3, 4})
	got := m.Row(1)
	want := []byte{1, 2, 3, 4}
	if !bytes.Equal(got, want) {
		t.Fatalf("Row(1) = %v, want %v", got, want)
	}
	if m.At(1, 2) != 3 {
		t.Fatalf("At(1,2) = %d, want 3", m.At(1, 2))
	}
}

func TestByteMatrixWriteReadRoundTrip(t *testing.T) {
	m := NewByteMatrix(5, 3)
	for n := 0; n < 5; n++ {
		m.SetRow(n, []byte{byte(n), byte(n + 1), byte(n + 2)})
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadByteMatrix(&buf, -1)
	if err != nil {
		t.Fatalf("ReadByteMatrix: %v", err)
	}
	if got.Size() != 5 || got.Dim() != 3 {
		t.Fatalf("got shape (%d,%d), want (5,3)", got.Size(), got.Dim())
	}
	for n := 0; n < 5; n++ {
		if !bytes.Equal(got.Row(n), m.Row(n)) {
			t.Fatalf("row %d mismatch: got %v, want %v", n, got.Row(n), m.Row(n))
		}
	}
}

func TestByteMatrixResizePreservesOverlap(t *testing.T) {
	m := NewByteMatrix(2, 3)
	m.SetRow(0, []byte{1, 2, 3})
	m.SetRow(1, []byte{4, 5, 6})

	m.Resize(3, 2) // shrink columns, grow rows
	if m.Size() != 3 || m.Dim() != 2 {
		t.Fatalf("got shape (%d,%d), want (3,2)", m.Size(), m.Dim())
	}
	if got, want := m.Row(0), []byte{1, 2}; !bytes.Equal(got, want) {
		t.Fatalf("row 0 = %v, want %v", got, want)
	}
	if got, want := m.Row(1), []byte{4, 5}; !bytes.Equal(got, want) {
		t.Fatalf("row 1 = %v, want %v", got, want)
	}
	if got, want := m.Row(2), []byte{0, 0}; !bytes.Equal(got, want) {
		t.Fatalf("new row 2 = %v, want zero-valued %v", got, want)
	}

	m.Resize(1, 4) // shrink rows, grow columns
	if got, want := m.Row(0), []byte{1, 2, 0, 0}; !bytes.Equal(got, want) {
		t.Fatalf("row 0 after second resize = %v, want %v", got, want)
	}
}

func TestByteMatrixReadTopN(t *testing.T) {
	m := NewByteMatrix(10, 2)
	for n := 0; n < 10; n++ {
		m.SetRow(n, []byte{byte(n), byte(n)})
	}
	var buf bytes.Buffer
	m.WriteTo(&buf)

	got, err := ReadByteMatrix(&buf, 3)
	if err != nil {
		t.Fatalf("ReadByteMatrix: %v", err)
	}
	if got.Size() != 3 {
		t.Fatalf("got %d rows, want 3", got.Size())
	}
}

package quantization

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ByteMatrix is a flat N*D byte store for PQ codes, avoiding the
// allocation overhead of N separate []byte rows at billion-vector scale.
type ByteMatrix struct {
	n, d int
	data []byte
}

// NewByteMatrix allocates a ByteMatrix of n rows and d columns.
func NewByteMatrix(n, d int) *ByteMatrix {
	m := &ByteMatrix{}
	m.Resize(n, d)
	return m
}

// Resize reallocates the backing store for n rows of d columns each.
// Existing contents are preserved at every (row, col) that still fits
// within the new shape; the rest of the new area is zero-valued.
func (m *ByteMatrix) Resize(n, d int) {
	newData := make([]byte, n*d)
	copyRows := min(m.n, n)
	copyCols := min(m.d, d)
	for row := 0; row < copyRows; row++ {
		copy(newData[row*d:row*d+copyCols], m.data[row*m.d:row*m.d+copyCols])
	}
	m.n, m.d = n, d
	m.data = newData
}

// Size returns the number of rows (vectors).
func (m *ByteMatrix) Size() int { return m.n }

// Dim returns the number of columns (sub-quantizers per row).
func (m *ByteMatrix) Dim() int { return m.d }

// At returns the value at row n, column d.
func (m *ByteMatrix) At(n, d int) byte {
	return m.data[n*m.d+d]
}

// Row returns a copy of the n-th row.
func (m *ByteMatrix) Row(n int) []byte {
	row := make([]byte, m.d)
	copy(row, m.data[n*m.d:(n+1)*m.d])
	return row
}

// RawRow returns a slice aliasing the n-th row directly; callers must not
// retain it past the next mutation of m.
func (m *ByteMatrix) RawRow(n int) []byte {
	return m.data[n*m.d : (n+1)*m.d]
}

// SetRow copies row into the n-th row of m.
func (m *ByteMatrix) SetRow(n int, row []byte) {
	if len(row) != m.d {
		panic(fmt.Sprintf("quantization: SetRow expects %d columns, got %d", m.d, len(row)))
	}
	copy(m.data[n*m.d:(n+1)*m.d], row)
}

// WriteTo serializes the matrix as (N int32, D int32, raw bytes).
func (m *ByteMatrix) WriteTo(w io.Writer) (int64, error) {
	var written int64
	if err := binary.Write(w, binary.LittleEndian, int32(m.n)); err != nil {
		return written, err
	}
	written += 4
	if err := binary.Write(w, binary.LittleEndian, int32(m.d)); err != nil {
		return written, err
	}
	written += 4
	n, err := w.Write(m.data)
	written += int64(n)
	return written, err
}

// ReadByteMatrix deserializes a matrix written by WriteTo. If topN is
// non-negative, only the first topN rows are read.
func ReadByteMatrix(r io.Reader, topN int) (*ByteMatrix, error) {
	var n32, d32 int32
	if err := binary.Read(r, binary.LittleEndian, &n32); err != nil {
		return nil, fmt.Errorf("quantization: read code matrix header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &d32); err != nil {
		return nil, fmt.Errorf("quantization: read code matrix header: %w", err)
	}
	n, d := int(n32), int(d32)
	if topN >= 0 {
		if topN > n {
			return nil, fmt.Errorf("quantization: requested top %d rows, matrix only has %d", topN, n)
		}
		n = topN
	}
	m := NewByteMatrix(n, d)
	if _, err := io.ReadFull(r, m.data); err != nil {
		return nil, fmt.Errorf("quantization: read code matrix body: %w", err)
	}
	return m, nil
}

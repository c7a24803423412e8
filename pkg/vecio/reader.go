// Package vecio streams .fvecs/.bvecs vector files: each record is a
// little-endian int32 dimension D followed by D values (float32 for
// fvecs, uint8 widened to float32 for bvecs).
package vecio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reader streams vectors one at a time, buffering exactly one vector of
// lookahead: IsEnd reports whether that buffered vector is valid, and
// Next both returns it and reads the following one.
type Reader struct {
	r       *bufio.Reader
	closer  io.Closer
	next    []float32
	atEnd   bool
	isBvecs bool
}

// NewFvecsReader opens an .fvecs file for streaming.
func NewFvecsReader(path string) (*Reader, error) {
	return newReader(path, false)
}

// NewBvecsReader opens a .bvecs file for streaming; Next widens each byte
// component to float32.
func NewBvecsReader(path string) (*Reader, error) {
	return newReader(path, true)
}

// NewReader dispatches on ext, which must be "fvecs" or "bvecs".
func NewReader(path, ext string) (*Reader, error) {
	switch strings.ToLower(ext) {
	case "fvecs":
		return NewFvecsReader(path)
	case "bvecs":
		return NewBvecsReader(path)
	default:
		return nil, fmt.Errorf("vecio: unsupported extension %q, want fvecs or bvecs", ext)
	}
}

func newReader(path string, isBvecs bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vecio: open %s: %w", path, err)
	}
	r := &Reader{r: bufio.NewReaderSize(f, 1<<20), closer: f, isBvecs: isBvecs}
	if err := r.fill(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// IsEnd reports whether the stream is exhausted: Next would return no
// more vectors.
func (r *Reader) IsEnd() bool { return r.atEnd }

// Next returns the currently buffered vector and advances the stream.
func (r *Reader) Next() []float32 {
	prev := r.next
	if err := r.fill(); err != nil {
		// A read error after the first successful fill is treated as
		// end-of-stream, matching the original reader's ifstream
		// failure-bit semantics.
		r.atEnd = true
		r.next = nil
	}
	return prev
}

// Close releases the underlying file handle.
func (r *Reader) Close() error { return r.closer.Close() }

func (r *Reader) fill() error {
	var d int32
	if err := binary.Read(r.r, binary.LittleEndian, &d); err != nil {
		r.atEnd = true
		r.next = nil
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("vecio: read dimension header: %w", err)
	}

	vec := make([]float32, d)
	if r.isBvecs {
		buf := make([]byte, d)
		if _, err := io.ReadFull(r.r, buf); err != nil {
			return fmt.Errorf("vecio: read bvecs body: %w", err)
		}
		for i, b := range buf {
			vec[i] = float32(b)
		}
	} else {
		if err := binary.Read(r.r, binary.LittleEndian, vec); err != nil {
			return fmt.Errorf("vecio: read fvecs body: %w", err)
		}
	}

	r.next = vec
	r.atEnd = false
	return nil
}

// ReadTopN reads up to topN vectors from path (ext "fvecs" or "bvecs").
// topN of -1 reads every vector in the file.
func ReadTopN(path, ext string, topN int) ([][]float32, error) {
	r, err := NewReader(path, ext)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var vecs [][]float32
	if topN >= 0 {
		vecs = make([][]float32, 0, topN)
	}
	for !r.IsEnd() {
		if topN >= 0 && len(vecs) >= topN {
			break
		}
		vecs = append(vecs, r.Next())
	}
	return vecs, nil
}

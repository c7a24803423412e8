package quantization

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteCodebook writes codewords in the text format:
//
//	M,Ks,Ds
//	0:
//	v0,v1,...,v(Ds-1),
//	...(Ks rows)...
//	1:
//	...
//
// one "m:" header line followed by Ks comma-terminated rows per sub-space.
func WriteCodebook(w io.Writer, codewords [][][]float32) error {
	m := len(codewords)
	if m == 0 {
		return fmt.Errorf("quantization: WriteCodebook: empty codewords")
	}
	ks := len(codewords[0])
	ds := len(codewords[0][0])

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d,%d,%d\n", m, ks, ds); err != nil {
		return err
	}
	for sub := 0; sub < m; sub++ {
		if _, err := fmt.Fprintf(bw, "%d:\n", sub); err != nil {
			return err
		}
		for c := 0; c < ks; c++ {
			for d := 0; d < ds; d++ {
				if _, err := fmt.Fprintf(bw, "%g,", codewords[sub][c][d]); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadCodebook parses the format written by WriteCodebook.
func ReadCodebook(r io.Reader) ([][][]float32, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("quantization: ReadCodebook: empty input")
	}
	header := strings.Split(strings.TrimSpace(scanner.Text()), ",")
	if len(header) != 3 {
		return nil, fmt.Errorf("quantization: ReadCodebook: malformed header %q", scanner.Text())
	}
	m, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("quantization: ReadCodebook: bad M: %w", err)
	}
	ks, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("quantization: ReadCodebook: bad Ks: %w", err)
	}
	ds, err := strconv.Atoi(header[2])
	if err != nil {
		return nil, fmt.Errorf("quantization: ReadCodebook: bad Ds: %w", err)
	}

	codewords := make([][][]float32, m)
	for sub := 0; sub < m; sub++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("quantization: ReadCodebook: missing header for sub-space %d", sub)
		}
		headerLine := strings.TrimSuffix(strings.TrimSpace(scanner.Text()), ":")
		if headerLine != strconv.Itoa(sub) {
			return nil, fmt.Errorf("quantization: ReadCodebook: expected sub-space %d, got %q", sub, scanner.Text())
		}

		codewords[sub] = make([][]float32, ks)
		for c := 0; c < ks; c++ {
			if !scanner.Scan() {
				return nil, fmt.Errorf("quantization: ReadCodebook: missing row %d of sub-space %d", c, sub)
			}
			fields := strings.Split(strings.TrimSuffix(strings.TrimSpace(scanner.Text()), ","), ",")
			if len(fields) != ds {
				return nil, fmt.Errorf("quantization: ReadCodebook: row %d of sub-space %d has %d values, want %d", c, sub, len(fields), ds)
			}
			row := make([]float32, ds)
			for d, field := range fields {
				v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
				if err != nil {
					return nil, fmt.Errorf("quantization: ReadCodebook: bad value at sub-space %d row %d col %d: %w", sub, c, d, err)
				}
				row[d] = float32(v)
			}
			codewords[sub][c] = row
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return codewords, nil
}

package vecio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Score is one (id, distance) search result, as returned by a query.
type Score struct {
	ID   int
	Dist float32
}

// WriteScores writes scores in the text format:
//
//	<query_count>
//	<top_k>
//	id,dist,id,dist,...,
//	... one line per query ...
//
// every query's result row must have the same length (top_k).
func WriteScores(path string, scores [][]Score) error {
	if len(scores) == 0 {
		return fmt.Errorf("vecio: WriteScores: scores must not be empty")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vecio: create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	topK := len(scores[0])
	if _, err := fmt.Fprintf(bw, "%d\n%d\n", len(scores), topK); err != nil {
		return err
	}
	for _, row := range scores {
		for _, s := range row {
			if _, err := fmt.Fprintf(bw, "%d,%g,", s.ID, s.Dist); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadScores parses the format written by WriteScores.
func ReadScores(r io.Reader) ([][]Score, error) {
	br := bufio.NewReader(r)

	var queryCount, topK int
	if _, err := fmt.Fscanf(br, "%d\n%d\n", &queryCount, &topK); err != nil {
		return nil, fmt.Errorf("vecio: ReadScores: bad header: %w", err)
	}

	scores := make([][]Score, queryCount)
	for q := 0; q < queryCount; q++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("vecio: ReadScores: row %d: %w", q, err)
		}
		fields := strings.Split(strings.TrimRight(strings.TrimSpace(line), ","), ",")
		if len(fields) == 1 && fields[0] == "" {
			scores[q] = nil
			continue
		}
		if len(fields)%2 != 0 {
			return nil, fmt.Errorf("vecio: ReadScores: row %d has an odd field count", q)
		}
		row := make([]Score, 0, len(fields)/2)
		for i := 0; i < len(fields); i += 2 {
			id, err := strconv.Atoi(strings.TrimSpace(fields[i]))
			if err != nil {
				return nil, fmt.Errorf("vecio: ReadScores: row %d: bad id: %w", q, err)
			}
			dist, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 32)
			if err != nil {
				return nil, fmt.Errorf("vecio: ReadScores: row %d: bad dist: %w", q, err)
			}
			row = append(row, Score{ID: id, Dist: float32(dist)})
		}
		scores[q] = row
	}
	return scores, nil
}

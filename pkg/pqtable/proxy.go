package pqtable

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/pqtable/internal/quantization"
)

// Build picks the best table kind for codewords/codes and constructs it.
// T=-1 auto-selects via OptimalT; T=1 forces a SingleTable; T>1 forces a
// MultiTable with that many partitions.
func Build(codewords [][][]float32, codes *quantization.ByteMatrix, t int) Table {
	m := len(codewords)
	if t == -1 {
		t = OptimalT(8*m, codes.Size())
	}

	switch {
	case t == 1:
		return BuildSingleTable(codewords, codes)
	case t > 1:
		return BuildMultiTable(codewords, codes, t)
	default:
		panic(fmt.Sprintf("pqtable: invalid T=%d", t))
	}
}

// Load reads back whichever table kind was written to dirPath, dispatched
// on the T.txt file left by WriteTo.
func Load(dirPath string) (Table, error) {
	raw, err := os.ReadFile(filepath.Join(dirPath, tFile))
	if err != nil {
		return nil, fmt.Errorf("pqtable: read T.txt: %w", err)
	}
	t, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("pqtable: parse T.txt: %w", err)
	}

	switch {
	case t == 1:
		return LoadSingleTable(dirPath)
	case t > 1:
		return LoadMultiTable(dirPath)
	default:
		return nil, fmt.Errorf("pqtable: invalid T=%d in %s", t, dirPath)
	}
}

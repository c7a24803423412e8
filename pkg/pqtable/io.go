package pqtable

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/therealutkarshpriyadarshi/pqtable/internal/quantization"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/pqhash"
)

func writeCodewordFile(dirPath string, codewords [][][]float32) error {
	f, err := os.Create(filepath.Join(dirPath, codewordFile))
	if err != nil {
		return fmt.Errorf("pqtable: create codeword.txt: %w", err)
	}
	defer f.Close()
	if err := quantization.WriteCodebook(f, codewords); err != nil {
		return fmt.Errorf("pqtable: write codeword.txt: %w", err)
	}
	return nil
}

func readCodewordFile(dirPath string) ([][][]float32, error) {
	f, err := os.Open(filepath.Join(dirPath, codewordFile))
	if err != nil {
		return nil, fmt.Errorf("pqtable: open codeword.txt: %w", err)
	}
	defer f.Close()
	codewords, err := quantization.ReadCodebook(f)
	if err != nil {
		return nil, fmt.Errorf("pqtable: read codeword.txt: %w", err)
	}
	return codewords, nil
}

func writeHashTableFile(path string, table *pqhash.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pqtable: create %s: %w", path, err)
	}
	defer f.Close()
	if err := table.Write(f); err != nil {
		return fmt.Errorf("pqtable: write %s: %w", path, err)
	}
	return nil
}

func readHashTableFile(path string) (*pqhash.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pqtable: open %s: %w", path, err)
	}
	defer f.Close()
	table, err := pqhash.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("pqtable: read %s: %w", path, err)
	}
	return table, nil
}

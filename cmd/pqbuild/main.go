// Command pqbuild constructs a PQTable sparse hash-table index from a
// trained codebook and its encoded PQ codes, and writes it to disk.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/therealutkarshpriyadarshi/pqtable/internal/quantization"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/config"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/observability"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/pqhash"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/pqtable"
)

func main() {
	var (
		codebookPath = flag.String("codebook", "codeword.txt", "path to the trained codebook")
		codesPath    = flag.String("codes", "pqcode.bin", "path to the encoded PQ code matrix")
		output       = flag.String("output", "", "directory to write the table to (required)")
		t            = flag.Int("t", 0, "number of hash-table partitions (-1 for auto, overrides config default)")
		resizeFactor = flag.Float64("resize-factor", 0, "posting-list geometric growth factor (overrides config default)")
		resizeAdd    = flag.Float64("resize-add", 0, "posting-list additive growth term (overrides config default)")
	)
	flag.Parse()

	log := observability.NewDefaultLogger()

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: -output is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("failed to load configuration", map[string]interface{}{"error": err})
	}
	if *t != 0 {
		cfg.Table.T = *t
	}
	if *resizeFactor != 0 {
		cfg.Hash.ResizeFactor = *resizeFactor
	}
	if *resizeAdd != 0 {
		cfg.Hash.ResizeAdd = *resizeAdd
	}
	pqhash.SetGrowthPolicy(cfg.Hash.ResizeFactor, cfg.Hash.ResizeAdd)

	cbFile, err := os.Open(*codebookPath)
	if err != nil {
		log.Fatal("failed to open codebook", map[string]interface{}{"error": err})
	}
	codewords, err := quantization.ReadCodebook(cbFile)
	cbFile.Close()
	if err != nil {
		log.Fatal("failed to read codebook", map[string]interface{}{"error": err})
	}

	codesFile, err := os.Open(*codesPath)
	if err != nil {
		log.Fatal("failed to open code matrix", map[string]interface{}{"error": err})
	}
	codes, err := quantization.ReadByteMatrix(codesFile, -1)
	codesFile.Close()
	if err != nil {
		log.Fatal("failed to read code matrix", map[string]interface{}{"error": err})
	}

	log.Info("building table", map[string]interface{}{
		"num_vectors": codes.Size(),
		"m":           codes.Dim(),
		"t":           cfg.Table.T,
	})

	metrics := observability.NewMetrics()

	start := time.Now()
	table := pqtable.Build(codewords, codes, cfg.Table.T)
	elapsed := time.Since(start)
	log.Info("table built", map[string]interface{}{"elapsed": elapsed})

	switch t := table.(type) {
	case *pqtable.SingleTable:
		metrics.RecordBuild("single", elapsed)
		groups, postings, sparsity := t.Stats()
		metrics.UpdateHashTableStats("0", groups, postings, sparsity)
	case *pqtable.MultiTable:
		metrics.RecordBuild("multi", elapsed)
		for part := 0; part < t.NumPartitions(); part++ {
			groups, postings, sparsity := t.Stats(part)
			metrics.UpdateHashTableStats(strconv.Itoa(part), groups, postings, sparsity)
		}
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		log.Fatal("failed to create output directory", map[string]interface{}{"error": err})
	}
	if err := table.WriteTo(*output); err != nil {
		log.Fatal("failed to write table", map[string]interface{}{"error": err})
	}
	log.Info("wrote table", map[string]interface{}{"path": *output})
}

// Command pqencode quantizes a base set of vectors against a trained
// codebook, writing the resulting PQ code matrix to disk. Rows are
// encoded by a bounded pool of worker goroutines.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/therealutkarshpriyadarshi/pqtable/internal/quantization"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/observability"
	"github.com/therealutkarshpriyadarshi/pqtable/pkg/vecio"
)

func main() {
	var (
		codebookPath = flag.String("codebook", "codeword.txt", "path to the trained codebook")
		input        = flag.String("input", "", "path to base vectors (required)")
		ext          = flag.String("ext", "fvecs", "vector file format: fvecs or bvecs")
		topN         = flag.Int("top-n", -1, "limit encoding to the first N vectors (-1 for all)")
		output       = flag.String("output", "pqcode.bin", "path to write the encoded code matrix")
		workers      = flag.Int("workers", runtime.NumCPU(), "number of parallel encoding workers")
	)
	flag.Parse()

	log := observability.NewDefaultLogger()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -input is required")
		flag.Usage()
		os.Exit(1)
	}
	if *workers < 1 {
		*workers = 1
	}

	cbFile, err := os.Open(*codebookPath)
	if err != nil {
		log.Fatal("failed to open codebook", map[string]interface{}{"error": err})
	}
	codewords, err := quantization.ReadCodebook(cbFile)
	cbFile.Close()
	if err != nil {
		log.Fatal("failed to read codebook", map[string]interface{}{"error": err})
	}
	pq := quantization.NewProductQuantizer(codewords)

	log.Info("reading base vectors", map[string]interface{}{"path": *input})
	vecs, err := vecio.ReadTopN(*input, *ext, *topN)
	if err != nil {
		log.Fatal("failed to read base vectors", map[string]interface{}{"error": err})
	}

	codes := quantization.NewByteMatrix(len(vecs), pq.M())
	metrics := observability.NewMetrics()

	start := time.Now()
	jobs := make(chan int, *workers*2)
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				codes.SetRow(row, pq.Encode(vecs[row]))
			}
		}()
	}
	for row := range vecs {
		jobs <- row
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)
	metrics.RecordEncode(elapsed, len(vecs))

	log.Info("encoding complete", map[string]interface{}{
		"num_vectors": len(vecs),
		"workers":     *workers,
		"elapsed":     elapsed,
	})

	outFile, err := os.Create(*output)
	if err != nil {
		log.Fatal("failed to create output file", map[string]interface{}{"error": err})
	}
	defer outFile.Close()

	if _, err := codes.WriteTo(outFile); err != nil {
		log.Fatal("failed to write code matrix", map[string]interface{}{"error": err})
	}
	log.Info("wrote code matrix", map[string]interface{}{"path": *output})
}
